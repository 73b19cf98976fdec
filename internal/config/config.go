// Package config loads ninjaengine's runtime configuration from the
// environment (with optional .env and YAML overrides), validates it once
// at startup, and hands each component only the narrow slice it needs —
// never the whole Config value.
package config

import "time"

// Config is the full, process-wide configuration tree. Only main.go and
// this package ever see the whole thing; every other package receives a
// purpose-built sub-struct (observability.Config, llmclient.Config, ...).
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	HTTP       HTTPConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	LLM        LLMConfig
	Cache      CacheConfig
	Dialogue   DialogueConfig
	Pipeline   PipelineConfig
	Sentiment  SentimentConfig
	Observability ObservabilityConfig
	Logging    LoggingConfig
	Security   SecurityConfig
}

// HTTPConfig configures the gorilla/mux-based API boundary.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig configures the shared go-redis client used for caching,
// dialogue snapshots, and the priority queues.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig configures the pgx pool backing internal/store.
type PostgresConfig struct {
	DSN         string
	MaxConns    int32
	MinConns    int32
	QueryTimeout time.Duration
}

// LLMConfig selects and configures the chat-completion provider used by
// internal/llmclient.
type LLMConfig struct {
	Provider       string // "anthropic" | "openai"
	Anthropic      AnthropicConfig
	OpenAI         OpenAIConfig
	RequestTimeout time.Duration
}

// AnthropicConfig configures the Anthropic backend.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig configures the OpenAI backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// CacheConfig carries the TTLs the Open Question in SPEC_FULL.md §9
// resolved, one per cached concern.
type CacheConfig struct {
	IntentTTL   time.Duration
	ResponseTTL time.Duration
	AnalysisTTL time.Duration
}

// DialogueConfig configures the Dialogue State Tracker.
type DialogueConfig struct {
	SnapshotTTL     time.Duration
	PersistSnapshots bool
	ShardCount      int
}

// PipelineConfig configures the post-call analysis pipeline's queues and
// worker pool.
type PipelineConfig struct {
	HighQueueKey    string
	NormalQueueKey  string
	LowQueueKey     string
	DLQSuffix       string
	WorkerCount     int
	MaxAttempts     int
	BaseBackoff     time.Duration
	PollTimeout     time.Duration
	QueueDepthLimit int
}

// SentimentConfig configures the sentiment analyzer's remote backend, used
// when the local scorer is not ready or returns an error.
type SentimentConfig struct {
	RemoteURL     string
	RemoteAPIKey  string
	RequestTimeout time.Duration
}

// ObservabilityConfig is the narrow slice handed to observability.InitOTel.
type ObservabilityConfig struct {
	OTLPEndpoint string
}

// LoggingConfig configures the zerolog global logger.
type LoggingConfig struct {
	Level   string
	LogPath string
}

// SecurityConfig holds the phone-fingerprint salt and other secrets that
// must never be logged.
type SecurityConfig struct {
	PhoneFingerprintSalt string
}
