package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

// Load reads configuration from the environment (optionally from a .env
// file), applies defaults, then overlays an optional YAML file named by
// NINJAENGINE_CONFIG_FILE. The YAML overlay is applied last, so a
// non-empty value in the YAML file wins over the env/.env value for any
// field set in both.
func Load() (Config, error) {
	_ = godotenv.Overload()

	cfg := Config{
		ServiceName:    firstNonEmpty(os.Getenv("SERVICE_NAME"), "ninjaengine"),
		ServiceVersion: firstNonEmpty(os.Getenv("SERVICE_VERSION"), "dev"),
		Environment:    firstNonEmpty(os.Getenv("ENVIRONMENT"), "development"),
	}

	cfg.HTTP = HTTPConfig{
		Addr:            firstNonEmpty(os.Getenv("HTTP_ADDR"), ":8080"),
		ReadTimeout:     durationFromEnv("HTTP_READ_TIMEOUT_SECONDS", 10*time.Second),
		WriteTimeout:    durationFromEnv("HTTP_WRITE_TIMEOUT_SECONDS", 10*time.Second),
		ShutdownTimeout: durationFromEnv("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
	}

	cfg.Redis = RedisConfig{
		Addr:     firstNonEmpty(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intFromEnv("REDIS_DB", 0),
	}

	cfg.Postgres = PostgresConfig{
		DSN:          os.Getenv("POSTGRES_DSN"),
		MaxConns:     int32(intFromEnv("POSTGRES_MAX_CONNS", 10)),
		MinConns:     int32(intFromEnv("POSTGRES_MIN_CONNS", 2)),
		QueryTimeout: durationFromEnv("POSTGRES_QUERY_TIMEOUT_SECONDS", 5*time.Second),
	}

	cfg.LLM = LLMConfig{
		Provider: firstNonEmpty(os.Getenv("LLM_PROVIDER"), "anthropic"),
		Anthropic: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  firstNonEmpty(os.Getenv("ANTHROPIC_MODEL"), "claude-3-5-haiku-latest"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   firstNonEmpty(os.Getenv("OPENAI_MODEL"), "gpt-4o-mini"),
		},
		RequestTimeout: durationFromEnv("LLM_REQUEST_TIMEOUT_SECONDS", 8*time.Second),
	}

	cfg.Cache = CacheConfig{
		IntentTTL:   durationFromEnv("CACHE_INTENT_TTL_SECONDS", time.Hour),
		ResponseTTL: durationFromEnv("CACHE_RESPONSE_TTL_SECONDS", 5*time.Minute),
		AnalysisTTL: durationFromEnv("CACHE_ANALYSIS_TTL_SECONDS", 24*time.Hour),
	}

	cfg.Dialogue = DialogueConfig{
		SnapshotTTL:      durationFromEnv("DIALOGUE_SNAPSHOT_TTL_SECONDS", 2*time.Hour),
		PersistSnapshots: boolFromEnv("DIALOGUE_PERSIST_SNAPSHOTS", true),
		ShardCount:       intFromEnv("DIALOGUE_SHARD_COUNT", 32),
	}

	cfg.Pipeline = PipelineConfig{
		HighQueueKey:    firstNonEmpty(os.Getenv("PIPELINE_HIGH_QUEUE_KEY"), "ninjaengine:queue:high"),
		NormalQueueKey:  firstNonEmpty(os.Getenv("PIPELINE_NORMAL_QUEUE_KEY"), "ninjaengine:queue:normal"),
		LowQueueKey:     firstNonEmpty(os.Getenv("PIPELINE_LOW_QUEUE_KEY"), "ninjaengine:queue:low"),
		DLQSuffix:       firstNonEmpty(os.Getenv("PIPELINE_DLQ_SUFFIX"), ".dlq"),
		WorkerCount:     intFromEnv("PIPELINE_WORKER_COUNT", 4),
		MaxAttempts:     intFromEnv("PIPELINE_MAX_ATTEMPTS", 3),
		BaseBackoff:     durationFromEnv("PIPELINE_BASE_BACKOFF_MS", 200*time.Millisecond),
		PollTimeout:     durationFromEnv("PIPELINE_POLL_TIMEOUT_SECONDS", 2*time.Second),
		QueueDepthLimit: intFromEnv("PIPELINE_QUEUE_DEPTH_LIMIT", 10000),
	}

	cfg.Sentiment = SentimentConfig{
		RemoteURL:      os.Getenv("SENTIMENT_REMOTE_URL"),
		RemoteAPIKey:   os.Getenv("SENTIMENT_REMOTE_API_KEY"),
		RequestTimeout: durationFromEnv("SENTIMENT_REQUEST_TIMEOUT_SECONDS", 3*time.Second),
	}

	cfg.Observability = ObservabilityConfig{
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
	}

	cfg.Logging = LoggingConfig{
		Level:   firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		LogPath: os.Getenv("LOG_PATH"),
	}

	cfg.Security = SecurityConfig{
		PhoneFingerprintSalt: os.Getenv("PHONE_FINGERPRINT_SALT"),
	}

	if path := strings.TrimSpace(os.Getenv("NINJAENGINE_CONFIG_FILE")); path != "" {
		if err := overlayYAML(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("load yaml overlay %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// yamlOverlay mirrors a subset of Config with yaml tags; only fields an
// operator wants to override via file need to be present in the document.
type yamlOverlay struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	HTTP        struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	LLM struct {
		Provider string `yaml:"provider"`
	} `yaml:"llm"`
}

func overlayYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var ov yamlOverlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return err
	}
	if ov.ServiceName != "" {
		cfg.ServiceName = ov.ServiceName
	}
	if ov.Environment != "" {
		cfg.Environment = ov.Environment
	}
	if ov.HTTP.Addr != "" {
		cfg.HTTP.Addr = ov.HTTP.Addr
	}
	if ov.LLM.Provider != "" {
		cfg.LLM.Provider = ov.LLM.Provider
	}
	return nil
}

// Validate rejects configurations that would fail at runtime in a
// confusing way rather than at startup.
func (c Config) Validate() error {
	if c.LLM.Provider != "anthropic" && c.LLM.Provider != "openai" {
		return fmt.Errorf("config: unknown LLM provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "anthropic" && c.LLM.Anthropic.APIKey == "" {
		return fmt.Errorf("config: ANTHROPIC_API_KEY required when LLM_PROVIDER=anthropic")
	}
	if c.LLM.Provider == "openai" && c.LLM.OpenAI.APIKey == "" {
		return fmt.Errorf("config: OPENAI_API_KEY required when LLM_PROVIDER=openai")
	}
	if c.Security.PhoneFingerprintSalt == "" {
		return fmt.Errorf("config: PHONE_FINGERPRINT_SALT must be set")
	}
	if c.Dialogue.ShardCount <= 0 {
		return fmt.Errorf("config: DIALOGUE_SHARD_COUNT must be positive")
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if strings.HasSuffix(key, "_MS") {
		return time.Duration(n) * time.Millisecond
	}
	return time.Duration(n) * time.Second
}
