// Command engine starts the anti-nuisance dialogue core: the HTTP
// boundary, the Conversation Manager it drives, and the Post-Call
// Pipeline's worker pool, all wired from config.Load().
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/config"
	"ninjaengine/internal/conversation"
	"ninjaengine/internal/dialogue"
	"ninjaengine/internal/httpapi"
	"ninjaengine/internal/intent"
	"ninjaengine/internal/learning"
	"ninjaengine/internal/llmclient"
	"ninjaengine/internal/observability"
	"ninjaengine/internal/pipeline"
	"ninjaengine/internal/response"
	"ninjaengine/internal/sentiment"
	"ninjaengine/internal/store"
	"ninjaengine/internal/summary"
	"ninjaengine/internal/termination"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("engine")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	observability.InitLogger(cfg.Logging.LogPath, cfg.Logging.Level)

	baseCtx := context.Background()

	shutdownOTel, err := observability.InitOTel(baseCtx, observability.Config{
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
	})
	if err != nil {
		log.Warn().Err(err).Msg("otel init failed, continuing without observability")
		shutdownOTel = func(context.Context) error { return nil }
	}
	defer func() { _ = shutdownOTel(context.Background()) }()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("redis client close")
		}
	}()
	if err := redisClient.Ping(baseCtx).Err(); err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	sharedCache := cacheutil.NewRedis(redisClient)

	db, err := store.Open(baseCtx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	if err := db.Init(baseCtx); err != nil {
		return fmt.Errorf("init postgres schema: %w", err)
	}

	llm, err := llmclient.Build(llmclient.Config{
		Provider: cfg.LLM.Provider,
		Anthropic: struct {
			APIKey string
			Model  string
		}{APIKey: cfg.LLM.Anthropic.APIKey, Model: cfg.LLM.Anthropic.Model},
		OpenAI: struct {
			APIKey  string
			BaseURL string
			Model   string
		}{APIKey: cfg.LLM.OpenAI.APIKey, BaseURL: cfg.LLM.OpenAI.BaseURL, Model: cfg.LLM.OpenAI.Model},
	})
	if err != nil {
		return fmt.Errorf("build llm client: %w", err)
	}
	modelName := cfg.LLM.Anthropic.Model
	if cfg.LLM.Provider == "openai" {
		modelName = cfg.LLM.OpenAI.Model
	}

	classifier, err := intent.New(intent.DefaultConfig(), sharedCache, cfg.Cache.IntentTTL)
	if err != nil {
		return fmt.Errorf("build intent classifier: %w", err)
	}

	lex := sentiment.DefaultLexicons()
	var remote sentiment.RemoteScorer
	if cfg.Sentiment.RemoteURL != "" {
		remote = sentiment.NewRemoteBackend(cfg.Sentiment.RemoteURL, cfg.Sentiment.RemoteAPIKey, cfg.Sentiment.RequestTimeout)
	}
	analyzer := sentiment.New(sentiment.NewLexiconScorer(lex), remote, lex, sharedCache, cfg.Cache.AnalysisTTL)

	generator := response.New(llm, modelName, sharedCache, cfg.Cache.ResponseTTL)

	tracker := dialogue.New(dialogue.Config{
		ShardCount:  cfg.Dialogue.ShardCount,
		SnapshotTTL: cfg.Dialogue.SnapshotTTL,
		Persist:     cfg.Dialogue.PersistSnapshots,
	}, sharedCache)

	learningSystem := learning.New()
	decider := termination.New(learningSystem)

	manager := conversation.New(conversation.Dependencies{
		Tracker:    tracker,
		Classifier: classifier,
		Analyzer:   analyzer,
		Generator:  generator,
		Decider:    decider,
	})

	summaryGen := summary.New(llm, modelName)

	analysisCache := pipeline.NewAnalysisCache(sharedCache, cfg.Cache.AnalysisTTL)
	queue := pipeline.NewQueue(redisClient, pipeline.QueueKeys{
		High:       cfg.Pipeline.HighQueueKey,
		Normal:     cfg.Pipeline.NormalQueueKey,
		Low:        cfg.Pipeline.LowQueueKey,
		DLQSuffix:  cfg.Pipeline.DLQSuffix,
		DepthLimit: cfg.Pipeline.QueueDepthLimit,
	})

	pipelineDeps := pipeline.Dependencies{
		Store:          db,
		Cache:          analysisCache,
		Summary:        summaryGen,
		Learning:       learningSystem,
		Queue:          queue,
		ResultsChannel: "analysis_results",
	}
	workerCfg := pipeline.WorkerConfig{
		WorkerCount: cfg.Pipeline.WorkerCount,
		MaxAttempts: cfg.Pipeline.MaxAttempts,
		BaseBackoff: cfg.Pipeline.BaseBackoff,
		PollTimeout: cfg.Pipeline.PollTimeout,
	}
	pl := pipeline.New(queue, pipelineDeps, workerCfg)

	httpDeps := httpapi.Dependencies{
		Manager:    manager,
		Tracker:    tracker,
		Classifier: classifier,
		Decider:    decider,
		Learning:   learningSystem,
		Summary:    summaryGen,
		Pipeline:   pl,
		Store:      db,
		Redis:      redisClient,
		PhoneSalt:  cfg.Security.PhoneFingerprintSalt,
	}
	server := httpapi.NewServer(httpDeps, cfg.HTTP.Addr, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)

	ctx, cancel := signal.NotifyContext(baseCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pl.Start(ctx)

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	pl.Stop()

	log.Info().Msg("engine stopped")
	return nil
}
