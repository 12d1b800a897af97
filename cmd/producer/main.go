package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"relayforge/internal/domain"
	"relayforge/internal/expand"
	"relayforge/internal/infra"
	"relayforge/internal/ops"
	"relayforge/internal/produce"
	"relayforge/internal/providers/audio"
	"relayforge/internal/providers/polling"
	"relayforge/internal/providers/thumbnail"
	"relayforge/internal/providers/video"
	"relayforge/internal/queue"
	"relayforge/internal/storage"
	"relayforge/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("producer: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	jobStore := store.NewContentJobStore(runner)

	objectStore, err := newObjectStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("producer: failed to configure storage")
	}

	coordinator := produce.NewCoordinator(produce.Options{
		Store:           jobStore,
		Chains:          buildChains(cfg, objectStore, logger),
		Expander:        buildExpander(cfg, objectStore, logger),
		VoiceID:         cfg.ElevenLabsVoiceID,
		ScriptThreshold: cfg.VideoScriptThreshold,
		Logger:          logger,
	})

	consumer := queue.NewConsumer(queue.Options{
		URL:    cfg.AMQPURL,
		Queue:  cfg.MediaQueue,
		Logger: logger,
		Handler: func(ctx context.Context, jobID string) error {
			return coordinator.Process(ctx, jobID)
		},
	})

	opsServer := infra.NewHTTPServer(cfg.OpsPort, ops.NewRouter(pool))
	go func() {
		if err := opsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("producer: ops server stopped")
		}
	}()

	logger.Info().Str("queue", cfg.MediaQueue).Msg("producer: started")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("producer: stopped with error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("producer: ops server shutdown")
	}

	logger.Info().Msg("producer: stopped")
}

// newObjectStore picks the S3-compatible store when an endpoint is
// configured, and the local filesystem store otherwise (development).
func newObjectStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (storage.ObjectStore, error) {
	if cfg.S3Endpoint != "" {
		return storage.NewMinioStore(ctx, storage.MinioOptions{
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			UseSSL:        cfg.S3UseSSL,
			PublicBaseURL: cfg.PublicS3BaseURL,
		})
	}

	path := cfg.StoragePath
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	logger.Warn().Str("path", path).Msg("producer: no object storage endpoint, using filesystem store")
	return storage.NewFileStore(path, cfg.PublicS3BaseURL)
}

// buildChains resolves each category's provider order once at startup.
// Unconfigured remote providers stay in the chain and skip themselves, so a
// credential added via environment swap changes behavior only on restart.
func buildChains(cfg *infra.Config, objectStore storage.ObjectStore, logger infra.Logger) []*produce.Chain {
	poll := polling.Config{Interval: cfg.PollInterval, MaxAttempts: cfg.PollMaxAttempts}

	audioChain := produce.NewChain(domain.CategoryAudio, objectStore, logger,
		audio.NewElevenLabs(audio.ElevenLabsOptions{
			APIKey:  cfg.ElevenLabsAPIKey,
			BaseURL: cfg.ElevenLabsBaseURL,
		}),
		audio.NewFallback(),
	)

	thumbChain := produce.NewChain(domain.CategoryThumbnail, objectStore, logger,
		thumbnail.NewStability(thumbnail.StabilityOptions{
			APIKey:  cfg.StabilityAPIKey,
			BaseURL: cfg.StabilityBaseURL,
		}),
		thumbnail.NewFallback(),
	)

	videoChain := produce.NewChain(domain.CategoryVideo, objectStore, logger,
		video.NewReplicate(video.ReplicateOptions{
			APIToken: cfg.ReplicateAPIToken,
			BaseURL:  cfg.ReplicateBaseURL,
			Version:  cfg.ReplicateVersion,
			Poll:     poll,
		}),
		video.NewFallback(),
	)

	return []*produce.Chain{audioChain, thumbChain, videoChain}
}

func buildExpander(cfg *infra.Config, objectStore storage.ObjectStore, logger infra.Logger) *expand.Expander {
	transcoder := expand.NewFFmpeg(cfg.FFmpegBin, logger)
	if !transcoder.Available() {
		logger.Warn().Str("bin", cfg.FFmpegBin).Msg("producer: ffmpeg not found, format expansion disabled")
		return nil
	}
	return expand.NewExpander(expand.DefaultTargets(), transcoder, objectStore, logger)
}
