package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"chromadish/internal/config"
	"chromadish/internal/events"
	"chromadish/internal/imaging"
	"chromadish/internal/llm"
	"chromadish/internal/logging"
	"chromadish/internal/media"
	"chromadish/internal/mockup"
	"chromadish/internal/ratelimit"
	"chromadish/internal/server"
	"chromadish/internal/storage"
	"chromadish/internal/studio"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		bootLog := logging.New(os.Getenv("APP_ENV"))
		if errors.Is(err, config.ErrMissingCredential) {
			bootLog.Fatal().Msg("API key is missing: set GEMINI_API_KEY or API_KEY")
		}
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.New(cfg.AppEnv)
	ctx := context.Background()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init store")
	}
	defer store.Close()

	uploader, mediaDir := newUploader(ctx, cfg, logger)

	client, err := llm.NewGeminiClient(ctx, cfg.AI.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init gemini client")
	}

	var imageClient llm.ImageGenerator = client
	imageModel := cfg.AI.ImageModel
	if cfg.AI.ImageBackend == config.ImageBackendVertex {
		imagen, err := llm.NewVertexImagenClient(ctx, llm.VertexImagenConfig{
			ProjectID:       cfg.AI.Vertex.ProjectID,
			Location:        cfg.AI.Vertex.Location,
			Model:           cfg.AI.Vertex.Model,
			APIKey:          cfg.AI.Vertex.APIKey,
			CredentialsJSON: cfg.AI.Vertex.CredentialsJSON,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init vertex imagen client")
		}
		defer imagen.Close()
		imageClient = imagen
		imageModel = cfg.AI.Vertex.Model
	}

	composer := mockup.NewComposer(client, cfg.AI.TextModel, logger.With().Str("component", "composer").Logger())
	generator := mockup.NewGenerator(imageClient, composer, imageModel, logger.With().Str("component", "generator").Logger())
	suggester := mockup.NewSuggester(client, cfg.AI.TextModel, logger.With().Str("component", "suggester").Logger())
	logger.Info().
		Str("text_model", cfg.AI.TextModel).
		Str("image_backend", cfg.AI.ImageBackend).
		Str("image_model", imageModel).
		Msg("generator ready")

	limiter := newLimiter(ctx, cfg, logger)
	trustedProxies, err := ratelimit.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	handler := studio.Handler{
		Normalizer: imaging.Normalizer{},
		Generator:  generator,
		Suggester:  suggester,
		Store:      store,
		Uploader:   uploader,
		Events:     events.NewBroker(),
		Log:        logger,
	}

	srv := server.New(server.Options{
		Port:           cfg.Port,
		Limiter:        limiter,
		TrustedProxies: trustedProxies,
		MediaDir:       mediaDir,
		Static:         http.FileServer(http.Dir(cfg.StaticDir)),
		Log:            logger,
	}, handler)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		logger.Info().Msg("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// newUploader prefers S3, then a served local directory. Without either,
// mockups are only returned inline.
func newUploader(ctx context.Context, cfg config.Config, logger zerolog.Logger) (media.Uploader, string) {
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		uploader, err := media.NewUploader(ctx, media.Config{
			Bucket:          cfg.Media.Bucket,
			Region:          cfg.Media.Region,
			Endpoint:        cfg.Media.Endpoint,
			PublicURL:       cfg.Media.PublicURL,
			KeyPrefix:       cfg.Media.KeyPrefix,
			ForcePathStyle:  cfg.Media.ForcePathStyle,
			AccessKeyID:     cfg.Media.AccessKeyID,
			SecretAccessKey: cfg.Media.SecretAccessKey,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init media uploader")
		}
		logger.Info().Str("bucket", cfg.Media.Bucket).Msg("media uploader: s3")
		return uploader, ""
	}

	if cfg.Media.LocalDir != "" {
		uploader, err := media.NewLocalUploader(cfg.Media.LocalDir, server.MediaPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init local media storage")
		}
		logger.Info().Str("dir", uploader.BaseDir).Msg("media uploader: local directory")
		return uploader, uploader.BaseDir
	}

	logger.Info().Msg("media uploader: disabled (no S3 bucket or MEDIA_DIR)")
	return media.Disabled(), ""
}

func newLimiter(ctx context.Context, cfg config.Config, logger zerolog.Logger) ratelimit.Limiter {
	if cfg.RateLimit == 0 {
		logger.Info().Msg("rate limiter: disabled")
		return nil
	}
	if cfg.RedisURL != "" {
		limiter, err := ratelimit.NewRedisLimiter(ctx, cfg.RedisURL, cfg.RateLimit, time.Minute)
		if err == nil {
			logger.Info().Int("per_minute", cfg.RateLimit).Msg("rate limiter: redis")
			return limiter
		}
		logger.Warn().Err(err).Msg("redis unavailable, falling back to in-memory rate limiter")
	}
	logger.Info().Int("per_minute", cfg.RateLimit).Msg("rate limiter: memory")
	return ratelimit.NewMemoryLimiter(cfg.RateLimit, time.Minute)
}
