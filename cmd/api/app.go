package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/config"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/api"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/database"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/logger"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/middleware"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/router"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/schema"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/server"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/service"
)

func run(ctx context.Context, cfg *config.Config, setupBucketPolicy bool) error {
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment.DevelopmentLogging(),
	})
	defer func() { _ = log.Sync() }()

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	credentials := service.NewCredentialResolver(cfg.GeminiAPIKeyOverride, cfg.GeminiEnvFile, cfg.GeminiAPIKeyDefault)
	if !credentials.HasValidCredential() {
		log.Warn("No valid Gemini API key configured, recipe requests will be served from the mock")
	}

	var store service.ImageStore
	if cfg.ImageUploadEnabled {
		s3cfg, err := config.NewS3Config(ctx, cfg.S3BucketName, cfg.AWSRegion)
		if err != nil {
			return fmt.Errorf("failed to initialize S3: %w", err)
		}
		if setupBucketPolicy {
			if err := s3cfg.SetupBucketPolicy(ctx); err != nil {
				return fmt.Errorf("failed to set bucket policy: %w", err)
			}
			log.Info("Applied bucket policy", zap.String("bucket", s3cfg.BucketName))
		}
		store = service.NewS3ImageStore(s3cfg)
	}

	text := service.NewGenerationClient(cfg.GeminiAPIURL, cfg.GeminiSystemPrompt, schema.Recipe(),
		service.NewPooledTransport(cfg.GeminiTextTimeout), log)
	images := service.NewImageOrchestrator(service.ImageOptions{
		URL:     cfg.GeminiImageURL,
		TextURL: cfg.GeminiAPIURL,
		Model:   cfg.GeminiImageModel,
	}, credentials,
		service.NewPooledTransport(cfg.GeminiImageTimeout),
		service.NewDirectTransport(cfg.GeminiImageTimeout),
		store, log)
	recipes := service.NewRecipeService(credentials, text, images, service.NewSafetyValidator(), service.RecipeOptions{
		DevFallback:   cfg.GeminiDevFallback,
		ImagesEnabled: cfg.GeminiImageEnabled,
		SafetyMode:    service.ParseSafetyMode(cfg.SafetyMode),
	}, log)

	log.Info("Gemini configured",
		zap.String("text_url", text.URL()),
		zap.String("image_url", images.Endpoint()),
		zap.Bool("images_enabled", cfg.GeminiImageEnabled),
		zap.String("safety_mode", cfg.SafetyMode))

	var limiter middleware.Limiter
	if cfg.RateLimitPerMinute > 0 {
		var redisClient *redis.Client
		if cfg.RedisURL != "" {
			client, err := database.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword, log)
			if err != nil {
				log.Warn("Redis unavailable, rate limiting per instance", zap.Error(err))
			} else {
				redisClient = client
				defer redisClient.Close()
			}
		}
		limiter = middleware.NewRecipeRateLimiter(redisClient, cfg.RateLimitPerMinute)
	}

	var tokens middleware.TokenValidator
	if cfg.JWTSecret != "" {
		tokens = middleware.NewJWTValidator(cfg.JWTSecret)
	}

	r := router.SetupRouter(router.Options{
		RecipeHandler:  api.NewRecipeHandler(recipes, log),
		ImageHandler:   api.NewImageHandler(images, log),
		Logger:         log,
		Version:        version,
		GeminiReady:    credentials.HasValidCredential,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		AuthEnabled:    cfg.AuthEnabled,
		APIKeys:        cfg.APIKeys,
		TokenValidator: tokens,
		Limiter:        limiter,
		RateWindow:     time.Minute,
	})

	return server.NewServer(cfg.Addr(), r, cfg.ShutdownTimeout, log).Start(ctx)
}
