package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/api"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/middleware"
)

// Options collects the handlers and middleware settings the router needs
type Options struct {
	RecipeHandler *api.RecipeHandler
	ImageHandler  *api.ImageHandler
	Logger        *zap.Logger

	Version     string
	GeminiReady func() bool

	CORSOrigins []string

	// AuthEnabled guards /api with API keys and, when TokenValidator is set,
	// bearer tokens
	AuthEnabled    bool
	APIKeys        []string
	TokenValidator middleware.TokenValidator

	// Limiter is optional; nil disables rate limiting
	Limiter    middleware.Limiter
	RateWindow time.Duration
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.Logger(opts.Logger),
		middleware.Metrics(),
		middleware.ErrorHandler(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)

	router.GET("/health", api.HealthCheck(opts.Version, opts.GeminiReady))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api")
	if opts.AuthEnabled {
		v1.Use(middleware.AuthMiddleware(opts.APIKeys, opts.TokenValidator))
	}
	if opts.Limiter != nil {
		v1.Use(middleware.RateLimit(opts.Limiter, opts.RateWindow, opts.Logger))
	}

	opts.RecipeHandler.RegisterRoutes(v1)
	opts.ImageHandler.RegisterRoutes(v1)

	return router
}
