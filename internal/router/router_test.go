package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/api"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/middleware"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/service"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRecipes struct{}

func (stubRecipes) Generate(_ context.Context, req types.RecipeRequest) (*service.GenerationResult, error) {
	r := service.MockRecipe(req.PantryItems, false)
	return &service.GenerationResult{Recipe: &r, Mock: true}, nil
}

type stubImages struct{}

func (stubImages) GenerateFromRequest(context.Context, types.ImageGenerationRequest, bool) types.ImageGenerationResponse {
	return types.ImageGenerationResponse{Status: types.ImageFailed, ErrorMessage: "no_image_returned"}
}

func newRouter(opts Options) *gin.Engine {
	logger := zap.NewNop()
	opts.Logger = logger
	opts.RecipeHandler = api.NewRecipeHandler(stubRecipes{}, logger)
	opts.ImageHandler = api.NewImageHandler(stubImages{}, logger)
	if opts.CORSOrigins == nil {
		opts.CORSOrigins = []string{"*"}
	}
	return SetupRouter(opts)
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func generate() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/recipes/generate", strings.NewReader(`{"pantryItems":["egg"]}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSetupRouter(t *testing.T) {
	t.Run("should serve health and metrics without auth", func(t *testing.T) {
		r := newRouter(Options{AuthEnabled: true, APIKeys: []string{"k"}})

		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
		w := do(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "recipe_ai_http_requests_total")
	})

	t.Run("should route both endpoints", func(t *testing.T) {
		r := newRouter(Options{})

		w := do(r, generate())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "1 x egg")
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

		img := httptest.NewRequest(http.MethodPost, "/api/recipes/image/generate", strings.NewReader(`{"prompt":"x"}`))
		img.Header.Set("Content-Type", "application/json")
		assert.Equal(t, http.StatusOK, do(r, img).Code)
	})

	t.Run("should require credentials when auth is enabled", func(t *testing.T) {
		r := newRouter(Options{AuthEnabled: true, APIKeys: []string{"k"}})

		assert.Equal(t, http.StatusUnauthorized, do(r, generate()).Code)

		req := generate()
		req.Header.Set(middleware.APIKeyHeader, "k")
		assert.Equal(t, http.StatusOK, do(r, req).Code)
	})

	t.Run("should rate limit the api group", func(t *testing.T) {
		limiter := middleware.NewLocalRateLimiter(middleware.RateLimitConfig{Window: time.Minute, Limit: 1})
		r := newRouter(Options{Limiter: limiter, RateWindow: time.Minute})

		assert.Equal(t, http.StatusOK, do(r, generate()).Code)
		assert.Equal(t, http.StatusTooManyRequests, do(r, generate()).Code)
		assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	})

	t.Run("should answer CORS preflight before auth", func(t *testing.T) {
		r := newRouter(Options{AuthEnabled: true, APIKeys: []string{"k"}, CORSOrigins: []string{"https://app.example.com"}})

		req := httptest.NewRequest(http.MethodOptions, "/api/recipes/generate", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := do(r, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
