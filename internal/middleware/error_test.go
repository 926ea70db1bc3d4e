package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/bad", func(c *gin.Context) {
		_ = c.Error(apperrors.BadRequest("Invalid request body"))
	})
	r.GET("/upstream", func(c *gin.Context) {
		_ = c.Error(apperrors.ExternalService("Recipe generation failed", errors.New("dial tcp: secret detail")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	t.Run("should render an AppError", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/bad", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"BAD_REQUEST","message":"Invalid request body"}`, w.Body.String())
	})

	t.Run("should hide the cause of upstream failures", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/upstream", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret detail")
		assert.JSONEq(t, `{"error":"EXTERNAL_SERVICE_ERROR","message":"Recipe generation failed"}`, w.Body.String())
	})

	t.Run("should wrap unknown errors", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "database exploded")
	})

	t.Run("should recover panics", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"INTERNAL_ERROR","message":"Internal Server Error"}`, w.Body.String())
	})
}
