package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, secret string, claims types.TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(subject string) types.TokenClaims {
	return types.TokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware([]string{"key-one", "key-two"}, NewJWTValidator(testSecret)))
	r.GET("/whoami", func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "method": p.Method})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := authRouter()

	t.Run("should accept a configured API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(APIKeyHeader, "key-two")
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"api-key-2","method":"api_key"}`, w.Body.String())
	})

	t.Run("should reject an unknown API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(APIKeyHeader, "nope")
		w := serve(r, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"UNAUTHORIZED","message":"invalid API key"}`, w.Body.String())
	})

	t.Run("should accept a valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("user-42")))
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"user-42","method":"jwt"}`, w.Body.String())
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "another-secret-another-secret-xx", validClaims("user-42")))
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("should reject a malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Token abc")
		w := serve(r, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid authorization header format")
	})

	t.Run("should reject a missing header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestJWTValidator(t *testing.T) {
	v := NewJWTValidator(testSecret)

	t.Run("should reject expired tokens", func(t *testing.T) {
		claims := validClaims("user")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := v.ValidateToken(signToken(t, testSecret, claims))
		assert.Error(t, err)
	})

	t.Run("should require a subject", func(t *testing.T) {
		_, err := v.ValidateToken(signToken(t, testSecret, validClaims("")))
		assert.ErrorContains(t, err, "missing subject")
	})

	t.Run("should require an expiry", func(t *testing.T) {
		claims := types.TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user"}}
		_, err := v.ValidateToken(signToken(t, testSecret, claims))
		assert.Error(t, err)
	})
}
