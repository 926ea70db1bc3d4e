package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// APIKeyHeader carries a static API key
const APIKeyHeader = "X-API-Key"

const principalKey = "principal"

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// JWTValidator accepts HS256 tokens signed with a shared secret
type JWTValidator struct {
	secret []byte
}

// NewJWTValidator creates a validator for the given secret
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret)}
}

// ValidateToken parses and verifies token, requiring a subject
func (v *JWTValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("invalid token: missing subject")
	}
	return claims, nil
}

// AuthMiddleware accepts either a configured API key or a bearer token.
// validator may be nil when only API keys are in use.
func AuthMiddleware(apiKeys []string, validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(APIKeyHeader); key != "" {
			idx := matchAPIKey(apiKeys, key)
			if idx < 0 {
				unauthorized(c, "invalid API key")
				return
			}
			c.Set(principalKey, types.Principal{ID: fmt.Sprintf("api-key-%d", idx+1), Method: "api_key"})
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "invalid authorization header format")
			return
		}
		if validator == nil {
			unauthorized(c, "bearer tokens are not accepted")
			return
		}
		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(principalKey, types.Principal{ID: claims.Subject, Method: "jwt"})
		c.Next()
	}
}

// PrincipalFrom returns the caller set by AuthMiddleware
func PrincipalFrom(c *gin.Context) (types.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return types.Principal{}, false
	}
	p, ok := v.(types.Principal)
	return p, ok
}

// matchAPIKey compares against every key in constant time and returns the
// index of the match, or -1
func matchAPIKey(keys []string, candidate string) int {
	found := -1
	for i, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(candidate)) == 1 && found < 0 {
			found = i
		}
	}
	return found
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: string(apperrors.CodeUnauthorized), Message: message})
}
