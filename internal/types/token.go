package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims accepted on bearer tokens
type TokenClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

// Principal identifies the authenticated caller for logging and rate limiting
type Principal struct {
	ID     string
	Method string
}
