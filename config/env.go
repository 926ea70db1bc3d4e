package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment reads ENV, case-insensitively. CI=true always wins and
// anything unrecognised is development.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))) {
	case "production", "prod":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsProduction gates the stricter validation rules and gin release mode
func (e Environment) IsProduction() bool {
	return e == Production
}

// UsesSecretsDir reports whether Docker secrets are consulted; CI passes
// everything through the environment.
func (e Environment) UsesSecretsDir() bool {
	return e != CI
}

// DevelopmentLogging selects the human-readable console logger
func (e Environment) DevelopmentLogging() bool {
	return e == Development || e == Test
}
