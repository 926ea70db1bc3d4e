package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	// Server configuration
	ServerHost      string        `mapstructure:"SERVER_HOST" validate:"required"`
	ServerPort      int           `mapstructure:"SERVER_PORT" validate:"required,gte=1,lte=65535"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// Gemini configuration
	GeminiAPIURL         string        `mapstructure:"GEMINI_API_URL" validate:"required,url"`
	GeminiAPIKeyDefault  string        `mapstructure:"GEMINI_API_KEY_DEFAULT"`
	GeminiAPIKeyOverride string        `mapstructure:"GEMINI_API_KEY_OVERRIDE"`
	GeminiEnvFile        string        `mapstructure:"GEMINI_ENV_FILE"`
	GeminiSystemPrompt   string        `mapstructure:"GEMINI_SYSTEM_PROMPT"`
	GeminiDevFallback    bool          `mapstructure:"GEMINI_DEV_FALLBACK"`
	GeminiImageEnabled   bool          `mapstructure:"GEMINI_IMAGE_ENABLED"`
	GeminiImageURL       string        `mapstructure:"GEMINI_IMAGE_URL" validate:"omitempty,url"`
	GeminiImageModel     string        `mapstructure:"GEMINI_IMAGE_MODEL" validate:"required"`
	GeminiTextTimeout    time.Duration `mapstructure:"GEMINI_TEXT_TIMEOUT" validate:"gt=0"`
	GeminiImageTimeout   time.Duration `mapstructure:"GEMINI_IMAGE_TIMEOUT" validate:"gt=0"`
	SafetyMode           string        `mapstructure:"SAFETY_MODE" validate:"oneof=warn reject off"`

	// Authentication configuration
	AuthEnabled bool     `mapstructure:"AUTH_ENABLED"`
	APIKeys     []string `mapstructure:"API_KEYS"`
	JWTSecret   string   `mapstructure:"JWT_SECRET"`

	// Redis configuration
	RedisURL           string   `mapstructure:"REDIS_URL" validate:"omitempty,url"`
	RedisPassword      string   `mapstructure:"REDIS_PASSWORD"`
	RateLimitPerMinute int      `mapstructure:"RATE_LIMIT_PER_MINUTE" validate:"gte=0"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Image storage configuration
	S3BucketName       string `mapstructure:"S3_BUCKET_NAME"`
	AWSRegion          string `mapstructure:"AWS_REGION"`
	ImageUploadEnabled bool   `mapstructure:"IMAGE_UPLOAD_ENABLED"`

	// Logging configuration
	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=json console"`
}

var defaults = map[string]any{
	"SERVER_HOST":             "0.0.0.0",
	"SERVER_PORT":             8080,
	"SHUTDOWN_TIMEOUT":        "15s",
	"GEMINI_API_URL":          "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent",
	"GEMINI_API_KEY_DEFAULT":  "",
	"GEMINI_API_KEY_OVERRIDE": "",
	"GEMINI_ENV_FILE":         ".env",
	"GEMINI_SYSTEM_PROMPT":    "",
	"GEMINI_DEV_FALLBACK":     false,
	"GEMINI_IMAGE_ENABLED":    false,
	"GEMINI_IMAGE_URL":        "",
	"GEMINI_IMAGE_MODEL":      "gemini-2.5-flash-image",
	"GEMINI_TEXT_TIMEOUT":     "60s",
	"GEMINI_IMAGE_TIMEOUT":    "120s",
	"SAFETY_MODE":             "warn",
	"AUTH_ENABLED":            false,
	"API_KEYS":                []string{},
	"JWT_SECRET":              "",
	"REDIS_URL":               "",
	"REDIS_PASSWORD":          "",
	"RATE_LIMIT_PER_MINUTE":   30,
	"CORS_ALLOWED_ORIGINS":    []string{"http://localhost:3000", "http://localhost:5173"},
	"S3_BUCKET_NAME":          "",
	"AWS_REGION":              "us-east-1",
	"IMAGE_UPLOAD_ENABLED":    false,
	"LOG_LEVEL":               "info",
	"LOG_FORMAT":              "json",
}

// LoadConfig reads configuration from an optional file and the environment,
// fills empty secrets from Docker secrets and validates the result.
// Environment variables override file values.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Environment = GetEnvironment()
	cfg.APIKeys = splitList(cfg.APIKeys)
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)
	cfg.SafetyMode = strings.ToLower(strings.TrimSpace(cfg.SafetyMode))
	loadSecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// loadSecrets fills sensitive values that were not set through the environment.
// CI uses environment variables only.
func loadSecrets(cfg *Config) {
	if !cfg.Environment.UsesSecretsDir() {
		return
	}
	if cfg.GeminiAPIKeyDefault == "" {
		cfg.GeminiAPIKeyDefault = readSecret("gemini_api_key")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = readSecret("jwt_secret")
	}
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = readSecret("redis_password")
	}
}

// splitList flattens comma separated entries and drops blanks
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
