package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points secrets at an empty directory and clears variables that
// may leak in from the developer's shell.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	for key := range defaults {
		if _, ok := os.LookupEnv(key); ok {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	return dir
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 60*time.Second, cfg.GeminiTextTimeout)
	assert.Equal(t, 120*time.Second, cfg.GeminiImageTimeout)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.GeminiImageModel)
	assert.Equal(t, "warn", cfg.SafetyMode)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AuthEnabled)
	assert.Empty(t, cfg.GeminiAPIKeyDefault)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GEMINI_IMAGE_ENABLED", "true")
	t.Setenv("GEMINI_TEXT_TIMEOUT", "5s")
	t.Setenv("SAFETY_MODE", "REJECT")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("API_KEYS", "one, two,,three")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.True(t, cfg.GeminiImageEnabled)
	assert.Equal(t, 5*time.Second, cfg.GeminiTextTimeout)
	assert.Equal(t, "reject", cfg.SafetyMode)
	assert.Equal(t, []string{"one", "two", "three"}, cfg.APIKeys)
}

func TestLoadConfigFromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("SERVER_PORT: 7070\nLOG_FORMAT: console\n"), 0o600))
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, "json", cfg.LogFormat, "environment overrides the file")
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gemini_api_key"), []byte("secret-key\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("jwt"), 0o600))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.GeminiAPIKeyDefault)
	assert.Equal(t, "jwt", cfg.JWTSecret)

	t.Run("should ignore secrets in CI", func(t *testing.T) {
		t.Setenv("CI", "true")
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Empty(t, cfg.GeminiAPIKeyDefault)
	})
}

func TestLoadConfigLeavesGeminiKeyToResolver(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "from-process-env")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.GeminiAPIKeyDefault, "the process variable is read per request, not at startup")

	t.Setenv("GEMINI_API_KEY_DEFAULT", "configured")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "configured", cfg.GeminiAPIKeyDefault)
}

func TestValidateConfig(t *testing.T) {
	isolate(t)

	t.Run("should reject an unknown safety mode", func(t *testing.T) {
		t.Setenv("SAFETY_MODE", "strict")
		_, err := LoadConfig("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SafetyMode: must be one of: warn reject off")
	})

	t.Run("should require credentials when auth is enabled", func(t *testing.T) {
		t.Setenv("AUTH_ENABLED", "true")
		_, err := LoadConfig("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_KEYS or JWT_SECRET is required")
	})

	t.Run("should require a bucket for uploads", func(t *testing.T) {
		t.Setenv("IMAGE_UPLOAD_ENABLED", "true")
		_, err := LoadConfig("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "S3_BUCKET_NAME is required")
	})

	t.Run("should forbid dev fallback in production", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("GEMINI_DEV_FALLBACK", "true")
		_, err := LoadConfig("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dev fallback must be disabled")
	})
}
