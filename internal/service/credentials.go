package service

import (
	"bufio"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// APIKeyName is the environment variable and .env key holding the Gemini credential
	APIKeyName = "GEMINI_API_KEY"
	// PlaceholderAPIKey is shipped in sample configuration and never valid
	PlaceholderAPIKey = "YOUR_SECURE_API_KEY_HERE"
)

// CredentialResolver resolves the Gemini API key from, in order: an explicit
// override, the process environment, a local .env style file and a configured
// default. Nothing is cached; every call re-reads its sources.
type CredentialResolver struct {
	override  string
	envFile   string
	fallback  string
	lookupEnv func(string) (string, bool)
}

// NewCredentialResolver creates a resolver. envFile may be empty to skip the file layer.
func NewCredentialResolver(override, envFile, fallback string) *CredentialResolver {
	return &CredentialResolver{
		override:  override,
		envFile:   envFile,
		fallback:  fallback,
		lookupEnv: os.LookupEnv,
	}
}

// Resolve returns the first non-blank credential, or "" when every layer is blank
func (r *CredentialResolver) Resolve() string {
	if v := strings.TrimSpace(r.override); v != "" {
		return v
	}
	if v, ok := r.lookupEnv(APIKeyName); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if r.envFile != "" {
		if v := readEnvFileKey(r.envFile, APIKeyName); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.fallback)
}

// HasValidCredential reports whether Resolve yields a usable key
func (r *CredentialResolver) HasValidCredential() bool {
	return IsValidCredential(r.Resolve())
}

// IsValidCredential rejects blank keys and the placeholder sentinel
func IsValidCredential(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != PlaceholderAPIKey
}

// readEnvFileKey scans a KEY=VALUE file line by line so that the first
// occurrence of key wins. Missing or unreadable files yield "".
func readEnvFileKey(path, key string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values, err := godotenv.Unmarshal(line)
		if err != nil {
			continue
		}
		if v, ok := values[key]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
