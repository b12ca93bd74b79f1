package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"authenticity-backend/internal/shared/telemetry"
)

// ErrMissing marks a required setting that is absent.
var ErrMissing = errors.New("required configuration missing")

const (
	ProviderGateway = "gateway"
	ProviderGenAI   = "genai"

	defaultVideoMaxBytes = 20 * 1024 * 1024
	defaultFeedbackLimit = 10
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	DatabaseURL     string

	JWTSecret      string
	IdentityURL    string
	IdentityAPIKey string

	ModelProvider   string
	ModelGatewayURL string
	ModelAPIKey     string
	GeminiAPIKey    string
	ModelFast       string
	ModelStrong     string

	SearchAPIURL  string
	SearchAPIKeys []string

	VideoMaxBytes  int64
	FeedbackLimit  int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
		DatabaseURL:     dbURL,
		JWTSecret:       getEnv("JWT_SECRET", ""),
		IdentityURL:     getEnv("IDENTITY_URL", ""),
		IdentityAPIKey:  getEnv("IDENTITY_API_KEY", ""),
		ModelProvider:   normalizeProvider(getEnv("MODEL_PROVIDER", ProviderGateway)),
		ModelGatewayURL: getEnv("MODEL_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1/chat/completions"),
		ModelAPIKey:     getEnv("MODEL_GATEWAY_API_KEY", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		ModelFast:       getEnv("MODEL_FAST", "google/gemini-2.5-flash"),
		ModelStrong:     getEnv("MODEL_STRONG", "google/gemini-2.5-pro"),
		SearchAPIURL:    getEnv("SEARCH_API_URL", "https://google.serper.dev/search"),
		SearchAPIKeys:   searchKeysFromEnv(),
		VideoMaxBytes:   getEnvInt64("VIDEO_MAX_BYTES", defaultVideoMaxBytes),
		FeedbackLimit:   int(getEnvInt64("FEEDBACK_LIMIT", defaultFeedbackLimit)),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 0.5),
		RateLimitBurst:  int(getEnvInt64("RATE_LIMIT_BURST", 10)),
	}
}

// ModelCredential returns the secret for the configured model provider.
func (c Config) ModelCredential() string {
	if c.ModelProvider == ProviderGenAI {
		return strings.TrimSpace(c.GeminiAPIKey)
	}
	return strings.TrimSpace(c.ModelAPIKey)
}

// RequireModel reports a missing model credential.
func (c Config) RequireModel() error {
	if c.ModelCredential() == "" {
		if c.ModelProvider == ProviderGenAI {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissing)
		}
		return fmt.Errorf("%w: MODEL_GATEWAY_API_KEY", ErrMissing)
	}
	return nil
}

// RequireSearch reports missing search credentials.
func (c Config) RequireSearch() error {
	if len(c.SearchAPIKeys) == 0 {
		return fmt.Errorf("%w: SEARCH_API_KEYS", ErrMissing)
	}
	return nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

// searchKeysFromEnv keeps the listed order of SEARCH_API_KEYS, then appends
// numbered SEARCH_API_KEY_<n> entries in ascending n.
func searchKeysFromEnv() []string {
	keys := splitAndTrim(os.Getenv("SEARCH_API_KEYS"))
	type numbered struct {
		n   int
		val string
	}
	var extra []numbered
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "SEARCH_API_KEY_") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, "SEARCH_API_KEY_"))
		if err != nil || strings.TrimSpace(val) == "" {
			continue
		}
		extra = append(extra, numbered{n: n, val: strings.TrimSpace(val)})
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].n < extra[j].n })
	for _, e := range extra {
		keys = append(keys, e.val)
	}
	return keys
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "genai", "gemini":
		return ProviderGenAI
	default:
		return ProviderGateway
	}
}
