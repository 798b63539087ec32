package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names understood by Load.
const (
	EnvBaseURL            = "DONETICK_BASE_URL"
	EnvAPIToken           = "DONETICK_API_TOKEN"
	EnvLogLevel           = "LOG_LEVEL"
	EnvRateLimitPerSecond = "RATE_LIMIT_PER_SECOND"
	EnvRateLimitBurst     = "RATE_LIMIT_BURST"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultLogLevel           = "info"
	DefaultRateLimitPerSecond = 10.0
	DefaultRateLimitBurst     = 10
)

// Error reports a missing or invalid configuration value. It is raised
// at load time and never recovered from.
type Error struct {
	// Key is the environment variable that failed validation
	Key string

	// Reason describes why the value was rejected
	Reason string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// Config holds the settings for the Donetick MCP server. It is read
// once at startup and treated as immutable afterwards.
type Config struct {
	// BaseURL is the Donetick instance URL, without a trailing slash
	BaseURL string

	// APIToken authenticates against the Donetick eAPI (secretkey header)
	APIToken string

	// LogLevel is the slog level for the server's structured logs
	LogLevel slog.Level

	// RateLimitPerSecond is the token bucket refill rate for outbound requests
	RateLimitPerSecond float64

	// RateLimitBurst is the token bucket capacity
	RateLimitBurst int
}

// Load reads configuration from the environment, applying defaults and
// validating eagerly so the process fails fast on a broken setup.
// A .env file in the working directory is honoured when present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	return loadFromEnv(os.Getenv)
}

// loadFromEnv builds a Config from the given lookup function.
// Split out from Load so tests can inject an environment.
func loadFromEnv(getenv func(string) string) (*Config, error) {
	baseURL := strings.TrimRight(getenv(EnvBaseURL), "/")
	if baseURL == "" {
		return nil, &Error{
			Key:    EnvBaseURL,
			Reason: "required; set it to your Donetick instance URL",
		}
	}

	token := getenv(EnvAPIToken)
	if token == "" {
		return nil, &Error{
			Key:    EnvAPIToken,
			Reason: "required; generate a token in Donetick Settings > Access Token",
		}
	}

	level, err := parseLogLevel(valueOrDefault(getenv(EnvLogLevel), DefaultLogLevel))
	if err != nil {
		return nil, &Error{Key: EnvLogLevel, Reason: err.Error()}
	}

	rate := DefaultRateLimitPerSecond
	if v := getenv(EnvRateLimitPerSecond); v != "" {
		rate, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &Error{Key: EnvRateLimitPerSecond, Reason: fmt.Sprintf("invalid float %q", v)}
		}
	}
	if rate <= 0 {
		return nil, &Error{Key: EnvRateLimitPerSecond, Reason: "must be positive"}
	}

	burst := DefaultRateLimitBurst
	if v := getenv(EnvRateLimitBurst); v != "" {
		burst, err = strconv.Atoi(v)
		if err != nil {
			return nil, &Error{Key: EnvRateLimitBurst, Reason: fmt.Sprintf("invalid integer %q", v)}
		}
	}
	if burst <= 0 {
		return nil, &Error{Key: EnvRateLimitBurst, Reason: "must be positive"}
	}

	return &Config{
		BaseURL:            baseURL,
		APIToken:           token,
		LogLevel:           level,
		RateLimitPerSecond: rate,
		RateLimitBurst:     burst,
	}, nil
}

// parseLogLevel maps a level name to a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (expected debug, info, warn or error)", s)
	}
}

func valueOrDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
