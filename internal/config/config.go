package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTPAddr string
	BaseURL  string

	DBDSN            string
	URLSigningSecret string

	LogLevel string

	RateLimitRPM int

	MaxUploadBytes int64

	ScreenshotDir string

	WebhookTimeoutMS int
	RetentionDays    int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Env = strings.TrimSpace(os.Getenv("RL_ENV"))
	if cfg.Env == "" {
		return nil, fmt.Errorf("RL_ENV is required")
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("RL_ENV must be one of: dev, prod (got: %s)", cfg.Env)
	}

	cfg.HTTPAddr = getEnvOrDefault("RL_HTTP_ADDR", ":8080")

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("RL_BASE_URL")), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("RL_BASE_URL is required")
	}

	cfg.DBDSN = strings.TrimSpace(os.Getenv("RL_DB_DSN"))
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("RL_DB_DSN is required")
	}

	cfg.URLSigningSecret = os.Getenv("RL_URL_SIGNING_SECRET")
	if cfg.URLSigningSecret == "" {
		return nil, fmt.Errorf("RL_URL_SIGNING_SECRET is required")
	}
	if cfg.Env == "prod" && len(cfg.URLSigningSecret) < 32 {
		return nil, fmt.Errorf("RL_URL_SIGNING_SECRET must be at least 32 characters (currently %d)", len(cfg.URLSigningSecret))
	}

	cfg.LogLevel = getEnvOrDefault("RL_LOG_LEVEL", "info")
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("RL_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", cfg.LogLevel)
	}

	var err error
	cfg.RateLimitRPM, err = getEnvIntOrDefault("RL_RATE_LIMIT_RPM", 60)
	if err != nil {
		return nil, err
	}

	cfg.MaxUploadBytes, err = getEnvInt64OrDefault("RL_MAX_UPLOAD_BYTES", 100*1024*1024)
	if err != nil {
		return nil, err
	}

	cfg.ScreenshotDir = getEnvOrDefault("RL_SCREENSHOT_DIR", "data/screenshots")

	cfg.WebhookTimeoutMS, err = getEnvIntOrDefault("RL_WEBHOOK_TIMEOUT_MS", 3000)
	if err != nil {
		return nil, err
	}
	if cfg.WebhookTimeoutMS <= 0 || cfg.WebhookTimeoutMS > 30000 {
		return nil, fmt.Errorf("RL_WEBHOOK_TIMEOUT_MS must be between 1 and 30000 (got: %d)", cfg.WebhookTimeoutMS)
	}

	cfg.RetentionDays, err = getEnvIntOrDefault("RL_RETENTION_DAYS", 90)
	if err != nil {
		return nil, err
	}
	if cfg.RetentionDays < 1 {
		return nil, fmt.Errorf("RL_RETENTION_DAYS must be at least 1 (got: %d)", cfg.RetentionDays)
	}

	return cfg, nil
}

// IsDev returns true if running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// RedactedValues returns a map of config values with secrets redacted.
func (c *Config) RedactedValues() map[string]string {
	return map[string]string{
		"RL_ENV":                c.Env,
		"RL_HTTP_ADDR":          c.HTTPAddr,
		"RL_BASE_URL":           c.BaseURL,
		"RL_DB_DSN":             redactDSN(c.DBDSN),
		"RL_URL_SIGNING_SECRET": "[REDACTED]",
		"RL_LOG_LEVEL":          c.LogLevel,
		"RL_RATE_LIMIT_RPM":     fmt.Sprintf("%d", c.RateLimitRPM),
		"RL_MAX_UPLOAD_BYTES":   fmt.Sprintf("%d", c.MaxUploadBytes),
		"RL_SCREENSHOT_DIR":     c.ScreenshotDir,
		"RL_WEBHOOK_TIMEOUT_MS": fmt.Sprintf("%d", c.WebhookTimeoutMS),
		"RL_RETENTION_DAYS":     fmt.Sprintf("%d", c.RetentionDays),
	}
}

func redactDSN(dsn string) string {
	if start := strings.Index(dsn, "://"); start != -1 {
		if end := strings.Index(dsn[start+3:], "@"); end != -1 {
			return dsn[:start+3] + "[REDACTED]" + dsn[start+3+end:]
		}
	}
	return dsn
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}

func getEnvInt64OrDefault(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}
