package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"paper-review/internal/shared/telemetry"
)

const (
	DefaultEndpoint    = "http://127.0.0.1:5000/pdf/upload"
	defaultPort        = "8080"
	defaultMaxUploadMB = 32
	defaultRatePerMin  = 30
	defaultBreakerTrip = 5
	defaultBreakerOpen = 30 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	CORSAllowOrigin  []string
	AnalysisEndpoint string
	// UploadTimeout of zero leaves the upstream call unbounded.
	UploadTimeout    time.Duration
	MaxUploadMB      int64
	UploadRatePerMin int
	// BreakerFailures consecutive transport failures open the upstream
	// circuit for BreakerOpen. Zero disables the breaker.
	BreakerFailures int
	BreakerOpen     time.Duration
	LogLevel        string
}

// Load reads configuration from the optional YAML file, then environment variables.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("PAPER_REVIEW_CONFIG")); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			telemetry.Warn("config.file.ignored", map[string]any{"path": path, "err": err})
		} else {
			cfg = fileCfg
		}
	}
	return applyEnv(cfg)
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:             defaultPort,
		Env:              "dev",
		CORSAllowOrigin:  []string{"http://localhost:5173"},
		AnalysisEndpoint: DefaultEndpoint,
		MaxUploadMB:      defaultMaxUploadMB,
		UploadRatePerMin: defaultRatePerMin,
		BreakerFailures:  defaultBreakerTrip,
		BreakerOpen:      defaultBreakerOpen,
		LogLevel:         "info",
	}
}

func applyEnv(cfg Config) Config {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = normalizeEnv(getEnv("ENV", cfg.Env))
	if raw := os.Getenv("CORS_ALLOW_ORIGINS"); raw != "" {
		cfg.CORSAllowOrigin = splitAndTrim(raw)
	}
	cfg.AnalysisEndpoint = getEnv("ANALYSIS_ENDPOINT", cfg.AnalysisEndpoint)
	cfg.UploadTimeout = getDuration("UPLOAD_TIMEOUT", cfg.UploadTimeout)
	cfg.MaxUploadMB = int64(getInt("MAX_UPLOAD_MB", int(cfg.MaxUploadMB)))
	cfg.UploadRatePerMin = getInt("UPLOAD_RATE_PER_MIN", cfg.UploadRatePerMin)
	cfg.BreakerFailures = getInt("UPLOAD_BREAKER_FAILURES", cfg.BreakerFailures)
	cfg.BreakerOpen = getDuration("UPLOAD_BREAKER_OPEN", cfg.BreakerOpen)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	return cfg
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return defaultMaxUploadMB << 20
	}
	return c.MaxUploadMB << 20
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
	return def
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
