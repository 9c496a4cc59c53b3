package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeHTTP = "http"
	ModeMock = "mock"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port     string
	Env      string
	LogLevel string
	LogFile  string

	ReportServiceMode string
	ReportServiceURL  string
	ReportTimeout     time.Duration
	MockDelay         time.Duration

	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	AllowedOrigins   []string
	SubmitRatePerMin int
	SanitizeReports  bool
	DefaultQuery     string
}

// Load reads envFile (if it exists) into the environment and builds a Config.
// An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// Missing .env is normal outside local development.
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		Env:               getenv("APP_ENV", "development"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFile:           getenv("LOG_FILE", ""),
		ReportServiceMode: strings.ToLower(getenv("REPORT_SERVICE_MODE", ModeHTTP)),
		ReportServiceURL:  getenv("REPORT_SERVICE_URL", "http://localhost:8000"),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		AllowedOrigins:    splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		SanitizeReports:   getenv("SANITIZE_REPORTS", "true") == "true",
		DefaultQuery:      getenv("DEFAULT_QUERY", "Best skills to learn in 2025"),
	}

	var err error
	if cfg.ReportTimeout, err = getenvDuration("REPORT_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MockDelay, err = getenvDuration("MOCK_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SubmitRatePerMin, err = getenvInt("SUBMIT_RATE_PER_MIN", 30); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.ReportServiceMode {
	case ModeHTTP:
		if c.ReportServiceURL == "" {
			return fmt.Errorf("REPORT_SERVICE_URL is required when REPORT_SERVICE_MODE=%s", ModeHTTP)
		}
	case ModeMock:
	default:
		return fmt.Errorf("REPORT_SERVICE_MODE must be %q or %q, got %q", ModeHTTP, ModeMock, c.ReportServiceMode)
	}
	if c.SubmitRatePerMin < 0 {
		return fmt.Errorf("SUBMIT_RATE_PER_MIN must not be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
