package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	GeminiAPIKey string
	DatabaseURL  string

	WebAddr  string
	LogLevel string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent      int
	MaxUploadBytes     int64
	RequestTimeout     time.Duration
	HTTPTimeout        time.Duration
	GeminiBaseURL      string
	GeminiAPIVersion   string
	PromptCacheMaxAge  time.Duration
	SessionMaxIdle     time.Duration
	StrictTemplateVars bool
}

func Load() (Config, error) {
	cfg := Config{
		WebAddr:            strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		LogLevel:           strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:              getEnvBool("DEBUG", false),
		PreferIPv4:         getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:      getEnvInt("MAX_CONCURRENT", 4),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		GeminiBaseURL:      strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:   strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		PromptCacheMaxAge:  time.Duration(getEnvInt("PROMPT_CACHE_MAX_AGE_HOURS", 24)) * time.Hour,
		SessionMaxIdle:     time.Duration(getEnvInt("SESSION_MAX_IDLE_HOURS", 12)) * time.Hour,
		StrictTemplateVars: getEnvBool("STRICT_TEMPLATE_VARS", true),
	}

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.MaxUploadBytes < 1<<20 {
		cfg.MaxUploadBytes = 1 << 20
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.PromptCacheMaxAge <= 0 {
		cfg.PromptCacheMaxAge = 24 * time.Hour
	}
	if cfg.SessionMaxIdle <= 0 {
		cfg.SessionMaxIdle = 12 * time.Hour
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
