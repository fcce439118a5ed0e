package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string

	AuthBaseURL string
	AuthAPIKey  string

	AnthropicAPIKey string

	TelegramToken  string
	TelegramChatID int64

	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration

	VideoPollInterval    time.Duration
	VideoPollMaxAttempts int
}

func Load() (Config, error) {
	cfg := Config{
		Addr:                 getEnv("ADDR", ":8080"),
		LogLevel:             strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:                getEnvBool("DEBUG", false),
		PreferIPv4:           getEnvBool("PREFER_IPV4", true),
		GeminiBaseURL:        strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:     strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		AuthBaseURL:          strings.TrimSpace(os.Getenv("AUTH_BASE_URL")),
		AuthAPIKey:           strings.TrimSpace(os.Getenv("AUTH_API_KEY")),
		AnthropicAPIKey:      strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		TelegramToken:        strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:       getEnvInt64("TELEGRAM_CHAT_ID", 0),
		MaxConcurrent:        getEnvInt("MAX_CONCURRENT", 8),
		RequestTimeout:       time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 240)) * time.Second,
		HTTPTimeout:          time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		VideoPollInterval:    time.Duration(getEnvInt("VIDEO_POLL_INTERVAL_SECONDS", 10)) * time.Second,
		VideoPollMaxAttempts: getEnvInt("VIDEO_POLL_MAX_ATTEMPTS", 60),
	}

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 240 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.VideoPollInterval <= 0 {
		cfg.VideoPollInterval = 10 * time.Second
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

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
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
