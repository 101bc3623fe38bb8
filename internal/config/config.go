package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG"`

	PreferIPv4            bool `env:"PREFER_IPV4" envDefault:"true"`
	HTTPTimeoutSeconds    int  `env:"HTTP_TIMEOUT_SECONDS" envDefault:"180"`
	RequestTimeoutSeconds int  `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"240"`

	GeminiBaseURL    string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiAPIVersion string `env:"GEMINI_API_VERSION" envDefault:"v1beta"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-image"`
	GeminiBackend    string `env:"GEMINI_BACKEND" envDefault:"rest"`
	// Names of the variables holding the API key. The key itself is read
	// on every call and never stored here.
	CredentialEnv []string `env:"GEMINI_CREDENTIAL_ENV" envSeparator:"," envDefault:"GEMINI_API_KEY,API_KEY"`

	WebAddr                string `env:"WEB_ADDR" envDefault:":8080"`
	MaxUploadMB            int    `env:"MAX_UPLOAD_MB" envDefault:"25"`
	SessionTTLMinutes      int    `env:"SESSION_TTL_MINUTES" envDefault:"60"`
	TransformRatePerMinute int    `env:"TRANSFORM_RATE_PER_MINUTE" envDefault:"10"`

	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
	MaxConcurrent int    `env:"MAX_CONCURRENT" envDefault:"4"`

	HTTPTimeout    time.Duration `env:"-"`
	RequestTimeout time.Duration `env:"-"`
	SessionTTL     time.Duration `env:"-"`
	MaxUploadBytes int64         `env:"-"`
}

// Load reads the web service configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.GeminiBaseURL = strings.TrimSpace(cfg.GeminiBaseURL)
	cfg.GeminiAPIVersion = strings.TrimSpace(cfg.GeminiAPIVersion)
	cfg.GeminiModel = strings.TrimSpace(cfg.GeminiModel)
	cfg.GeminiBackend = strings.ToLower(strings.TrimSpace(cfg.GeminiBackend))
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.CredentialEnv = cleanList(cfg.CredentialEnv)

	if cfg.GeminiBackend == "" {
		cfg.GeminiBackend = BackendREST
	}
	if strings.TrimSpace(cfg.WebAddr) == "" {
		cfg.WebAddr = ":8080"
	}

	switch cfg.GeminiBackend {
	case BackendREST, BackendSDK:
	default:
		return Config{}, fmt.Errorf("GEMINI_BACKEND must be %q or %q, got %q", BackendREST, BackendSDK, cfg.GeminiBackend)
	}
	if len(cfg.CredentialEnv) == 0 {
		return Config{}, errors.New("GEMINI_CREDENTIAL_ENV must name at least one variable")
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 180
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = 240
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 25
	}
	if cfg.SessionTTLMinutes <= 0 {
		cfg.SessionTTLMinutes = 60
	}
	if cfg.TransformRatePerMinute < 0 {
		cfg.TransformRatePerMinute = 0
	}

	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.SessionTTL = time.Duration(cfg.SessionTTLMinutes) * time.Minute
	cfg.MaxUploadBytes = int64(cfg.MaxUploadMB) << 20

	return cfg, nil
}

// LoadBot is Load plus the settings only the Telegram bot needs.
func LoadBot() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	if cfg.TelegramToken == "" {
		return Config{}, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return cfg, nil
}

// NewLogger builds the JSON stdout logger at cfg.LogLevel.
func NewLogger(cfg Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	}))
}

func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
