package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret       string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m" validate:"min=1m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h" validate:"gtfield=AccessTokenTTL"`

	ConfirmationTTL time.Duration `env:"CONFIRMATION_TTL" envDefault:"30m" validate:"min=1m"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	// Email goes through Resend when an API key is set, SMTP when a host is set,
	// and is only logged otherwise (local dev).
	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendFrom   string `env:"RESEND_FROM" validate:"required_with=ResendAPIKey"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587" validate:"min=1,max=65535"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" validate:"required_with=SMTPHost"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID" validate:"required_if=Env production,required_if=Env staging"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"  validate:"required_with=TwilioAccountSID"`
	TwilioFrom       string `env:"TWILIO_FROM"        validate:"required_with=TwilioAccountSID"`
	SMSCountryPrefix string `env:"SMS_COUNTRY_PREFIX" envDefault:"+351" validate:"required,startswith=+"`

	UploadDir      string `env:"UPLOAD_DIR" envDefault:"static/images"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"10485760" validate:"min=1024"`

	CleanupCron  string `env:"CLEANUP_CRON" envDefault:"0 23 * * *" validate:"required"`
	CleanupScope string `env:"CLEANUP_SCOPE" envDefault:"weekday" validate:"oneof=weekday all"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
