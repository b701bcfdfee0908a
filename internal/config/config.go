package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string
	Port        string

	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	SMSBaseURL  string
	SMSEmail    string
	SMSPassword string
	SMSFrom     string
}

// Load reads configuration from environment variables. All missing required
// variables are reported in one error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        "8080",
		SMSBaseURL:  "https://notify.eskiz.uz/api",
		SMSFrom:     "4546",
		JWTIssuer:   "mymd",
		JWTAudience: "mymd-clients",
	}

	var errs error
	for _, v := range []struct {
		name   string
		target *string
	}{
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"JWT_SECRET", &cfg.JWTSecret},
	} {
		value := os.Getenv(v.name)
		if value == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s environment variable is required", v.name))
			continue
		}
		*v.target = value
	}
	if errs != nil {
		return nil, errs
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		cfg.JWTIssuer = issuer
	}
	if audience := os.Getenv("JWT_AUDIENCE"); audience != "" {
		cfg.JWTAudience = audience
	}

	accessMinutes, err := intEnv("ACCESS_TOKEN_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = time.Duration(accessMinutes) * time.Minute

	refreshDays, err := intEnv("REFRESH_TOKEN_TTL_DAYS", 30)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTokenTTL = time.Duration(refreshDays) * 24 * time.Hour

	if base := os.Getenv("SMS_BASE_URL"); base != "" {
		cfg.SMSBaseURL = base
	}
	cfg.SMSEmail = os.Getenv("SMS_EMAIL")
	cfg.SMSPassword = os.Getenv("SMS_PASSWORD")
	if from := os.Getenv("SMS_FROM"); from != "" {
		cfg.SMSFrom = from
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return value, nil
}
