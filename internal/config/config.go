// Package config loads HabiTrack server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultPort          = 8080
	DefaultTokenTTLHours = 240 // 10 days, matches the access_token cookie Max-Age
	DefaultBaseURL       = "http://localhost:8080"
)

// Config holds all server settings.
type Config struct {
	Port         int
	DatabasePath string

	JWTSecret     string
	TokenTTLHours int

	// AllowedOrigins is the CORS allow-list. Requests from other origins
	// are answered without CORS headers.
	AllowedOrigins []string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	BaseURL string
	DevMode bool
}

// FromEnv builds a Config from HT_-prefixed environment variables.
// A .env file in the working directory is loaded first if present.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           envInt("HT_PORT", DefaultPort),
		DatabasePath:   os.Getenv("HT_DB_PATH"),
		JWTSecret:      os.Getenv("HT_JWT_SECRET"),
		TokenTTLHours:  envInt("HT_TOKEN_TTL_HOURS", DefaultTokenTTLHours),
		AllowedOrigins: splitOrigins(os.Getenv("HT_ALLOWED_ORIGINS")),
		SMTPHost:       os.Getenv("HT_SMTP_HOST"),
		SMTPPort:       envInt("HT_SMTP_PORT", 587),
		SMTPUser:       os.Getenv("HT_SMTP_USER"),
		SMTPPass:       os.Getenv("HT_SMTP_PASS"),
		SMTPFrom:       os.Getenv("HT_SMTP_FROM"),
		BaseURL:        envOrDefault("HT_BASE_URL", DefaultBaseURL),
		DevMode:        os.Getenv("HT_DEV_MODE") == "true",
	}

	if cfg.JWTSecret == "" {
		if !cfg.DevMode {
			return Config{}, fmt.Errorf("HT_JWT_SECRET is required")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"https://habitrack.app",
		}
	}

	return cfg, nil
}

// splitOrigins parses a comma-separated origin list, dropping empty entries.
func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
