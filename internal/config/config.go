package config

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/getpassword/getpassword-go/internal/crypto"
)

const devSecret = "dev-secret-change-in-production"

// ErrDevSecretInProduction is returned by Validate when ENV=production still
// uses the built-in session secret.
var ErrDevSecretInProduction = errors.New("SESSION_SECRET must be set in production environment")

// Config holds the widget server and shell settings. Defaults holds the
// generator options new sessions start with.
type Config struct {
	Host           string                  `yaml:"host"`
	Port           string                  `yaml:"port"`
	Env            string                  `yaml:"env"`
	SessionSecret  string                  `yaml:"-"`
	SessionTTL     time.Duration           `yaml:"session_ttl"`
	Clipboard      string                  `yaml:"clipboard"`
	RateLimitRPS   float64                 `yaml:"rate_limit_rps"`
	RateLimitBurst int                     `yaml:"rate_limit_burst"`
	Defaults       crypto.GeneratorOptions `yaml:"defaults"`
}

// Default returns the built-in configuration for local use.
func Default() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           "8080",
		Env:            "development",
		SessionSecret:  devSecret,
		SessionTTL:     30 * time.Minute,
		Clipboard:      "system",
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		Defaults:       crypto.DefaultOptions(),
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by CONFIG_FILE, then environment variables.
func Load() Config {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			slog.Warn("failed to load config file, using defaults", "path", path, "error", err)
		}
	}

	cfg.Host = getEnv("HOST", cfg.Host)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.Clipboard = getEnv("CLIPBOARD", cfg.Clipboard)
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	cfg.Defaults.Length = getEnvInt("DEFAULT_LENGTH", cfg.Defaults.Length)
	cfg.Defaults.Numbers = getEnvBool("DEFAULT_NUMBERS", cfg.Defaults.Numbers)
	cfg.Defaults.Symbols = getEnvBool("DEFAULT_SYMBOLS", cfg.Defaults.Symbols)

	cfg.Defaults = cfg.Defaults.Normalize()
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = Default().SessionTTL
	}
	if cfg.RateLimitBurst < 1 {
		cfg.RateLimitBurst = 1
	}

	return cfg
}

// Addr returns the listen address. The host defaults to loopback because
// copies land on the clipboard of the machine running the server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Validate rejects settings that must not reach production.
func (c Config) Validate() error {
	if c.Env == "production" && c.SessionSecret == devSecret {
		return ErrDevSecretInProduction
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring invalid integer", "key", key, "value", v)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring invalid number", "key", key, "value", v)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("ignoring invalid boolean", "key", key, "value", v)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("ignoring invalid duration", "key", key, "value", v)
	}
	return fallback
}
