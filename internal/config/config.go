package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "windowspec-dev-secret-change-me"

type Config struct {
	HTTPAddr      string
	Secret        string
	SessionTTL    time.Duration
	SweepInterval time.Duration
	MaxPhotoBytes int64
	DefaultLang   string
	GelfAddr      string
}

// Load reads the optional env file (WQ_ENV_FILE, default ".env") and then the
// process environment. Variables already set in the environment win over the
// file.
func Load() (*Config, error) {
	envFile := getEnv("WQ_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		HTTPAddr:      getEnv("WQ_ADDR", ":8080"),
		Secret:        getEnv("WQ_SECRET", devSecret),
		SessionTTL:    getEnvDuration("WQ_SESSION_TTL", 30*time.Minute),
		SweepInterval: getEnvDuration("WQ_SWEEP_INTERVAL", time.Minute),
		MaxPhotoBytes: int64(getEnvInt("WQ_MAX_PHOTO_BYTES", 12<<20)),
		DefaultLang:   getEnv("WQ_DEFAULT_LANG", "en"),
		GelfAddr:      getEnv("WQ_GELF_ADDR", ""),
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("WQ_SESSION_TTL must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("WQ_SWEEP_INTERVAL must be positive")
	}
	if cfg.MaxPhotoBytes <= 0 {
		return nil, fmt.Errorf("WQ_MAX_PHOTO_BYTES must be positive")
	}
	return cfg, nil
}

// UsingDevSecret reports whether the built-in secret is in use.
func (c *Config) UsingDevSecret() bool {
	return c.Secret == devSecret
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
