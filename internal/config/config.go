package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	LogLevel        string
	DatabaseURL     string
	AuthProviderURL string
	SessionTTL      time.Duration
	CacheSize       int
	CacheTTL        time.Duration
	ShippingCost    float64
}

func Load() Config {
	cfg := Config{
		Port:            envOrDefault("PARTSYNC_PORT", "8000"),
		LogLevel:        envOrDefault("PARTSYNC_LOG_LEVEL", "info"),
		DatabaseURL:     envOrDefault("PARTSYNC_DATABASE_URL", "file:partsync.db"),
		AuthProviderURL: envOrDefault("PARTSYNC_AUTH_PROVIDER_URL", "https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"),
		SessionTTL:      durationOrDefault("PARTSYNC_SESSION_TTL", 7*24*time.Hour),
		CacheSize:       intOrDefault("PARTSYNC_CACHE_SIZE", 1024),
		CacheTTL:        durationOrDefault("PARTSYNC_CACHE_TTL", 5*time.Minute),
		ShippingCost:    150.0,
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	}
	return cfg
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intOrDefault(key string, fallback int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && i > 0 {
		return i
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && d > 0 {
		return d
	}
	return fallback
}
