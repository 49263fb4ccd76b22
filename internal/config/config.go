package config

import (
	"os"
	"time"
)

type Config struct {
	Port                 string
	SearchURL            string
	SearchTimeout        time.Duration
	SearchCacheTTL       time.Duration
	SourcesFile          string
	DatabaseURL          string
	RedisURL             string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	LogLevel             string
	Environment          string
	CORSOrigins          string
}

func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		SearchURL:            getEnv("SEARCH_URL", "http://localhost:3000/api/search"),
		SearchTimeout:        getDuration("SEARCH_TIMEOUT", 15*time.Second),
		SearchCacheTTL:       getDuration("SEARCH_CACHE_TTL", 5*time.Minute),
		SourcesFile:          getEnv("SOURCES_FILE", "config/sources.yaml"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		SessionTTL:           getDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		CORSOrigins:          getEnv("CORS_ORIGINS", "*"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses values like "15s" or "2m"; bad values fall back.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
