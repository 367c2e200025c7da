package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port             string
	DBConn           string // empty keeps overlays in memory
	LogLevel         string
	JWTSecret        string
	RedisAddr        string // empty disables the industry-average cache
	CacheTTL         time.Duration
	OverlayTTL       time.Duration
	PurgeSchedule    string
	HistoricalCutoff int
	CORSOrigins      []string
}

// NewConfig loads configuration from environment variables, reading an
// optional .env file first
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", ""),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		PurgeSchedule: getEnv("PURGE_SCHEDULE", "@daily"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.OverlayTTL, err = time.ParseDuration(getEnv("OVERLAY_TTL", "720h")); err != nil {
		return nil, fmt.Errorf("invalid OVERLAY_TTL: %w", err)
	}
	if cfg.HistoricalCutoff, err = strconv.Atoi(getEnv("HISTORICAL_CUTOFF", "2024")); err != nil {
		return nil, fmt.Errorf("invalid HISTORICAL_CUTOFF: %w", err)
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.OverlayTTL <= 0 {
		return nil, fmt.Errorf("OVERLAY_TTL must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
