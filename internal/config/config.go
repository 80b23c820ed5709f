package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	RedisURL    string
	LayoutFile  string // empty uses the built-in layout
	FeedFile    string // empty reads stdin
	MaxLines    int
	SessionID   uuid.UUID // uuid.Nil when unset
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		LayoutFile:  getEnv("LAYOUT_FILE", ""),
		FeedFile:    getEnv("FEED_FILE", ""),
	}

	maxLines, err := strconv.Atoi(getEnv("MAX_LINES", "1000"))
	if err != nil || maxLines <= 0 {
		return nil, fmt.Errorf("MAX_LINES must be a positive integer, got %q", os.Getenv("MAX_LINES"))
	}
	cfg.MaxLines = maxLines

	if raw := getEnv("SESSION_ID", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_ID: %w", err)
		}
		cfg.SessionID = id
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
