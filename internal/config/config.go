package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the server.
type Config struct {
	Addr              string
	DatabaseURL       string
	ActivityRetention time.Duration
	PruneInterval     time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		Addr:        strings.TrimSpace(os.Getenv("ADDR")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskdesk.db"
	}

	retentionDays, err := parsePositiveInt("ACTIVITY_RETENTION_DAYS", 90)
	if err != nil {
		return cfg, err
	}
	cfg.ActivityRetention = time.Duration(retentionDays) * 24 * time.Hour

	pruneHours, err := parsePositiveInt("PRUNE_INTERVAL_HOURS", 24)
	if err != nil {
		return cfg, err
	}
	cfg.PruneInterval = time.Duration(pruneHours) * time.Hour

	return cfg, nil
}

func parsePositiveInt(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}
