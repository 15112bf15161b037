package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                   string
	BaseURL                string
	DataDir                string
	ContractTTL            time.Duration
	CleanupInterval        time.Duration
	JWTSecret              string
	MaxBodyBytes           int64
	IndividualMonthlyLimit int
	AllowedOrigins         []string
	LogLevel               string
	LogFormat              string
}

func LoadConfig() (Config, error) {
	cfg := Config{}

	cfg.Port = envOrDefault("PORT", "8080")
	cfg.BaseURL = envOrDefault("BASE_URL", fmt.Sprintf("http://localhost:%s", cfg.Port))
	cfg.DataDir = envOrDefault("DATA_DIR", "data")
	cfg.JWTSecret = envOrDefault("JWT_SECRET", "change-me")
	cfg.LogLevel = envOrDefault("LOG_LEVEL", "info")
	cfg.LogFormat = envOrDefault("LOG_FORMAT", "text")
	cfg.AllowedOrigins = splitEnvList("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")

	ttlHours, err := parseIntEnv("CONTRACTS_TTL_HOURS", 24)
	if err != nil {
		return Config{}, fmt.Errorf("parse CONTRACTS_TTL_HOURS: %w", err)
	}
	cfg.ContractTTL = time.Duration(ttlHours) * time.Hour

	intervalMinutes, err := parseIntEnv("CLEANUP_INTERVAL_MINUTES", 60)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLEANUP_INTERVAL_MINUTES: %w", err)
	}
	cfg.CleanupInterval = time.Duration(intervalMinutes) * time.Minute

	maxBodyMB, err := parseIntEnv("MAX_BODY_MB", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_BODY_MB: %w", err)
	}
	cfg.MaxBodyBytes = maxBodyMB * 1024 * 1024

	monthlyLimit, err := parseIntEnv("INDIVIDUAL_MONTHLY_LIMIT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse INDIVIDUAL_MONTHLY_LIMIT: %w", err)
	}
	cfg.IndividualMonthlyLimit = int(monthlyLimit)

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = absDataDir

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func splitEnvList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(envOrDefault(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}
