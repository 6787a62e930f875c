package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	HDevAPIKey  string
	HDevBaseURL string

	// upstream throttle and retry
	RequestSpacing    time.Duration
	RetryCount        int
	RetryInitialDelay time.Duration
	RetryMultiplier   float64
	Regions           []string

	DBPath     string
	RedisURL   string
	CacheTTL   time.Duration
	ServerPort string
	LogLevel   string

	BackfillSize     int
	BackfillDeadline time.Duration

	APIRateLimit float64
	APIRateBurst int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	l := loader{logger: logger}
	cfg := &Config{
		HDevAPIKey:        l.getEnv("HDEV_API_KEY", ""),
		HDevBaseURL:       strings.TrimRight(l.getEnv("HDEV_BASE_URL", "https://api.henrikdev.xyz"), "/"),
		RequestSpacing:    l.getDuration("HDEV_REQUEST_SPACING", 2*time.Second),
		RetryCount:        l.getInt("HDEV_RETRY_COUNT", 3),
		RetryInitialDelay: l.getDuration("HDEV_RETRY_INITIAL_DELAY", time.Second),
		RetryMultiplier:   l.getFloat("HDEV_RETRY_MULTIPLIER", 2.0),
		Regions:           l.getList("HDEV_REGIONS", []string{"eu", "na", "ap", "kr", "latam", "br"}),
		DBPath:            l.getEnv("DB_PATH", "valorant.db"),
		RedisURL:          l.getEnv("REDIS_URL", ""),
		CacheTTL:          l.getDuration("CACHE_TTL", 5*time.Minute),
		ServerPort:        l.getEnv("SERVER_PORT", "8080"),
		LogLevel:          l.getEnv("LOG_LEVEL", "info"),
		BackfillSize:      l.getInt("BACKFILL_SIZE", 20),
		BackfillDeadline:  l.getDuration("BACKFILL_DEADLINE", 30*time.Second),
		APIRateLimit:      l.getFloat("API_RATE_LIMIT", 20),
		APIRateBurst:      l.getInt("API_RATE_BURST", 40),
	}

	if cfg.HDevAPIKey == "" {
		return nil, fmt.Errorf("HDEV_API_KEY is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("hdev_base_url", cfg.HDevBaseURL).
		Dur("request_spacing", cfg.RequestSpacing).
		Int("retry_count", cfg.RetryCount).
		Strs("regions", cfg.Regions).
		Bool("cache_enabled", cfg.RedisURL != "").
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

type loader struct {
	logger zerolog.Logger
}

func (l loader) getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (l loader) getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		l.logger.Warn().Str("key", key).Str("value", v).Int("default", fallback).Msg("invalid integer, using default")
		return fallback
	}
	return i
}

func (l loader) getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		l.logger.Warn().Str("key", key).Str("value", v).Float64("default", fallback).Msg("invalid number, using default")
		return fallback
	}
	return f
}

func (l loader) getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		l.logger.Warn().Str("key", key).Str("value", v).Dur("default", fallback).Msg("invalid duration, using default")
		return fallback
	}
	return d
}

func (l loader) getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

var Module = fx.Provide(Load)
