package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Data provider
	StatsBaseURL string
	LiveBaseURL  string
	Season       string

	// Baselines
	BaselinesPath   string
	ResearchOnStart bool

	// Tuning
	TuningPath string

	// Polling
	PollInterval    time.Duration
	ScheduleRefresh time.Duration

	// Alerting
	DiscordWebhookURL string

	// Optional push feed for game status
	LiveFeedWSURL string

	// Backtest
	BacktestDBPath string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		StatsBaseURL: envStr("NBA_STATS_BASE_URL", ""),
		LiveBaseURL:  envStr("NBA_LIVE_BASE_URL", ""),
		Season:       envStr("NBA_SEASON", "2025-26"),

		BaselinesPath:   envStr("BASELINES_PATH", "data/baselines.json"),
		ResearchOnStart: envStr("RESEARCH_ON_START", "true") == "true",

		TuningPath: envStr("TUNING_PATH", "internal/config/tuning.yaml"),

		// The live endpoint refreshes roughly twice a minute; polling
		// faster than this only re-reads identical snapshots.
		PollInterval:    time.Duration(envInt("POLL_INTERVAL_SEC", 30)) * time.Second,
		ScheduleRefresh: time.Duration(envInt("SCHEDULE_REFRESH_SEC", 300)) * time.Second,

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		LiveFeedWSURL: envStr("LIVE_FEED_WS_URL", ""),

		BacktestDBPath: envStr("BACKTEST_DB_PATH", "data/backtest.db"),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
