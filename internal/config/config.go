// Package config provides centralized configuration for the solvesync server.
// All configurable values are loaded from environment variables with sensible defaults.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yangwenmai/solvesync/internal/model"
)

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string

	// DBPath is the path to the SQLite database file.
	DBPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// GitHubAPIURL is the base URL of the GitHub REST API.
	GitHubAPIURL string

	// GitHubToken, GitHubOwner and GitHubRepo seed empty stored settings.
	GitHubToken string
	GitHubOwner string
	GitHubRepo  string

	// DefaultLanguage is used when no language can be located on the page.
	DefaultLanguage string

	// WorkerInterval is the polling interval for the background worker.
	WorkerInterval time.Duration

	// HTTPTimeout is the timeout for outgoing GitHub requests.
	HTTPTimeout time.Duration

	// NavSettleDelay and RenderSettleDelay are waited, in order, after
	// navigation to a submission-detail URL before it is captured.
	NavSettleDelay    time.Duration
	RenderSettleDelay time.Duration

	// TriggerDedupeWindow suppresses repeated triggers for the same URL.
	TriggerDedupeWindow time.Duration

	// SnapshotTTL is how long a posted page snapshot stays usable for
	// navigation captures.
	SnapshotTTL time.Duration

	// MaxSnapshotBytes caps the request body of snapshot and capture posts.
	MaxSnapshotBytes int

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string

	// DryRun replaces the GitHub client with a logging syncer.
	DryRun bool
}

// Load reads configuration from environment variables, applying defaults.
// Values in .env.local are loaded first; the real environment wins.
func Load() Config {
	loadEnvFile(".env.local")

	return Config{
		Port:                envOr("PORT", "8080"),
		DBPath:              envOr("DB_PATH", "solvesync.db"),
		LogLevel:            envOr("LOG_LEVEL", "info"),
		GitHubAPIURL:        envOr("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		GitHubOwner:         os.Getenv("GITHUB_REPO_OWNER"),
		GitHubRepo:          os.Getenv("GITHUB_REPO_NAME"),
		DefaultLanguage:     os.Getenv("DEFAULT_LANGUAGE"),
		WorkerInterval:      envDuration("WORKER_INTERVAL", 3*time.Second),
		HTTPTimeout:         envDuration("HTTP_TIMEOUT", 30*time.Second),
		NavSettleDelay:      envDuration("NAV_SETTLE_DELAY", time.Second),
		RenderSettleDelay:   envDuration("RENDER_SETTLE_DELAY", 1500*time.Millisecond),
		TriggerDedupeWindow: envDuration("TRIGGER_DEDUPE_WINDOW", 10*time.Second),
		SnapshotTTL:         envDuration("SNAPSHOT_TTL", 2*time.Minute),
		MaxSnapshotBytes:    envInt("MAX_SNAPSHOT_BYTES", 5<<20),
		CORSOrigin:          envOr("CORS_ORIGIN", "*"),
		DryRun:              envBool("DRY_RUN", false),
	}
}

// SeedSettings returns the GitHub settings provided through the environment.
func (c Config) SeedSettings() model.Settings {
	return model.Settings{
		Token:           c.GitHubToken,
		RepoOwner:       c.GitHubOwner,
		RepoName:        c.GitHubRepo,
		DefaultLanguage: c.DefaultLanguage,
	}
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadEnvFile loads key=value pairs from path without overriding variables
// already present in the environment. A missing file is not an error.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("could not load env file", "path", path, "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
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

func envInt(key string, fallback int) int {
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

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
