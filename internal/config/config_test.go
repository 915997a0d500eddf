package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env.local")

	content := `# comment line
FOO_TEST_KEY=hello
BAR_TEST_KEY="quoted value"
BAZ_TEST_KEY='single quoted'

EMPTY_LINE_ABOVE=works
`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	keys := []string{"FOO_TEST_KEY", "BAR_TEST_KEY", "BAZ_TEST_KEY", "EMPTY_LINE_ABOVE"}
	for _, k := range keys {
		os.Unsetenv(k)
	}

	loadEnvFile(envFile)
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})

	tests := []struct {
		key  string
		want string
	}{
		{"FOO_TEST_KEY", "hello"},
		{"BAR_TEST_KEY", "quoted value"},
		{"BAZ_TEST_KEY", "single quoted"},
		{"EMPTY_LINE_ABOVE", "works"},
	}
	for _, tt := range tests {
		if got := os.Getenv(tt.key); got != tt.want {
			t.Errorf("os.Getenv(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadEnvFile_RealEnvTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env.local")

	if err := os.WriteFile(envFile, []byte("PRECEDENCE_TEST=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PRECEDENCE_TEST", "from-env")

	loadEnvFile(envFile)

	if got := os.Getenv("PRECEDENCE_TEST"); got != "from-env" {
		t.Errorf("env var = %q, want %q (real env should take precedence)", got, "from-env")
	}
}

func TestLoadEnvFile_MissingFile(t *testing.T) {
	loadEnvFile("/nonexistent/path/.env.local")
}

var envKeys = []string{
	"PORT", "DB_PATH", "LOG_LEVEL", "GITHUB_API_URL",
	"GITHUB_TOKEN", "GITHUB_REPO_OWNER", "GITHUB_REPO_NAME", "DEFAULT_LANGUAGE",
	"WORKER_INTERVAL", "HTTP_TIMEOUT", "NAV_SETTLE_DELAY", "RENDER_SETTLE_DELAY",
	"TRIGGER_DEDUPE_WINDOW", "SNAPSHOT_TTL", "MAX_SNAPSHOT_BYTES", "CORS_ORIGIN", "DRY_RUN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		// t.Setenv restores the original value after the test.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "solvesync.db" {
		t.Errorf("DBPath = %q, want solvesync.db", cfg.DBPath)
	}
	if cfg.GitHubAPIURL != "https://api.github.com" {
		t.Errorf("GitHubAPIURL = %q, want default", cfg.GitHubAPIURL)
	}
	if cfg.WorkerInterval != 3*time.Second {
		t.Errorf("WorkerInterval = %v, want 3s", cfg.WorkerInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.NavSettleDelay != time.Second || cfg.RenderSettleDelay != 1500*time.Millisecond {
		t.Errorf("settle delays = %v/%v, want 1s/1.5s", cfg.NavSettleDelay, cfg.RenderSettleDelay)
	}
	if cfg.TriggerDedupeWindow != 10*time.Second {
		t.Errorf("TriggerDedupeWindow = %v, want 10s", cfg.TriggerDedupeWindow)
	}
	if cfg.MaxSnapshotBytes != 5<<20 {
		t.Errorf("MaxSnapshotBytes = %d, want %d", cfg.MaxSnapshotBytes, 5<<20)
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("Level = %v, want info", cfg.Level())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_REPO_OWNER", "octo")
	t.Setenv("GITHUB_REPO_NAME", "solutions")
	t.Setenv("DEFAULT_LANGUAGE", "python")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	seed := cfg.SeedSettings()
	if seed.Token != "ghp_test" || seed.RepoOwner != "octo" || seed.RepoName != "solutions" {
		t.Errorf("SeedSettings = %+v", seed)
	}
	if seed.DefaultLanguage != "python" {
		t.Errorf("DefaultLanguage = %q, want python", seed.DefaultLanguage)
	}
	if !cfg.DryRun {
		t.Error("DryRun = false, want true")
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (Config{LogLevel: tt.in}).Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnvDuration_Invalid(t *testing.T) {
	t.Setenv("TEST_DUR_INVALID", "not-a-duration")

	got := envDuration("TEST_DUR_INVALID", 5*time.Second)
	if got != 5*time.Second {
		t.Errorf("envDuration with invalid value = %v, want fallback 5s", got)
	}
}

func TestEnvInt_Invalid(t *testing.T) {
	t.Setenv("TEST_INT_INVALID", "abc")

	got := envInt("TEST_INT_INVALID", 42)
	if got != 42 {
		t.Errorf("envInt with invalid value = %d, want fallback 42", got)
	}
}

func TestEnvBool_Invalid(t *testing.T) {
	t.Setenv("TEST_BOOL_INVALID", "maybe")

	if envBool("TEST_BOOL_INVALID", true) != true {
		t.Error("envBool with invalid value should return fallback")
	}
}
