package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RishiKendai/textaegis/internal/config"
	"github.com/RishiKendai/textaegis/internal/plagiarism"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textaegis.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching != plagiarism.DefaultOptions() {
		t.Fatalf("unexpected matching defaults: %+v", cfg.Matching)
	}
	if cfg.RedisStreamKey != "textaegis:submissions" {
		t.Fatalf("unexpected stream key: %q", cfg.RedisStreamKey)
	}
	if cfg.StreamRetentionDuration != 24*time.Hour {
		t.Fatalf("unexpected retention: %v", cfg.StreamRetentionDuration)
	}
	if cfg.ComputationTimeout != 30*time.Minute {
		t.Fatalf("unexpected computation timeout: %v", cfg.ComputationTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("MATCH_WINDOW_SIZE", "9")
	t.Setenv("MATCH_THRESHOLD", " 5 ")
	t.Setenv("MATCH_EXCLUDE_COUNT", "12")
	t.Setenv("MATCH_HIGHLIGHT", "true")
	t.Setenv("MATCH_STRATEGY", "partition")
	t.Setenv("MATCH_CACHE_SIZE", "50")
	t.Setenv("MATCH_CACHE_POLICY", "clear")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("COMPUTATION_TIMEOUT_MINUTES", "3")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := plagiarism.Options{
		WindowSize:   9,
		Threshold:    5,
		ExcludeCount: 12,
		Highlight:    true,
		Strategy:     plagiarism.StrategyPartition,
		CacheSize:    50,
		CachePolicy:  plagiarism.CachePolicyClear,
	}
	if cfg.Matching != want {
		t.Fatalf("matching = %+v, want %+v", cfg.Matching, want)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("rate limit = %v", cfg.RateLimitRPS)
	}
	if cfg.ComputationTimeout != 3*time.Minute {
		t.Fatalf("timeout = %v", cfg.ComputationTimeout)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("MATCH_WINDOW_SIZE", "seven")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching.WindowSize != plagiarism.DefaultOptions().WindowSize {
		t.Fatalf("expected default window size, got %d", cfg.Matching.WindowSize)
	}
}

func TestLoadFileOverlaysEnvironment(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "4")
	t.Setenv("MATCH_EXCLUDE_COUNT", "2")

	path := writeConfig(t, `
log_level = "debug"

[matching]
window_size = 10
threshold = 8
cache_policy = "clear"
`)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
	if cfg.Matching.WindowSize != 10 || cfg.Matching.Threshold != 8 {
		t.Fatalf("file values not applied: %+v", cfg.Matching)
	}
	if cfg.Matching.ExcludeCount != 2 {
		t.Fatalf("keys missing from the file keep the environment value, got %d", cfg.Matching.ExcludeCount)
	}
	if cfg.Matching.CachePolicy != plagiarism.CachePolicyClear {
		t.Fatalf("cache policy = %q", cfg.Matching.CachePolicy)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[matching]
windowsize = 10
`)

	cfg, _ := config.Load()
	err := cfg.LoadFile(path)
	if err == nil {
		t.Fatal("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "windowsize") {
		t.Fatalf("error should name the unknown key: %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	cfg, _ := config.Load()
	if err := cfg.LoadFile(""); err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if err := cfg.LoadFile(writeConfig(t, "[matching\n")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsBadMatchingOptions(t *testing.T) {
	t.Setenv("MATCH_WINDOW_SIZE", "0")
	cfg, _ := config.Load()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid window size to fail validation")
	}
}

func TestValidateAcceptsUnreachableThreshold(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "20")
	cfg, _ := config.Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("threshold above the window is only a warning, got %v", err)
	}
	if len(cfg.Matching.Warnings()) == 0 {
		t.Fatal("expected a warning")
	}
}

func TestValidateServer(t *testing.T) {
	cfg, _ := config.Load()
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected missing Mongo settings to fail")
	}

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB_NAME", "textaegis")
	cfg, _ = config.Load()
	err := cfg.ValidateServer()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}

	t.Setenv("JWT_SECRET", "secret")
	cfg, _ = config.Load()
	if err := cfg.ValidateServer(); err != nil {
		t.Fatalf("expected valid server config, got %v", err)
	}
}
