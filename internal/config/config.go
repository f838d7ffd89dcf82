package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/RishiKendai/textaegis/internal/configs/env"
	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the application
type Config struct {
	// Matching
	Matching plagiarism.Options

	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	RedisReportStreamKey    string
	StreamRetentionDuration time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute int
	WorkerCount          int

	// Computation
	ComputationTimeout time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Matching
	defaults := plagiarism.DefaultOptions()
	cfg.Matching = plagiarism.Options{
		WindowSize:   env.GetEnvInt("MATCH_WINDOW_SIZE", defaults.WindowSize),
		Threshold:    env.GetEnvInt("MATCH_THRESHOLD", defaults.Threshold),
		ExcludeCount: env.GetEnvInt("MATCH_EXCLUDE_COUNT", defaults.ExcludeCount),
		Highlight:    env.GetEnvBool("MATCH_HIGHLIGHT", defaults.Highlight),
		Strategy:     plagiarism.Strategy(env.GetEnv("MATCH_STRATEGY", string(defaults.Strategy))),
		CacheSize:    env.GetEnvInt("MATCH_CACHE_SIZE", defaults.CacheSize),
		CachePolicy:  plagiarism.CachePolicy(env.GetEnv("MATCH_CACHE_POLICY", string(defaults.CachePolicy))),
	}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "textaegis:submissions")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "textaegis:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "textaegis:dlq")
	cfg.RedisReportStreamKey = env.GetEnv("REDIS_REPORT_STREAM_KEY", "textaegis:reports")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "textaegis")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)
	cfg.WorkerCount = env.GetEnvInt("WORKER_COUNT", 0)

	// Computation
	timeoutMinutes := env.GetEnvInt("COMPUTATION_TIMEOUT_MINUTES", 30)
	cfg.ComputationTimeout = time.Duration(timeoutMinutes) * time.Minute

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

// fileConfig mirrors the TOML file; nil fields leave the loaded value alone
type fileConfig struct {
	LogLevel *string       `toml:"log_level"`
	Matching *matchingFile `toml:"matching"`
}

type matchingFile struct {
	WindowSize   *int    `toml:"window_size"`
	Threshold    *int    `toml:"threshold"`
	ExcludeCount *int    `toml:"exclude_count"`
	Highlight    *bool   `toml:"highlight"`
	Strategy     *string `toml:"strategy"`
	CacheSize    *int    `toml:"cache_size"`
	CachePolicy  *string `toml:"cache_policy"`
}

// LoadFile overlays the settings of a TOML file on top of c
func (c *Config) LoadFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&fc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: %s", path, strict.String())
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if m := fc.Matching; m != nil {
		if m.WindowSize != nil {
			c.Matching.WindowSize = *m.WindowSize
		}
		if m.Threshold != nil {
			c.Matching.Threshold = *m.Threshold
		}
		if m.ExcludeCount != nil {
			c.Matching.ExcludeCount = *m.ExcludeCount
		}
		if m.Highlight != nil {
			c.Matching.Highlight = *m.Highlight
		}
		if m.Strategy != nil {
			c.Matching.Strategy = plagiarism.Strategy(*m.Strategy)
		}
		if m.CacheSize != nil {
			c.Matching.CacheSize = *m.CacheSize
		}
		if m.CachePolicy != nil {
			c.Matching.CachePolicy = plagiarism.CachePolicy(*m.CachePolicy)
		}
	}
	return nil
}

// Validate checks the matching options shared by every entry point
func (c *Config) Validate() error {
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("invalid matching options: %w", err)
	}
	return nil
}

// ValidateServer additionally checks what the HTTP service needs
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be greater than 0")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.ComputationTimeout <= 0 {
		return fmt.Errorf("COMPUTATION_TIMEOUT_MINUTES must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	return nil
}
