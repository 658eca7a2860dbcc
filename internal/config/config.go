package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the intent router worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"intent-router-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"intent.requests"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"intent-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"intent.decisions"`
	EventStream   string        `env:"EVENT_STREAM" envDefault:"intent.events"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`

	// Domain configuration. The order doubles as the deterministic
	// tie-break priority when calibrated scores are within TieEpsilon.
	Domains []string `env:"DOMAINS" envDefault:"real_estate,marketplace,local_info,general"`

	// Fusion weights for the three signal providers. Absent signals drop
	// their weight for that request and the rest are renormalized.
	WeightRule       float64 `env:"WEIGHT_RULE" envDefault:"0.25"`
	WeightEmbedding  float64 `env:"WEIGHT_EMBEDDING" envDefault:"0.35"`
	WeightClassifier float64 `env:"WEIGHT_CLASSIFIER" envDefault:"0.40"`

	// Decision policy
	Threshold  float64 `env:"THRESHOLD" envDefault:"0.6"`
	TieEpsilon float64 `env:"TIE_EPSILON" envDefault:"0.02"`

	// Sticky context
	StickyTTL     time.Duration `env:"STICKY_TTL" envDefault:"180s"`
	StickyBackend string        `env:"STICKY_BACKEND" envDefault:"memory"`

	// Embedding provider
	EmbedURL          string        `env:"EMBED_URL" envDefault:"http://localhost:11434"`
	EmbedModel        string        `env:"EMBED_MODEL" envDefault:"nomic-embed-text"`
	EmbedModelVersion string        `env:"EMBED_MODEL_VERSION" envDefault:"v1"`
	EmbedTimeout      time.Duration `env:"EMBED_TIMEOUT" envDefault:"250ms"`
	EmbedCost         float64       `env:"EMBED_COST" envDefault:"0.0001"`

	// Resilience wrapper
	MaxRetries       int           `env:"MAX_RETRIES" envDefault:"1"`
	BreakerThreshold int           `env:"BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"BREAKER_COOLDOWN" envDefault:"30s"`

	// Snapshot store (centroids, calibration, classifier artifact)
	SnapshotKeyPrefix string        `env:"SNAPSHOT_KEY_PREFIX" envDefault:"intent:snapshot"`
	RefreshInterval   time.Duration `env:"REFRESH_INTERVAL" envDefault:"30s"`

	// Safety filter CEL rules, separated by ";;"
	SafetyRules []string `env:"SAFETY_RULES" envSeparator:";;" envDefault:"text.contains(\"weapon\");;text.contains(\"explosives\")"`

	// Clarification prompt template (Handlebars)
	ClarifyTemplate string `env:"CLARIFY_TEMPLATE" envDefault:"I can help with {{join domains \", \"}}. Could you tell me a bit more about what you are looking for?"`

	// Input limits
	MaxUtteranceBytes int `env:"MAX_UTTERANCE_BYTES" envDefault:"8192"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8082"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.EventStream == "" {
		return fmt.Errorf("EVENT_STREAM is required")
	}

	if len(c.Domains) == 0 {
		return fmt.Errorf("DOMAINS is required")
	}
	seen := make(map[string]bool, len(c.Domains))
	for _, d := range c.Domains {
		if d == "" {
			return fmt.Errorf("DOMAINS must not contain empty entries")
		}
		if seen[d] {
			return fmt.Errorf("DOMAINS contains duplicate %q", d)
		}
		seen[d] = true
	}

	if c.WeightRule < 0 || c.WeightEmbedding < 0 || c.WeightClassifier < 0 {
		return fmt.Errorf("fusion weights must be non-negative")
	}
	if c.WeightRule+c.WeightEmbedding+c.WeightClassifier <= 0 {
		return fmt.Errorf("at least one fusion weight must be positive")
	}

	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("THRESHOLD must be in (0, 1]")
	}

	if c.TieEpsilon < 0 {
		return fmt.Errorf("TIE_EPSILON must be non-negative")
	}

	if c.StickyTTL <= 0 {
		return fmt.Errorf("STICKY_TTL must be positive")
	}

	if c.StickyBackend != "memory" && c.StickyBackend != "redis" {
		return fmt.Errorf("STICKY_BACKEND must be one of: memory, redis")
	}

	if c.EmbedURL == "" {
		return fmt.Errorf("EMBED_URL is required")
	}

	if c.EmbedModel == "" {
		return fmt.Errorf("EMBED_MODEL is required")
	}

	if c.EmbedTimeout <= 0 {
		return fmt.Errorf("EMBED_TIMEOUT must be positive")
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be non-negative")
	}

	if c.BreakerThreshold <= 0 {
		return fmt.Errorf("BREAKER_THRESHOLD must be positive")
	}

	if c.BreakerCooldown <= 0 {
		return fmt.Errorf("BREAKER_COOLDOWN must be positive")
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.MaxUtteranceBytes <= 0 {
		return fmt.Errorf("MAX_UTTERANCE_BYTES must be positive")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"Domains=%v, Weights=[%g %g %g], Threshold=%g, StickyTTL=%s, StickyBackend=%s, "+
			"EmbedModel=%s/%s, BreakerThreshold=%d, HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.Domains,
		c.WeightRule, c.WeightEmbedding, c.WeightClassifier,
		c.Threshold,
		c.StickyTTL,
		c.StickyBackend,
		c.EmbedModel, c.EmbedModelVersion,
		c.BreakerThreshold,
		c.HealthPort,
		c.LogLevel,
	)
}
