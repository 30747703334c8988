// Package config loads application settings for the teamup tools.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// TEAMUP_* environment variables. The merged result is validated before use.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/teamup/ai"
	"github.com/poiesic/teamup/ai/breaker"
	"github.com/poiesic/teamup/score"
)

// ErrInvalidConfig is returned when the merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	AI       AIConfig       `koanf:"ai"`
	Engine   EngineConfig   `koanf:"engine"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig locates the badger store.
type DatabaseConfig struct {
	Path     string `koanf:"path" validate:"required_unless=InMemory true"`
	InMemory bool   `koanf:"in_memory"`
}

// AIConfig describes the embedding provider and how calls to it are bounded.
type AIConfig struct {
	Host              string        `koanf:"host" validate:"required,url"`
	EmbeddingModel    string        `koanf:"embedding_model" validate:"required"`
	Token             string        `koanf:"token"`
	Dimension         int           `koanf:"dimension" validate:"gte=1"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`
	MaxAttempts       int           `koanf:"max_attempts" validate:"gte=1"`
	BaseDelay         time.Duration `koanf:"base_delay" validate:"gte=0"`
	Timeout           time.Duration `koanf:"timeout" validate:"gte=0"`
	BreakerFailures   uint32        `koanf:"breaker_failures" validate:"gte=1"`
	BreakerCooldown   time.Duration `koanf:"breaker_cooldown" validate:"gt=0"`
}

// EngineConfig holds retrieval and paging settings.
type EngineConfig struct {
	SearchPageSize    int `koanf:"search_page_size" validate:"gte=1"`
	RecommendPageSize int `koanf:"recommend_page_size" validate:"gte=1"`
	RecommendPool     int `koanf:"recommend_pool" validate:"gte=1"`
	OverFetchMargin   int `koanf:"over_fetch_margin" validate:"gte=0"`
}

// ScoringConfig holds the recommendation weights and reason thresholds.
type ScoringConfig struct {
	Weights    score.Weights    `koanf:"weights"`
	Thresholds score.Thresholds `koanf:"thresholds"`
}

// PipelineConfig sizes background work.
type PipelineConfig struct {
	PoolSize       int `koanf:"pool_size" validate:"gte=0"`
	BatchSize      int `koanf:"batch_size" validate:"gte=1"`
	ReportInterval int `koanf:"report_interval" validate:"gte=1"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	policy := ai.DefaultRetryPolicy()
	breakerDefaults := breaker.DefaultSettings()
	return &Config{
		Database: DatabaseConfig{
			Path: "teamup-db",
		},
		AI: AIConfig{
			Host:              aiDefaults.EmbeddingHost,
			EmbeddingModel:    aiDefaults.EmbeddingModel,
			Token:             aiDefaults.Token,
			Dimension:         aiDefaults.Dimension,
			RequestsPerSecond: aiDefaults.RequestsPerSecond,
			Burst:             aiDefaults.Burst,
			MaxAttempts:       policy.MaxAttempts,
			BaseDelay:         policy.BaseDelay,
			Timeout:           policy.Timeout,
			BreakerFailures:   breakerDefaults.ConsecutiveFailures,
			BreakerCooldown:   breakerDefaults.Timeout,
		},
		Engine: EngineConfig{
			SearchPageSize:    15,
			RecommendPageSize: 8,
			RecommendPool:     50,
			OverFetchMargin:   10,
		},
		Scoring: ScoringConfig{
			Weights:    score.DefaultWeights(),
			Thresholds: score.DefaultThresholds(),
		},
		Pipeline: PipelineConfig{
			PoolSize:       0, // 0 = NumCPU / 2
			BatchSize:      64,
			ReportInterval: 64,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the scoring weights.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.AI.RequestsPerSecond > 0 && c.AI.Burst < 1 {
		return fmt.Errorf("%w: ai.burst must be at least 1 when rate limiting", ErrInvalidConfig)
	}
	return nil
}

// ProviderConfig converts the AI section into an ai.Config.
func (c *Config) ProviderConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.AI.Host),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithToken(c.AI.Token),
		ai.WithDimension(c.AI.Dimension),
		ai.WithRateLimit(c.AI.RequestsPerSecond, c.AI.Burst),
	)
}

// RetryPolicy returns the provider call policy.
func (c *Config) RetryPolicy() ai.RetryPolicy {
	return ai.RetryPolicy{
		MaxAttempts: c.AI.MaxAttempts,
		BaseDelay:   c.AI.BaseDelay,
		Timeout:     c.AI.Timeout,
	}
}

// BreakerSettings returns the circuit breaker settings for the provider.
func (c *Config) BreakerSettings() breaker.Settings {
	s := breaker.DefaultSettings()
	s.ConsecutiveFailures = c.AI.BreakerFailures
	s.Timeout = c.AI.BreakerCooldown
	return s
}
