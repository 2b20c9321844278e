// Package config loads engine configuration from defaults, an optional
// config file, and ONBOARD_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the onboarding engine.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string

	// BatchSize is the number of contacts per batch. Reduce it for
	// rate-limit-sensitive deployments.
	BatchSize int

	// Concurrency caps how many contacts of a batch are processed at once.
	// The default of 1 processes contacts sequentially.
	Concurrency int

	// ContactPause is the pause between contacts within a batch, applied only
	// when processing sequentially, to stay under upstream rate limits.
	ContactPause time.Duration

	// MaxAttempts bounds the committee-assignment retry budget (attempts
	// total, not retries after the first).
	MaxAttempts int

	// RetryBaseDelay is the first backoff delay; subsequent delays double.
	RetryBaseDelay time.Duration

	// MaxFailureRate is the cumulative failure ratio above which the
	// failure-rate monitor raises an alert. The monitor never halts the run.
	MaxFailureRate float64

	// SLABudget is the wall-clock budget for a whole run. Exceeding it is
	// reported, never enforced.
	SLABudget time.Duration

	// Stub selects the in-process fake collaborators instead of live services.
	Stub bool
}

// Defaults mirror the engine's documented behavior.
const (
	DefaultDBPath         = "onboarding.db"
	DefaultBatchSize      = 10
	DefaultConcurrency    = 1
	DefaultContactPause   = 500 * time.Millisecond
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = 2 * time.Second
	DefaultMaxFailureRate = 0.2
	DefaultSLABudget      = time.Hour
)

// Load reads configuration. configFile may be empty, in which case only
// defaults and environment variables apply. Environment variables use the
// ONBOARD_ prefix with underscores (e.g. ONBOARD_BATCH_SIZE=5).
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("batch_size", DefaultBatchSize)
	v.SetDefault("concurrency", DefaultConcurrency)
	v.SetDefault("contact_pause", DefaultContactPause)
	v.SetDefault("max_attempts", DefaultMaxAttempts)
	v.SetDefault("retry_base_delay", DefaultRetryBaseDelay)
	v.SetDefault("max_failure_rate", DefaultMaxFailureRate)
	v.SetDefault("sla_budget", DefaultSLABudget)
	v.SetDefault("stub", false)

	v.SetEnvPrefix("ONBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		DBPath:         v.GetString("db_path"),
		BatchSize:      v.GetInt("batch_size"),
		Concurrency:    v.GetInt("concurrency"),
		ContactPause:   v.GetDuration("contact_pause"),
		MaxAttempts:    v.GetInt("max_attempts"),
		RetryBaseDelay: v.GetDuration("retry_base_delay"),
		MaxFailureRate: v.GetFloat64("max_failure_rate"),
		SLABudget:      v.GetDuration("sla_budget"),
		Stub:           v.GetBool("stub"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1 (got %d)", c.BatchSize)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1 (got %d)", c.Concurrency)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1 (got %d)", c.MaxAttempts)
	}
	if c.MaxFailureRate < 0 || c.MaxFailureRate > 1 {
		return fmt.Errorf("max_failure_rate must be within [0, 1] (got %g)", c.MaxFailureRate)
	}
	if c.ContactPause < 0 {
		return fmt.Errorf("contact_pause cannot be negative")
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("retry_base_delay cannot be negative")
	}
	return nil
}
