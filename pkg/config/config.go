// Package config holds the tunable surface shared by every component,
// loadable from YAML the way cmd/warren/apply.go parses a manifest into
// a generic resource envelope.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reasonchain/core/pkg/checkpoint"
	"github.com/reasonchain/core/pkg/conflict"
	"github.com/reasonchain/core/pkg/events"
	"github.com/reasonchain/core/pkg/lock"
	"github.com/reasonchain/core/pkg/recovery"
	"github.com/reasonchain/core/pkg/registry"
	"github.com/reasonchain/core/pkg/restoration"
	"github.com/reasonchain/core/pkg/types"
)

// Config is the full configuration surface from spec.md section 6.
type Config struct {
	MaxClientsPerSession int           `yaml:"maxClientsPerSession"`
	LockTimeoutMs        int64         `yaml:"lockTimeoutMs"`
	ClientTimeoutMs      int64         `yaml:"clientTimeoutMs"`
	EnableReadLocks      bool          `yaml:"enableReadLocks"`
	EnableWriteLocks     bool          `yaml:"enableWriteLocks"`
	EnableExclusiveLocks bool          `yaml:"enableExclusiveLocks"`
	LockGranularity      string        `yaml:"lockGranularity"`
	ConflictResolution   string        `yaml:"conflictResolution"`
	ActiveTimeout        time.Duration `yaml:"activeTimeout"`
	PausedTimeout        time.Duration `yaml:"pausedTimeout"`
	CompletedTimeout     time.Duration `yaml:"completedTimeout"`
	EnableAutoCleanup    bool          `yaml:"enableAutoCleanup"`

	MaxConcurrentRestorations int `yaml:"maxConcurrentRestorations"`
	HealthScoreThreshold      int `yaml:"healthScoreThreshold"`

	MaxRetryAttempts  int     `yaml:"maxRetryAttempts"`
	RetryDelayMs      int64   `yaml:"retryDelayMs"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`

	HandlerTimeoutMs int64 `yaml:"handlerTimeoutMs"`
	MaxHistorySize   int   `yaml:"maxHistorySize"`

	CheckpointRetention int `yaml:"checkpointRetention"`

	DataDir string `yaml:"dataDir"`
}

// DefaultConfig returns the defaults listed in spec.md's configuration
// surface table.
func DefaultConfig() Config {
	return Config{
		MaxClientsPerSession:       5,
		LockTimeoutMs:              30_000,
		ClientTimeoutMs:            300_000,
		EnableReadLocks:            true,
		EnableWriteLocks:           true,
		EnableExclusiveLocks:       true,
		LockGranularity:            "session",
		ConflictResolution:         "first_wins",
		ActiveTimeout:              24 * time.Hour,
		PausedTimeout:              7 * 24 * time.Hour,
		CompletedTimeout:           30 * 24 * time.Hour,
		EnableAutoCleanup:          true,
		MaxConcurrentRestorations:  3,
		HealthScoreThreshold:       40,
		MaxRetryAttempts:           3,
		RetryDelayMs:               1000,
		BackoffMultiplier:          2,
		HandlerTimeoutMs:           5000,
		MaxHistorySize:             1000,
		CheckpointRetention:        10,
		DataDir:                    "./data",
	}
}

// Load reads a YAML config file, starting from DefaultConfig and
// overlaying whatever fields the file sets.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TimeoutConfig projects the session timeout fields into the shape
// pkg/types uses to derive SessionMetadata.ExpiresAt.
func (c Config) TimeoutConfig() types.TimeoutConfig {
	return types.TimeoutConfig{Active: c.ActiveTimeout, Paused: c.PausedTimeout, Completed: c.CompletedTimeout}
}

// LockConfig projects the lock-related fields into pkg/lock.Config.
func (c Config) LockConfig() lock.Config {
	return lock.Config{
		LockTimeout:     time.Duration(c.LockTimeoutMs) * time.Millisecond,
		ClientTimeout:   time.Duration(c.ClientTimeoutMs) * time.Millisecond,
		CleanupInterval: 60 * time.Second,
	}
}

// RegistryConfig projects the registry-related fields into
// pkg/registry.Config.
func (c Config) RegistryConfig() registry.Config {
	return registry.Config{
		MaxClientsPerSession: c.MaxClientsPerSession,
		ClientTimeout:        time.Duration(c.ClientTimeoutMs) * time.Millisecond,
	}
}

// EventsConfig projects the event-related fields into
// pkg/events.Config.
func (c Config) EventsConfig() events.Config {
	return events.Config{
		HandlerTimeout: time.Duration(c.HandlerTimeoutMs) * time.Millisecond,
		MaxRetries:     0,
		RetryDelay:     time.Second,
		MaxHistorySize: c.MaxHistorySize,
	}
}

// RecoveryConfig projects the retry-related fields into
// pkg/recovery.Config.
func (c Config) RecoveryConfig() recovery.Config {
	return recovery.Config{
		MaxRetryAttempts:  c.MaxRetryAttempts,
		RetryDelay:        time.Duration(c.RetryDelayMs) * time.Millisecond,
		BackoffMultiplier: c.BackoffMultiplier,
		Timeout:           30 * time.Second,
	}
}

// RestorationConfig projects the startup-restoration fields into
// pkg/restoration.Config.
func (c Config) RestorationConfig() restoration.Config {
	return restoration.Config{
		MaxConcurrentRestorations: c.MaxConcurrentRestorations,
		HealthScoreThreshold:      c.HealthScoreThreshold,
	}
}

// ConflictConfig projects the conflict-resolution field into
// pkg/conflict.Config.
func (c Config) ConflictConfig() conflict.Config {
	cfg := conflict.DefaultConfig()
	cfg.AutoResolutionEnabled = c.ConflictResolution != "manual"
	return cfg
}

// CheckpointRetentionOrDefault returns CheckpointRetention, falling
// back to checkpoint.DefaultRetention when unset.
func (c Config) CheckpointRetentionOrDefault() int {
	if c.CheckpointRetention <= 0 {
		return checkpoint.DefaultRetention
	}
	return c.CheckpointRetention
}
