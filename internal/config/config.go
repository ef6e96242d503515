package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete ork configuration
type Config struct {
	Coordination CoordinationConfig `mapstructure:"coordination"`
	Memory       MemoryConfig       `mapstructure:"memory"`
	Recovery     RecoveryConfig     `mapstructure:"recovery"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// CoordinationConfig controls the file-lock manager
type CoordinationConfig struct {
	// Dir is the coordination directory relative to the project root.
	// Its existence is the opt-in signal for multi-instance coordination:
	// when it is absent the lock manager is inert and always permits.
	Dir string `mapstructure:"dir"`
	// DefaultTTLSeconds is the lock time-to-live applied when a caller does
	// not specify one. Expiry is the only release mechanism.
	DefaultTTLSeconds int `mapstructure:"default_ttl_seconds"`
	// Strict controls behavior when persisting the lock store fails: when
	// true the operation that required the lock is treated as denied, when
	// false (default) the write proceeds and the failure is only logged.
	Strict bool `mapstructure:"strict"`
	// UseFlock wraps every read-modify-write cycle of the lock store in an
	// advisory flock(2) on a sentinel file, closing the acquire/acquire race
	// window between near-simultaneous instances.
	UseFlock bool `mapstructure:"use_flock"`
}

// MemoryConfig controls the durable queue store
type MemoryConfig struct {
	// Dir is the memory directory (queue streams) relative to the project root
	Dir string `mapstructure:"dir"`
	// ArchiveDirName is the subdirectory of Dir that holds archived queues
	ArchiveDirName string `mapstructure:"archive_dir_name"`
}

// RecoveryConfig controls the recovery orchestrator
type RecoveryConfig struct {
	// StalenessHours is the queue age beyond which a queue is archived
	// instead of replayed
	StalenessHours int `mapstructure:"staleness_hours"`
	// Keep skips clearing queues after reading them. Debug aid only: it
	// breaks the read-exactly-once guarantee and must stay off in normal use.
	Keep bool `mapstructure:"keep"`
}

// LoggingConfig controls coordination logging
type LoggingConfig struct {
	// Enabled controls whether logs are written at all
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: debug, info, warn, error
	Level string `mapstructure:"level"`
}

// DefaultTTL returns the default lock TTL as a duration
func (c *CoordinationConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// StalenessThreshold returns the queue staleness threshold as a duration
func (c *RecoveryConfig) StalenessThreshold() time.Duration {
	return time.Duration(c.StalenessHours) * time.Hour
}

// CoordinationDir resolves the coordination directory against a project root
func (c *Config) CoordinationDir(projectRoot string) string {
	return resolveDir(projectRoot, c.Coordination.Dir)
}

// MemoryDir resolves the memory directory against a project root
func (c *Config) MemoryDir(projectRoot string) string {
	return resolveDir(projectRoot, c.Memory.Dir)
}

// ArchiveDir resolves the queue archive directory against a project root
func (c *Config) ArchiveDir(projectRoot string) string {
	return filepath.Join(c.MemoryDir(projectRoot), c.Memory.ArchiveDirName)
}

// resolveDir joins a relative path to the project root, leaving absolute paths as-is
func resolveDir(projectRoot, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectRoot, dir)
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Coordination: CoordinationConfig{
			Dir:               filepath.Join(".ork", "coordination"),
			DefaultTTLSeconds: 300, // 5 minutes covers one edit-review cycle
			Strict:            false,
			UseFlock:          true,
		},
		Memory: MemoryConfig{
			Dir:            filepath.Join(".ork", "memory"),
			ArchiveDirName: "archive",
		},
		Recovery: RecoveryConfig{
			StalenessHours: 24,
			Keep:           false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// SetDefaults registers all default values with viper
func SetDefaults() {
	defaults := Default()

	// Coordination defaults
	viper.SetDefault("coordination.dir", defaults.Coordination.Dir)
	viper.SetDefault("coordination.default_ttl_seconds", defaults.Coordination.DefaultTTLSeconds)
	viper.SetDefault("coordination.strict", defaults.Coordination.Strict)
	viper.SetDefault("coordination.use_flock", defaults.Coordination.UseFlock)

	// Memory defaults
	viper.SetDefault("memory.dir", defaults.Memory.Dir)
	viper.SetDefault("memory.archive_dir_name", defaults.Memory.ArchiveDirName)

	// Recovery defaults
	viper.SetDefault("recovery.staleness_hours", defaults.Recovery.StalenessHours)
	viper.SetDefault("recovery.keep", defaults.Recovery.Keep)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ork")
	}
	// Fall back to ~/.config/ork
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ork"
	}
	return filepath.Join(home, ".config", "ork")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
