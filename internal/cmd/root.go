// Package cmd implements the ork command line interface.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orkhq/ork/internal/config"
	"github.com/orkhq/ork/internal/coordination"
	"github.com/orkhq/ork/internal/logging"
	"github.com/orkhq/ork/internal/memqueue"
)

var rootCmd = &cobra.Command{
	Use:   "ork",
	Short: "Multi-instance coordination for agent sessions",
	Long: `Ork coordinates multiple agent CLI sessions working in the same
project directory: advisory file locks with TTL expiry, durable queues
for memory operations that could not reach their backend, and start-of-
session recovery of whatever earlier sessions left behind.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/ork/config.yaml)")
	rootCmd.PersistentFlags().String("project", "", "project root (default is the working directory)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("project", rootCmd.PersistentFlags().Lookup("project"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/ork")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ORK")
	// Replace dots with underscores for nested keys in env vars
	// e.g., ORK_COORDINATION_DEFAULT_TTL_SECONDS for coordination.default_ttl_seconds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// projectRoot resolves the project root from the --project flag or the
// working directory.
func projectRoot() (string, error) {
	if root := viper.GetString("project"); root != "" {
		return root, nil
	}
	return os.Getwd()
}

// newLogger opens the coordination log per config. Falls back to a no-op
// logger when logging is disabled, when the coordination directory does not
// exist (opening the log must not create it, since its existence is the
// coordination opt-in signal), or when the log file cannot be opened. CLI
// commands never fail because of logging.
func newLogger(cfg *config.Config, coordDir string) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	if _, err := os.Stat(coordDir); err != nil {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(coordDir, cfg.Logging.Level)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

// newManager builds the lock manager for a project per config.
func newManager(cfg *config.Config, root string, logger *logging.Logger) *coordination.Manager {
	return coordination.NewManager(root, cfg.CoordinationDir(root),
		coordination.WithDefaultTTL(cfg.Coordination.DefaultTTL()),
		coordination.WithFlock(cfg.Coordination.UseFlock),
		coordination.WithLogger(logger),
	)
}

// newQueueStore builds the durable queue store for a project per config.
func newQueueStore(cfg *config.Config, root string, logger *logging.Logger) *memqueue.Store {
	return memqueue.NewStore(cfg.MemoryDir(root), logger)
}
