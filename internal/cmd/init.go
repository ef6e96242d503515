package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orkhq/ork/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Enable coordination for this project",
	Long: `Create the coordination directory, which is the opt-in signal for
multi-instance coordination. Until it exists every lock request is
permitted without any bookkeeping.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}

	dir := config.Get().CoordinationDir(root)
	if _, err := os.Stat(dir); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "coordination already enabled: %s\n", dir)
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create coordination directory: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "coordination enabled: %s\n", dir)
	return nil
}
