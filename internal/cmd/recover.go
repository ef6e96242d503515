package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orkhq/ork/internal/config"
	"github.com/orkhq/ork/internal/recovery"
)

var recoverKeep bool

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Drain queued memory operations from earlier sessions",
	Long: `Run the recovery pass that normally happens once at session start.

Fresh queues are aggregated into a replay message and cleared; queues
untouched for longer than the staleness threshold are archived without
replay. When nothing is pending the command prints nothing.`,
	Args: cobra.NoArgs,
	RunE: runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)
	recoverCmd.Flags().BoolVar(&recoverKeep, "keep", false, "leave queue streams in place after reading (debug)")
}

func runRecover(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg := config.Get()
	logger := newLogger(cfg, cfg.CoordinationDir(root))
	defer logger.Close()

	orch := recovery.New(
		newQueueStore(cfg, root, logger),
		cfg.ArchiveDir(root),
		recovery.WithStaleness(cfg.Recovery.StalenessThreshold()),
		recovery.WithKeep(recoverKeep || cfg.Recovery.Keep),
		recovery.WithLogger(logger),
	)

	result, err := orch.Run()
	if err != nil {
		return err
	}

	if result.HasReplay() {
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	}
	for _, qr := range result.Queues {
		if qr.Decision == recovery.DecisionArchived && qr.ArchivePath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "archived stale %s queue to %s\n", qr.Kind, qr.ArchivePath)
		}
	}
	return nil
}
