package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orkhq/ork/internal/config"
	"github.com/orkhq/ork/internal/errors"
	"github.com/orkhq/ork/internal/memqueue"
)

var enqueuePayload string

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <graph|memory>",
	Short: "Queue a memory operation for later replay",
	Long: `Append a memory operation to the durable queue for its backend.

Used when the knowledge-graph or memory service is unreachable: instead of
losing the write, it is queued locally and surfaced by "ork recover" at the
start of the next session.

The operation is read as JSON from --payload or stdin, for example:

  ork enqueue graph --payload '{"type":"create_entities","entities":[{"name":"auth-service","entityType":"service"}]}'
  echo '{"type":"memory_record","memory":{"text":"User prefers dark mode"}}' | ork enqueue memory`,
	Args: cobra.ExactArgs(1),
	RunE: runEnqueue,
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	enqueueCmd.Flags().StringVarP(&enqueuePayload, "payload", "p", "", "operation JSON (default: read from stdin)")
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	kind, err := memqueue.ParseKind(args[0])
	if err != nil {
		return err
	}

	raw := []byte(enqueuePayload)
	if enqueuePayload == "" {
		raw, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read payload from stdin: %w", err)
		}
	}
	if len(raw) == 0 {
		return errors.NewValidationError("operation payload is empty").WithField("payload")
	}

	var op memqueue.Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return errors.NewValidationError("operation payload is not valid JSON").
			WithField("payload").WithCause(err)
	}

	root, err := projectRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg := config.Get()
	logger := newLogger(cfg, cfg.CoordinationDir(root))
	defer logger.Close()

	store := newQueueStore(cfg, root, logger)
	if err := store.Append(kind, op); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "queued %s operation on the %s queue\n", op.Type, kind)
	return nil
}
