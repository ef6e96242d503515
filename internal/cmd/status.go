package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/orkhq/ork/internal/config"
	"github.com/orkhq/ork/internal/coordination"
	"github.com/orkhq/ork/internal/memqueue"
	"github.com/orkhq/ork/internal/session"
)

var (
	statusHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusDeadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show active locks and pending queues",
	Long: `Display the current coordination state of the project: unexpired
locks with their holders and expiry, and the depth of each pending memory
queue. Holders whose local process is gone are marked dead; their locks
still expire on their own.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg := config.Get()
	out := cmd.OutOrStdout()

	manager := newManager(cfg, root, nil)
	if !manager.Enabled() {
		fmt.Fprintln(out, "coordination disabled (no coordination directory)")
	} else {
		renderLocks(out, manager.ActiveLocks())
	}

	store := newQueueStore(cfg, root, nil)
	renderQueues(out, store)
	return nil
}

func renderLocks(out io.Writer, locks []coordination.Lock) {
	fmt.Fprintln(out, statusHeaderStyle.Render("Active locks"))
	if len(locks) == 0 {
		fmt.Fprintln(out, statusDimStyle.Render("  none"))
		return
	}

	now := time.Now()
	for _, l := range locks {
		line := fmt.Sprintf("  %-9s %-40s %s  expires in %s",
			l.Kind, l.Path, l.Holder, l.ExpiresAt.Sub(now).Round(time.Second))
		if annotation := holderAnnotation(l.Holder); annotation != "" {
			line += " " + statusDeadStyle.Render(annotation)
		}
		if l.Reason != "" {
			line += " " + statusDimStyle.Render("("+l.Reason+")")
		}
		fmt.Fprintln(out, line)
	}
}

// holderAnnotation marks holders whose identity names a local process that
// no longer exists. Cross-host holders cannot be probed and get no mark.
func holderAnnotation(holder string) string {
	pid, ok := session.LocalPID(holder)
	if !ok {
		return ""
	}
	if !session.IsProcessAlive(pid) {
		return "[dead]"
	}
	return ""
}

func renderQueues(out io.Writer, store *memqueue.Store) {
	fmt.Fprintln(out, statusHeaderStyle.Render("Pending queues"))

	any := false
	for _, kind := range memqueue.Kinds() {
		if !store.Exists(kind) {
			continue
		}
		any = true
		ops, err := store.ReadAll(kind)
		if err != nil {
			fmt.Fprintf(out, "  %-7s unreadable: %v\n", kind, err)
			continue
		}
		fmt.Fprintf(out, "  %-7s %d pending operation%s\n", kind, len(ops), plural(len(ops)))
	}
	if !any {
		fmt.Fprintln(out, statusDimStyle.Render("  none"))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
