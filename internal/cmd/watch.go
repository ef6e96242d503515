package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/orkhq/ork/internal/config"
	"github.com/orkhq/ork/internal/errors"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch coordination state for changes",
	Long: `Watch the coordination and memory directories and print a line for
every lock store update and queue append. Useful for observing what other
sessions are doing. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg := config.Get()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range []string{cfg.CoordinationDir(root), cfg.MemoryDir(root)} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched++
		fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", dir)
	}
	if watched == 0 {
		return errors.Wrap(errors.ErrCoordinationDisabled,
			"nothing to watch: neither the coordination nor the memory directory exists")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Debounce events - editors and atomic renames produce bursts for a
	// single logical update.
	debounce := time.NewTimer(0)
	<-debounce.C
	pending := make(map[string]fsnotify.Op)

	for {
		select {
		case <-sigCh:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending[event.Name] |= event.Op
			debounce.Reset(50 * time.Millisecond)

		case <-debounce.C:
			for name, op := range pending {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s %s\n",
					time.Now().Format("15:04:05"), opLabel(op), filepath.Base(name))
			}
			pending = make(map[string]fsnotify.Op)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}
}

func opLabel(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "created"
	case op&fsnotify.Write != 0:
		return "updated"
	case op&fsnotify.Remove != 0:
		return "removed"
	case op&fsnotify.Rename != 0:
		return "renamed"
	default:
		return "changed"
	}
}
