package main

import (
	"fmt"
	"os"

	"github.com/orkhq/ork/internal/cmd"
	"github.com/orkhq/ork/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// A denied lock is expected flow for callers scripting around
		// acquire; it gets a distinct exit code.
		if errors.Is(err, errors.ErrLockConflict) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
