// Package session provides holder identity for the coordination layer.
//
// Every lock and queue record is attributed to a holder: the stable identifier
// of one coordinating editor/CLI session. The coordination layer only requires
// that the identifier be stable for the lifetime of one session and distinct
// across concurrent sessions; the format is otherwise opaque.
package session

import (
	"fmt"
	"os"
	"strings"
	"syscall"
)

// EnvHolderID is the environment variable that overrides the derived holder ID.
// The outer session-identity provider (the plugin hook environment) sets this
// so that all processes spawned within one session share an identity.
const EnvHolderID = "ORK_SESSION_ID"

// HolderID returns the identity of the current session.
//
// If ORK_SESSION_ID is set it is used verbatim. Otherwise the identity is
// derived as "<hostname>-<pid>", which is stable for the process lifetime and
// distinct across concurrent sessions on one host. The derived form is a
// fallback for running ork commands outside a managed session.
func HolderID() string {
	if id := strings.TrimSpace(os.Getenv(EnvHolderID)); id != "" {
		return id
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// LocalPID extracts the process ID from a derived holder identity.
// Returns (0, false) for external identities that don't embed a PID or
// identities derived on another host.
func LocalPID(holderID string) (int, bool) {
	hostname, err := os.Hostname()
	if err != nil {
		return 0, false
	}

	prefix := hostname + "-"
	if !strings.HasPrefix(holderID, prefix) {
		return 0, false
	}

	var pid int
	if _, err := fmt.Sscanf(strings.TrimPrefix(holderID, prefix), "%d", &pid); err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// IsProcessAlive checks if a process with the given PID is still running.
// Used by status displays to annotate locks whose holder process has exited;
// liveness never affects lock expiry, which is TTL-only.
func IsProcessAlive(pid int) bool {
	// On Unix, sending signal 0 checks if process exists without affecting it
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil
}
