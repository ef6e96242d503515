package coordination

import (
	"fmt"
	"strings"
	"time"
)

// LockKind defines the matching rule for a lock's target path.
type LockKind string

const (
	// LockFile matches the exact path only.
	LockFile LockKind = "file"

	// LockDirectory matches the path itself and every path beneath it.
	LockDirectory LockKind = "directory"
)

// Lock represents one holder's claim over a path.
type Lock struct {
	ID         string    `json:"id"`     // Opaque, unique per grant
	Path       string    `json:"path"`   // Normalized, project-relative
	Kind       LockKind  `json:"kind"`   // Matching rule for Path
	Holder     string    `json:"holder"` // Session that owns the lock
	Reason     string    `json:"reason,omitempty"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the lock's TTL has elapsed at the given instant.
// Expiry is always evaluated against wall-clock now at read time, never
// against other locks' timestamps.
func (l Lock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// Covers reports whether this lock's claim extends to the given normalized path.
func (l Lock) Covers(path string) bool {
	if l.Path == path {
		return true
	}
	if l.Kind == LockDirectory {
		return strings.HasPrefix(path, l.Path+"/")
	}
	return false
}

// Conflicts reports whether a request for (path, kind) by a different holder
// overlaps this lock under the kind-aware matching rule. A directory lock on
// "a" conflicts with a file lock on "a/b" and vice versa; two file locks on
// different exact paths never conflict.
func (l Lock) Conflicts(path string, kind LockKind, holder string) bool {
	if l.Holder == holder {
		return false
	}
	if l.Covers(path) {
		return true
	}
	if kind == LockDirectory && (path == l.Path || strings.HasPrefix(l.Path, path+"/")) {
		return true
	}
	return false
}

// Grant is the result of a successful Acquire.
type Grant struct {
	// Lock is the persisted lock record. Zero when Coordinated is false.
	Lock Lock

	// Refreshed is true when the holder already held a lock on the path and
	// the grant extended it rather than creating a fresh claim.
	Refreshed bool

	// Coordinated is false when coordination is disabled for the project
	// and the grant is an unconditional pass-through.
	Coordinated bool
}

// Denial is the result of a conflicting Acquire. It is expected control flow,
// not an error.
type Denial struct {
	// Conflict is the lock that blocked the request.
	Conflict Lock
}

// Message renders a user-facing explanation naming the blocking holder and
// the lock's timestamps.
func (d *Denial) Message() string {
	c := d.Conflict
	return fmt.Sprintf("%s is locked by %s (%s lock, acquired %s, expires %s)",
		c.Path,
		c.Holder,
		c.Kind,
		c.AcquiredAt.Format(time.RFC3339),
		c.ExpiresAt.Format(time.RFC3339),
	)
}
