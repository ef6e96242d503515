package coordination

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orkhq/ork/internal/errors"
	"github.com/orkhq/ork/internal/logging"
)

// DefaultTTL is the lock time-to-live applied when a caller does not specify one.
const DefaultTTL = 300 * time.Second

// Manager decides, for a requested path and holder, whether a write may
// proceed. It owns no in-memory lock state: every Acquire call is a full
// load, evict, decide, persist cycle against the shared snapshot.
type Manager struct {
	projectRoot string
	coordDir    string
	store       *Store
	defaultTTL  time.Duration
	useFlock    bool
	now         func() time.Time
	logger      *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithDefaultTTL overrides the TTL applied when Acquire is called with a
// non-positive ttl.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.defaultTTL = ttl
		}
	}
}

// WithFlock controls whether an advisory flock is held around each
// read-modify-write cycle. Enabled by default.
func WithFlock(enabled bool) Option {
	return func(m *Manager) {
		m.useFlock = enabled
	}
}

// WithClock overrides the time source. Used by tests to simulate TTL expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger for coordination anomalies and grant tracing.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger.WithComponent("lockmanager")
			m.store = NewStore(m.coordDir, logger)
		}
	}
}

// NewManager creates a Manager for the given project root and coordination
// directory.
func NewManager(projectRoot, coordDir string, opts ...Option) *Manager {
	m := &Manager{
		projectRoot: projectRoot,
		coordDir:    coordDir,
		store:       NewStore(coordDir, nil),
		defaultTTL:  DefaultTTL,
		useFlock:    true,
		now:         time.Now,
		logger:      logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled reports whether multi-instance coordination is active for this
// project. The coordination directory's existence is the opt-in signal;
// when it is absent the manager is inert and permits everything.
func (m *Manager) Enabled() bool {
	info, err := os.Stat(m.coordDir)
	return err == nil && info.IsDir()
}

// NormalizePath converts a path to the canonical project-relative form used
// in lock records: slash-separated, cleaned, without leading or trailing
// separators. Absolute paths under the project root are made relative;
// absolute paths outside it are kept as cleaned slash paths so equal inputs
// still compare equal.
func (m *Manager) NormalizePath(path string) string {
	p := filepath.Clean(strings.TrimSpace(path))
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(m.projectRoot, p); err == nil && rel != ".." && !strings.HasPrefix(rel, "../") {
			p = rel
		}
	}
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return strings.Trim(p, "/")
}

// Acquire requests exclusive write access to path for holder.
//
// Exactly one of the three results is meaningful: a *Grant when access is
// permitted, a *Denial naming the conflicting lock when it is not, or an
// error when the lock store could not be persisted. On a persistence error
// the manager makes no access decision; the caller chooses strict (treat as
// denied) or permissive handling. A Denial may be accompanied by a
// persistence error when flushing the eviction work also failed.
//
// Every call unconditionally evicts expired locks and persists the result,
// on the grant and denial paths alike, so expired entries never accumulate.
func (m *Manager) Acquire(path string, kind LockKind, holder, reason string, ttl time.Duration) (*Grant, *Denial, error) {
	if !m.Enabled() {
		return &Grant{Coordinated: false}, nil, nil
	}

	if holder == "" {
		return nil, nil, errors.NewValidationError("holder must not be empty").WithField("holder")
	}
	if kind == "" {
		kind = LockFile
	}
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	normalized := m.NormalizePath(path)
	if normalized == "" || normalized == "." {
		return nil, nil, errors.NewValidationError("path must not be empty").WithField("path").WithValue(path)
	}

	if m.useFlock {
		fl := NewFileLock(m.coordDir)
		if err := fl.Lock(); err != nil {
			// The flock is a best-effort layer over the atomic rename
			// protocol; losing it degrades to the documented race, it
			// does not block the acquire.
			m.logger.Warn("advisory flock unavailable", "error", err.Error())
		} else {
			defer func() { _ = fl.Unlock() }()
		}
	}

	now := m.now()
	locks := m.store.Load()

	kept := locks[:0:0]
	for _, l := range locks {
		if l.Expired(now) {
			m.logger.Debug("evicting expired lock",
				"path", l.Path,
				"holder", l.Holder,
				"expired_at", l.ExpiresAt,
			)
			continue
		}
		kept = append(kept, l)
	}

	// Directory locks are checked before exact-path locks so the denial
	// names the broadest conflicting claim.
	conflict := findConflict(kept, normalized, kind, holder, LockDirectory)
	if conflict == nil {
		conflict = findConflict(kept, normalized, kind, holder, LockFile)
	}
	if conflict != nil {
		var persistErr error
		if err := m.store.Persist(kept); err != nil {
			persistErr = errors.NewLockError("failed to persist lock store", err).WithPath(normalized).WithHolder(holder)
		}
		m.logger.Info("lock denied",
			"path", normalized,
			"holder", holder,
			"blocked_by", conflict.Holder,
		)
		return nil, &Denial{Conflict: *conflict}, persistErr
	}

	// Refresh semantics: a repeated Acquire by the same holder replaces the
	// prior record rather than stacking a second claim.
	refreshed := false
	filtered := kept[:0]
	for _, l := range kept {
		if l.Holder == holder && l.Path == normalized {
			refreshed = true
			continue
		}
		filtered = append(filtered, l)
	}
	kept = filtered

	lock := Lock{
		ID:         uuid.NewString(),
		Path:       normalized,
		Kind:       kind,
		Holder:     holder,
		Reason:     reason,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	kept = append(kept, lock)

	if err := m.store.Persist(kept); err != nil {
		return nil, nil, errors.NewLockError("failed to persist lock store", err).WithPath(normalized).WithHolder(holder)
	}

	m.logger.Info("lock granted",
		"path", normalized,
		"holder", holder,
		"kind", string(kind),
		"refreshed", refreshed,
		"expires_at", lock.ExpiresAt,
	)
	return &Grant{Lock: lock, Refreshed: refreshed, Coordinated: true}, nil, nil
}

// findConflict returns the first lock of the given stored kind that overlaps
// the request, or nil.
func findConflict(locks []Lock, path string, kind LockKind, holder string, storedKind LockKind) *Lock {
	for i := range locks {
		if locks[i].Kind != storedKind {
			continue
		}
		if locks[i].Conflicts(path, kind, holder) {
			return &locks[i]
		}
	}
	return nil
}

// ActiveLocks returns the currently unexpired locks sorted by path.
// It is a read-only view: expired entries are filtered from the result but
// eviction is left to the next Acquire call.
func (m *Manager) ActiveLocks() []Lock {
	if !m.Enabled() {
		return nil
	}

	now := m.now()
	var active []Lock
	for _, l := range m.store.Load() {
		if !l.Expired(now) {
			active = append(active, l)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].Path < active[j].Path
	})
	return active
}
