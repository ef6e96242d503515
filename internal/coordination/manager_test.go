package coordination

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeClock provides a controllable time source for TTL tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeClock) {
	t.Helper()
	root := t.TempDir()
	coordDir := filepath.Join(root, ".ork", "coordination")
	if err := os.MkdirAll(coordDir, 0o755); err != nil {
		t.Fatal(err)
	}

	clock := newFakeClock()
	all := append([]Option{WithClock(clock.Now)}, opts...)
	return NewManager(root, coordDir, all...), clock
}

func mustGrant(t *testing.T, m *Manager, path string, kind LockKind, holder string, ttl time.Duration) *Grant {
	t.Helper()
	grant, denial, err := m.Acquire(path, kind, holder, "testing", ttl)
	if err != nil {
		t.Fatalf("Acquire(%q, %q) error = %v", path, holder, err)
	}
	if denial != nil {
		t.Fatalf("Acquire(%q, %q) denied by %s, want grant", path, holder, denial.Conflict.Holder)
	}
	return grant
}

func TestAcquireGrantsUnlockedPath(t *testing.T) {
	m, _ := newTestManager(t)

	grant := mustGrant(t, m, "src/app.ts", LockFile, "sess-A", 0)
	if !grant.Coordinated {
		t.Error("grant should be coordinated when the coordination dir exists")
	}
	if grant.Refreshed {
		t.Error("first acquire should not be a refresh")
	}
	if grant.Lock.ID == "" {
		t.Error("granted lock should have an identifier")
	}
	if got := grant.Lock.ExpiresAt.Sub(grant.Lock.AcquiredAt); got != DefaultTTL {
		t.Errorf("default TTL = %v, want %v", got, DefaultTTL)
	}
}

func TestAcquireDeniesConcurrentHolder(t *testing.T) {
	m, clock := newTestManager(t)

	mustGrant(t, m, "src/app.ts", LockFile, "sess-A", 300*time.Second)

	clock.Advance(1 * time.Second)
	grant, denial, err := m.Acquire("src/app.ts", LockFile, "sess-B", "conflicting edit", 300*time.Second)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if grant != nil {
		t.Fatal("Acquire() should not grant over a live lock")
	}
	if denial == nil {
		t.Fatal("Acquire() should deny")
	}
	if denial.Conflict.Holder != "sess-A" {
		t.Errorf("conflicting holder = %q, want %q", denial.Conflict.Holder, "sess-A")
	}
}

func TestAcquireSucceedsAfterTTLElapses(t *testing.T) {
	m, clock := newTestManager(t)

	mustGrant(t, m, "src/app.ts", LockFile, "sess-A", 300*time.Second)

	// 301 simulated seconds later the original lock is expired and a new
	// holder takes over.
	clock.Advance(301 * time.Second)
	mustGrant(t, m, "src/app.ts", LockFile, "sess-B", 300*time.Second)

	// The original holder is now on the wrong side of the conflict.
	clock.Advance(1 * time.Second)
	_, denial, err := m.Acquire("src/app.ts", LockFile, "sess-A", "retry", 300*time.Second)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if denial == nil {
		t.Fatal("expired holder should be denied after takeover")
	}
	if denial.Conflict.Holder != "sess-B" {
		t.Errorf("conflicting holder = %q, want %q", denial.Conflict.Holder, "sess-B")
	}
}

func TestDirectoryLockBlocksFilesBeneath(t *testing.T) {
	m, _ := newTestManager(t)

	mustGrant(t, m, "src", LockDirectory, "sess-A", 300*time.Second)

	_, denial, err := m.Acquire("src/deep/nested/file.ts", LockFile, "sess-B", "edit", 300*time.Second)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if denial == nil {
		t.Fatal("directory lock should deny file locks beneath it")
	}
	if denial.Conflict.Kind != LockDirectory {
		t.Errorf("conflict kind = %q, want directory", denial.Conflict.Kind)
	}
}

func TestFileLockBlocksDirectoryRequestAbove(t *testing.T) {
	m, _ := newTestManager(t)

	mustGrant(t, m, "src/app.ts", LockFile, "sess-A", 300*time.Second)

	_, denial, err := m.Acquire("src", LockDirectory, "sess-B", "refactor", 300*time.Second)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if denial == nil {
		t.Fatal("directory request should be denied by a file lock beneath it")
	}
	if denial.Conflict.Holder != "sess-A" {
		t.Errorf("conflicting holder = %q, want %q", denial.Conflict.Holder, "sess-A")
	}
}

func TestSiblingPathsDoNotConflict(t *testing.T) {
	m, _ := newTestManager(t)

	mustGrant(t, m, "src/a.ts", LockFile, "sess-A", 300*time.Second)
	mustGrant(t, m, "src/b.ts", LockFile, "sess-B", 300*time.Second)
	mustGrant(t, m, "docs", LockDirectory, "sess-C", 300*time.Second)
}

func TestReacquireRefreshesExpiry(t *testing.T) {
	m, clock := newTestManager(t)

	first := mustGrant(t, m, "src/app.ts", LockFile, "sess-A", 300*time.Second)

	clock.Advance(200 * time.Second)
	second := mustGrant(t, m, "src/app.ts", LockFile, "sess-A", 300*time.Second)

	if !second.Refreshed {
		t.Error("re-acquire by the same holder should report a refresh")
	}
	if !second.Lock.ExpiresAt.After(first.Lock.ExpiresAt) {
		t.Errorf("refresh should extend expiry: %v -> %v", first.Lock.ExpiresAt, second.Lock.ExpiresAt)
	}

	// Refresh replaces the record instead of stacking a second claim.
	if got := len(m.ActiveLocks()); got != 1 {
		t.Errorf("ActiveLocks() = %d locks, want 1", got)
	}
}

func TestEvictionPersistsOnDenialPath(t *testing.T) {
	m, clock := newTestManager(t)

	mustGrant(t, m, "expired.ts", LockFile, "sess-old", 10*time.Second)
	mustGrant(t, m, "live.ts", LockFile, "sess-A", 600*time.Second)

	clock.Advance(60 * time.Second)

	// Denied by the live lock, but the expired entry must still be evicted
	// from the persisted snapshot by this call.
	_, denial, err := m.Acquire("live.ts", LockFile, "sess-B", "edit", 300*time.Second)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if denial == nil {
		t.Fatal("expected denial from live lock")
	}

	stored := m.store.Load()
	if len(stored) != 1 {
		t.Fatalf("persisted store has %d locks, want 1 (expired entry evicted)", len(stored))
	}
	if stored[0].Path != "live.ts" {
		t.Errorf("surviving lock = %q, want live.ts", stored[0].Path)
	}
}

func TestAcquireDisabledCoordination(t *testing.T) {
	root := t.TempDir()
	// Note: coordination directory deliberately not created.
	m := NewManager(root, filepath.Join(root, ".ork", "coordination"))

	grant, denial, err := m.Acquire("src/app.ts", LockFile, "sess-A", "edit", 0)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if denial != nil {
		t.Fatal("disabled coordination must always permit")
	}
	if grant.Coordinated {
		t.Error("grant should be marked uncoordinated")
	}

	// The short-circuit must not create the directory as a side effect.
	if _, err := os.Stat(filepath.Join(root, ".ork")); !os.IsNotExist(err) {
		t.Error("disabled acquire should not create coordination directories")
	}
}

func TestAcquireCorruptedStoreFailsOpen(t *testing.T) {
	m, _ := newTestManager(t)

	if err := os.WriteFile(m.store.Path(), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Corruption is recovered by treating the store as empty.
	mustGrant(t, m, "src/app.ts", LockFile, "sess-A", 300*time.Second)
}

func TestAcquireValidation(t *testing.T) {
	m, _ := newTestManager(t)

	if _, _, err := m.Acquire("src/app.ts", LockFile, "", "edit", 0); err == nil {
		t.Error("empty holder should be rejected")
	}
	if _, _, err := m.Acquire("", LockFile, "sess-A", "edit", 0); err == nil {
		t.Error("empty path should be rejected")
	}
}

func TestNormalizePath(t *testing.T) {
	root := t.TempDir()
	coordDir := filepath.Join(root, ".ork", "coordination")
	if err := os.MkdirAll(coordDir, 0o755); err != nil {
		t.Fatal(err)
	}
	m := NewManager(root, coordDir)

	tests := []struct {
		input string
		want  string
	}{
		{"src/app.ts", "src/app.ts"},
		{"./src/app.ts", "src/app.ts"},
		{"src//app.ts", "src/app.ts"},
		{"src/app.ts ", "src/app.ts"},
		{"src/sub/../app.ts", "src/app.ts"},
		{filepath.Join(root, "src", "app.ts"), "src/app.ts"},
	}

	for _, tt := range tests {
		if got := m.NormalizePath(tt.input); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizedPathsShareLocks(t *testing.T) {
	m, _ := newTestManager(t)

	mustGrant(t, m, "./src//app.ts", LockFile, "sess-A", 300*time.Second)

	_, denial, err := m.Acquire("src/app.ts", LockFile, "sess-B", "edit", 300*time.Second)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if denial == nil {
		t.Fatal("differently spelled paths should normalize to the same lock")
	}
}

func TestActiveLocksFiltersExpired(t *testing.T) {
	m, clock := newTestManager(t)

	mustGrant(t, m, "b.ts", LockFile, "sess-A", 10*time.Second)
	mustGrant(t, m, "a.ts", LockFile, "sess-B", 600*time.Second)

	clock.Advance(60 * time.Second)

	active := m.ActiveLocks()
	if len(active) != 1 {
		t.Fatalf("ActiveLocks() = %d, want 1", len(active))
	}
	if active[0].Path != "a.ts" {
		t.Errorf("active lock = %q, want a.ts", active[0].Path)
	}
}

func TestActiveLocksSortedByPath(t *testing.T) {
	m, _ := newTestManager(t)

	mustGrant(t, m, "c.ts", LockFile, "sess-A", 300*time.Second)
	mustGrant(t, m, "a.ts", LockFile, "sess-B", 300*time.Second)
	mustGrant(t, m, "b.ts", LockFile, "sess-C", 300*time.Second)

	active := m.ActiveLocks()
	want := []string{"a.ts", "b.ts", "c.ts"}
	for i, p := range want {
		if active[i].Path != p {
			t.Errorf("active[%d].Path = %q, want %q", i, active[i].Path, p)
		}
	}
}
