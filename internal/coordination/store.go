package coordination

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orkhq/ork/internal/logging"
)

// StoreFileName is the name of the lock snapshot file within the
// coordination directory.
const StoreFileName = "locks.json"

// lockSnapshot is the serializable representation of the lock store.
type lockSnapshot struct {
	Locks []Lock `json:"locks"`
}

// Store persists the full set of held locks as one consistent JSON snapshot.
// It holds no state between calls beyond its directory; every operation is a
// complete read or a complete atomic write.
type Store struct {
	dir    string
	logger *logging.Logger
}

// NewStore creates a Store rooted at the given coordination directory.
// The logger may be nil, in which case anomalies are discarded.
func NewStore(dir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{dir: dir, logger: logger.WithComponent("lockstore")}
}

// Path returns the location of the snapshot file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, StoreFileName)
}

// Load reads the current lock snapshot.
//
// A missing snapshot yields an empty store. A snapshot that cannot be read or
// parsed also yields an empty store: coordination data corruption must never
// block legitimate work, so the store fails open and logs the anomaly.
func (s *Store) Load() []Lock {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read lock store, treating as empty",
				"path", s.Path(),
				"error", err.Error(),
			)
		}
		return nil
	}

	var snapshot lockSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("lock store corrupted, treating as empty",
			"path", s.Path(),
			"error", err.Error(),
		)
		return nil
	}

	return snapshot.Locks
}

// Persist writes the full lock set as a new snapshot.
//
// The write is atomic: data is written to a uniquely-named temporary sibling
// first, then renamed into place, so a concurrent reader never observes a
// partially written file. Write failures are returned to the caller; unlike
// reads, the store never swallows them.
func (s *Store) Persist(locks []Lock) error {
	if locks == nil {
		locks = []Lock{}
	}

	data, err := json.MarshalIndent(lockSnapshot{Locks: locks}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock snapshot: %w", err)
	}

	target := s.Path()
	tmp := fmt.Sprintf("%s.tmp.%d", target, os.Getpid())

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
