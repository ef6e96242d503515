package memqueue

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/orkhq/ork/internal/errors"
	"github.com/orkhq/ork/internal/logging"
)

// archiveTimeFormat is a filesystem-safe compact timestamp used to prefix
// archived stream names.
const archiveTimeFormat = "20060102T150405Z"

// Store persists queue streams as append-only JSONL files under a memory
// directory. One file per Kind. Appends are single writes of one complete
// line so concurrent appenders from different processes interleave at record
// granularity.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *logging.Logger
	now    func() time.Time
}

// NewStore creates a Store rooted at dir. The directory is created lazily on
// first append, so a project that never queues anything never grows a memory
// directory.
func NewStore(dir string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Store{
		dir:    dir,
		logger: logger.WithComponent("memqueue"),
		now:    time.Now,
	}
}

// Dir returns the memory directory this store writes under.
func (s *Store) Dir() string {
	return s.dir
}

// StreamPath returns the absolute path of the stream file for kind.
func (s *Store) StreamPath(kind Kind) string {
	return filepath.Join(s.dir, kind.FileName())
}

// Append validates op, stamps QueuedAt if unset, and appends it as one JSONL
// line to the stream for kind.
func (s *Store) Append(kind Kind, op Operation) error {
	if err := op.Validate(); err != nil {
		return err
	}
	if !op.ValidFor(kind) {
		return errors.NewQueueError(
			fmt.Sprintf("operation %q does not belong on the %s queue", op.Type, kind),
			errors.ErrInvalidInput,
		).WithKind(string(kind))
	}
	if op.QueuedAt.IsZero() {
		op.QueuedAt = s.now().UTC()
	}

	data, err := json.Marshal(op)
	if err != nil {
		return errors.NewQueueError("marshal queued operation", err).WithKind(string(kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.NewQueueError("create memory directory", err).WithKind(string(kind))
	}

	f, err := os.OpenFile(s.StreamPath(kind), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.NewQueueError("open queue stream", err).WithKind(string(kind))
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.NewQueueError("append queued operation", err).WithKind(string(kind))
	}

	s.logger.Debug("operation queued", "kind", kind, "type", op.Type)
	return nil
}

// ReadAll parses the stream for kind in append order. Malformed lines are
// skipped and logged rather than aborting the read; a partially torn final
// line must not hold the rest of the queue hostage.
func (s *Store) ReadAll(kind Kind) ([]Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.StreamPath(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewQueueError("open queue stream", err).WithKind(string(kind))
	}
	defer f.Close()

	var ops []Operation
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var op Operation
		if err := json.Unmarshal(line, &op); err != nil {
			s.logger.Warn("skipping malformed queue line",
				"kind", kind, "line", lineNo, "error", err)
			continue
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return ops, errors.NewQueueError("scan queue stream", err).WithKind(string(kind))
	}
	return ops, nil
}

// Exists reports whether a stream file exists for kind.
func (s *Store) Exists(kind Kind) bool {
	_, err := os.Stat(s.StreamPath(kind))
	return err == nil
}

// IsStale reports whether the stream for kind was last modified more than
// maxAge ago. An absent stream is never stale.
func (s *Store) IsStale(kind Kind, maxAge time.Duration) bool {
	info, err := os.Stat(s.StreamPath(kind))
	if err != nil {
		return false
	}
	return s.now().Sub(info.ModTime()) > maxAge
}

// Clear removes the stream for kind. Clearing an absent stream is a no-op.
func (s *Store) Clear(kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.StreamPath(kind)); err != nil && !os.IsNotExist(err) {
		return errors.NewQueueError("clear queue stream", err).WithKind(string(kind))
	}
	return nil
}

// Archive moves the stream for kind into archiveDir under a
// timestamp-prefixed name and returns the destination path. If the rename
// fails the stream is cleared instead; a stale queue must never survive
// recovery, even at the cost of losing its contents.
func (s *Store) Archive(kind Kind, archiveDir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.StreamPath(kind)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.NewQueueError("stat queue stream", err).WithKind(string(kind))
	}

	dst := filepath.Join(archiveDir, s.now().UTC().Format(archiveTimeFormat)+"-"+kind.FileName())
	if err := os.MkdirAll(archiveDir, 0o755); err == nil {
		if err := os.Rename(src, dst); err == nil {
			s.logger.Info("queue archived", "kind", kind, "archive", dst)
			return dst, nil
		}
		s.logger.Warn("archive rename failed, clearing instead", "kind", kind, "archive", dst)
	} else {
		s.logger.Warn("archive directory unavailable, clearing instead",
			"kind", kind, "error", err)
	}

	if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
		return "", errors.NewQueueError("clear unarchivable queue stream", err).
			WithKind(string(kind))
	}
	return "", errors.ErrArchiveFailed
}
