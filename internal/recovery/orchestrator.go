// Package recovery drains the durable memory queues left behind by earlier
// sessions. It runs once at session start: stale queues are archived without
// replay, fresh queues are read, aggregated into a replay message, and
// cleared so the same operations are never surfaced twice.
package recovery

import (
	"time"

	"github.com/orkhq/ork/internal/errors"
	"github.com/orkhq/ork/internal/logging"
	"github.com/orkhq/ork/internal/memqueue"
)

// DefaultStaleness is how old a queue stream may be before its contents are
// archived instead of replayed.
const DefaultStaleness = 24 * time.Hour

// State tracks orchestrator progress. Exposed on Result so callers and tests
// can assert where a run ended up.
type State string

const (
	StateIdle             State = "idle"
	StateScanning         State = "scanning"
	StateNothingFound     State = "nothing_found"
	StatePerQueueDecision State = "per_queue_decision"
	StateDone             State = "done"
)

// Decision records what happened to one queue during a run.
type Decision string

const (
	// DecisionArchived means the queue was stale and moved to the archive.
	DecisionArchived Decision = "archived"
	// DecisionReplayed means the queue was fresh, aggregated into the replay
	// message, and cleared.
	DecisionReplayed Decision = "replayed"
	// DecisionCleared means the queue was fresh but aggregated to nothing,
	// so it was cleared silently.
	DecisionCleared Decision = "cleared"
	// DecisionFailed means a stale queue could be neither archived nor
	// cleared; its stream survives for the next run to retry.
	DecisionFailed Decision = "failed"
)

// QueueResult is the per-queue outcome of a recovery run.
type QueueResult struct {
	Kind        memqueue.Kind
	Decision    Decision
	ArchivePath string
	Operations  int
}

// Result is the outcome of one recovery run.
type Result struct {
	State   State
	Queues  []QueueResult
	Message string
}

// NothingFound reports whether no queue streams existed at all.
func (r *Result) NothingFound() bool {
	return r.State == StateNothingFound
}

// HasReplay reports whether the run produced replay text for the caller to
// surface.
func (r *Result) HasReplay() bool {
	return r.Message != ""
}

// Orchestrator coordinates a single recovery pass over all queue kinds.
type Orchestrator struct {
	store      *memqueue.Store
	archiveDir string
	staleness  time.Duration
	keep       bool
	logger     *logging.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStaleness overrides the archive threshold.
func WithStaleness(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.staleness = d
		}
	}
}

// WithKeep leaves fresh streams in place after reading them. Debugging aid;
// a kept queue will be replayed again on the next run.
func WithKeep(keep bool) Option {
	return func(o *Orchestrator) {
		o.keep = keep
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger.WithComponent("recovery")
		}
	}
}

// New creates an Orchestrator draining store into archiveDir.
func New(store *memqueue.Store, archiveDir string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		archiveDir: archiveDir,
		staleness:  DefaultStaleness,
		logger:     logging.NopLogger().WithComponent("recovery"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs one recovery pass. It never fails the session start for a
// single bad queue; per-queue errors are logged and the remaining queues are
// still processed. The returned error covers only failures that prevented
// the run itself.
func (o *Orchestrator) Run() (*Result, error) {
	result := &Result{State: StateScanning}

	var pending []memqueue.Kind
	for _, kind := range memqueue.Kinds() {
		if o.store.Exists(kind) {
			pending = append(pending, kind)
		}
	}
	if len(pending) == 0 {
		result.State = StateNothingFound
		o.logger.Debug("no pending queues")
		return result, nil
	}

	result.State = StatePerQueueDecision
	var sections []string
	for _, kind := range pending {
		qr := o.drainQueue(kind, &sections)
		result.Queues = append(result.Queues, qr)
	}

	result.Message = joinSections(sections)
	result.State = StateDone
	o.logger.Info("recovery complete",
		"queues", len(result.Queues), "replay", result.HasReplay())
	return result, nil
}

// drainQueue applies the stale/fresh decision to one queue and appends any
// replay section to sections.
func (o *Orchestrator) drainQueue(kind memqueue.Kind, sections *[]string) QueueResult {
	log := o.logger.WithQueue(string(kind))

	if o.store.IsStale(kind, o.staleness) {
		dst, err := o.store.Archive(kind, o.archiveDir)
		switch {
		case err == nil:
			if dst != "" {
				log.Info("stale queue archived", "archive", dst)
			}
		case errors.Is(err, errors.ErrArchiveFailed):
			// Archive already fell back to clearing the stream.
			log.Warn("stale queue cleared without archive copy")
		default:
			log.Error("archive failed", "error", err)
			if o.store.Exists(kind) {
				return QueueResult{Kind: kind, Decision: DecisionFailed}
			}
		}
		return QueueResult{Kind: kind, Decision: DecisionArchived, ArchivePath: dst}
	}

	ops, err := o.store.ReadAll(kind)
	if err != nil {
		log.Error("queue read failed", "error", err)
	}

	// Clear before rendering so a crash mid-render cannot replay twice.
	if !o.keep {
		if err := o.store.Clear(kind); err != nil {
			log.Error("queue clear failed", "error", err)
		}
	}

	qr := QueueResult{Kind: kind, Decision: DecisionCleared, Operations: len(ops)}
	section := renderQueue(kind, ops)
	if section != "" {
		qr.Decision = DecisionReplayed
		*sections = append(*sections, section)
	}
	log.Info("queue drained", "operations", len(ops), "decision", qr.Decision)
	return qr
}
