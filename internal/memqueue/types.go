package memqueue

import (
	"fmt"
	"time"

	"github.com/orkhq/ork/internal/errors"
)

// Kind identifies one durable queue stream.
type Kind string

const (
	// KindGraph holds deferred knowledge-graph mutations.
	KindGraph Kind = "graph"
	// KindMemory holds deferred semantic memory records.
	KindMemory Kind = "memory"
)

// Kinds returns all queue kinds in scan order.
func Kinds() []Kind {
	return []Kind{KindGraph, KindMemory}
}

// ParseKind converts a user-supplied string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindGraph:
		return KindGraph, nil
	case KindMemory:
		return KindMemory, nil
	default:
		return "", errors.NewQueueError(
			fmt.Sprintf("unknown queue kind %q (valid: graph, memory)", s),
			errors.ErrUnknownQueueKind,
		).WithKind(s)
	}
}

// FileName returns the stream file name for this kind within the memory
// directory.
func (k Kind) FileName() string {
	switch k {
	case KindGraph:
		return "graph-queue.jsonl"
	case KindMemory:
		return "memory-queue.jsonl"
	default:
		return string(k) + "-queue.jsonl"
	}
}

// OpType discriminates the payload of a queued Operation.
type OpType string

const (
	OpCreateEntities  OpType = "create_entities"
	OpCreateRelations OpType = "create_relations"
	OpAddObservations OpType = "add_observations"
	OpMemoryRecord    OpType = "memory_record"
)

// Entity is a knowledge-graph node to create.
type Entity struct {
	Name         string   `json:"name"`
	EntityType   string   `json:"entityType,omitempty"`
	Observations []string `json:"observations,omitempty"`
}

// Relation is a directed, typed edge between two entities.
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// ObservationSet appends free-text observations to an existing entity.
type ObservationSet struct {
	EntityName string   `json:"entityName"`
	Contents   []string `json:"contents"`
}

// MemoryRecord is a semantic memory entry destined for the memory service.
type MemoryRecord struct {
	Text     string         `json:"text"`
	UserID   string         `json:"userId,omitempty"`
	AgentID  string         `json:"agentId,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Operation is one queued mutation. Type selects which payload field is set;
// the others stay empty. Unknown fields in persisted records are ignored on
// read so newer writers do not break older readers.
type Operation struct {
	Type         OpType           `json:"type"`
	Entities     []Entity         `json:"entities,omitempty"`
	Relations    []Relation       `json:"relations,omitempty"`
	Observations []ObservationSet `json:"observations,omitempty"`
	Memory       *MemoryRecord    `json:"memory,omitempty"`
	QueuedAt     time.Time        `json:"queued_at"`
}

// ValidFor reports whether this operation type belongs on the given queue.
func (op *Operation) ValidFor(kind Kind) bool {
	switch op.Type {
	case OpCreateEntities, OpCreateRelations, OpAddObservations:
		return kind == KindGraph
	case OpMemoryRecord:
		return kind == KindMemory
	default:
		return false
	}
}

// Validate checks that the operation carries the payload its type requires.
func (op *Operation) Validate() error {
	switch op.Type {
	case OpCreateEntities:
		if len(op.Entities) == 0 {
			return errors.NewValidationError("entities must not be empty for create_entities").
				WithField("entities")
		}
		for i, e := range op.Entities {
			if e.Name == "" {
				return errors.NewValidationError(fmt.Sprintf("entity %d has no name", i)).
					WithField("entities")
			}
		}
	case OpCreateRelations:
		if len(op.Relations) == 0 {
			return errors.NewValidationError("relations must not be empty for create_relations").
				WithField("relations")
		}
		for i, r := range op.Relations {
			if r.From == "" || r.To == "" || r.RelationType == "" {
				return errors.NewValidationError(fmt.Sprintf("relation %d is incomplete", i)).
					WithField("relations")
			}
		}
	case OpAddObservations:
		if len(op.Observations) == 0 {
			return errors.NewValidationError("observations must not be empty for add_observations").
				WithField("observations")
		}
		for i, o := range op.Observations {
			if o.EntityName == "" {
				return errors.NewValidationError(fmt.Sprintf("observation set %d has no entityName", i)).
					WithField("observations")
			}
		}
	case OpMemoryRecord:
		if op.Memory == nil || op.Memory.Text == "" {
			return errors.NewValidationError("memory_record requires non-empty text").
				WithField("memory")
		}
	default:
		return errors.NewValidationError(fmt.Sprintf("unknown operation type %q", op.Type)).
			WithField("type").WithValue(string(op.Type))
	}
	return nil
}
