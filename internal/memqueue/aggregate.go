package memqueue

import (
	"sort"
	"strings"
)

// AggregatedGraph is the deduplicated replay set distilled from a graph
// queue. Slices preserve first-appearance order so the same queue contents
// always aggregate to the same output.
type AggregatedGraph struct {
	Entities     []Entity
	Relations    []Relation
	Observations []ObservationSet
}

// Empty reports whether aggregation produced nothing to replay.
func (g *AggregatedGraph) Empty() bool {
	return len(g.Entities) == 0 && len(g.Relations) == 0 && len(g.Observations) == 0
}

// AggregateGraph collapses a graph queue into a minimal replay set:
//
//   - entities are deduplicated by name, first record wins
//   - relations are deduplicated by the (from, to, relationType) triple
//   - observation contents for the same entity name are concatenated across
//     records in queue order
func AggregateGraph(ops []Operation) *AggregatedGraph {
	agg := &AggregatedGraph{}

	seenEntity := make(map[string]bool)
	seenRelation := make(map[Relation]bool)
	obsIndex := make(map[string]int)

	for _, op := range ops {
		switch op.Type {
		case OpCreateEntities:
			for _, e := range op.Entities {
				if e.Name == "" || seenEntity[e.Name] {
					continue
				}
				seenEntity[e.Name] = true
				agg.Entities = append(agg.Entities, e)
			}
		case OpCreateRelations:
			for _, r := range op.Relations {
				if r.From == "" || r.To == "" || seenRelation[r] {
					continue
				}
				seenRelation[r] = true
				agg.Relations = append(agg.Relations, r)
			}
		case OpAddObservations:
			for _, o := range op.Observations {
				if o.EntityName == "" || len(o.Contents) == 0 {
					continue
				}
				if i, ok := obsIndex[o.EntityName]; ok {
					agg.Observations[i].Contents = append(agg.Observations[i].Contents, o.Contents...)
					continue
				}
				obsIndex[o.EntityName] = len(agg.Observations)
				agg.Observations = append(agg.Observations, ObservationSet{
					EntityName: o.EntityName,
					Contents:   append([]string(nil), o.Contents...),
				})
			}
		}
	}
	return agg
}

// AggregateMemories collapses a memory queue into a deduplicated record set.
// Records with the same text after trimming and case folding are one logical
// memory; the latest enqueue wins so metadata reflects the freshest write.
// Output is ordered by enqueue time, with the normalized text as a total
// tie-break.
func AggregateMemories(ops []Operation) []MemoryRecord {
	type slot struct {
		op  Operation
		key string
	}

	byKey := make(map[string]slot)
	for _, op := range ops {
		if op.Type != OpMemoryRecord || op.Memory == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(op.Memory.Text))
		if key == "" {
			continue
		}
		prev, ok := byKey[key]
		if !ok || !op.QueuedAt.Before(prev.op.QueuedAt) {
			byKey[key] = slot{op: op, key: key}
		}
	}

	slots := make([]slot, 0, len(byKey))
	for _, s := range byKey {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].op.QueuedAt.Equal(slots[j].op.QueuedAt) {
			return slots[i].op.QueuedAt.Before(slots[j].op.QueuedAt)
		}
		return slots[i].key < slots[j].key
	})

	records := make([]MemoryRecord, 0, len(slots))
	for _, s := range slots {
		records = append(records, *s.op.Memory)
	}
	return records
}
