package recovery

import (
	"fmt"
	"strings"

	"github.com/orkhq/ork/internal/memqueue"
)

// renderQueue turns the raw operations of one queue into its labeled replay
// section. Empty aggregation renders to an empty string so silent queues add
// nothing to the combined message.
func renderQueue(kind memqueue.Kind, ops []memqueue.Operation) string {
	switch kind {
	case memqueue.KindGraph:
		return renderGraphSection(memqueue.AggregateGraph(ops))
	case memqueue.KindMemory:
		return renderMemorySection(memqueue.AggregateMemories(ops))
	default:
		return ""
	}
}

func renderGraphSection(agg *memqueue.AggregatedGraph) string {
	if agg.Empty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Pending knowledge-graph operations\n\n")
	b.WriteString("Replay these against the graph backend:\n")

	if len(agg.Entities) > 0 {
		b.WriteString("\ncreate_entities:\n")
		for _, e := range agg.Entities {
			if e.EntityType != "" {
				fmt.Fprintf(&b, "  - %s (%s)\n", e.Name, e.EntityType)
			} else {
				fmt.Fprintf(&b, "  - %s\n", e.Name)
			}
			for _, obs := range e.Observations {
				fmt.Fprintf(&b, "      * %s\n", obs)
			}
		}
	}

	if len(agg.Relations) > 0 {
		b.WriteString("\ncreate_relations:\n")
		for _, r := range agg.Relations {
			fmt.Fprintf(&b, "  - %s %s %s\n", r.From, r.RelationType, r.To)
		}
	}

	if len(agg.Observations) > 0 {
		b.WriteString("\nadd_observations:\n")
		for _, o := range agg.Observations {
			fmt.Fprintf(&b, "  - %s:\n", o.EntityName)
			for _, c := range o.Contents {
				fmt.Fprintf(&b, "      * %s\n", c)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderMemorySection(records []memqueue.MemoryRecord) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Pending memory records\n\n")
	b.WriteString("Store these in the memory backend:\n\n")
	for _, r := range records {
		fmt.Fprintf(&b, "  - %s", r.Text)
		var scope []string
		if r.UserID != "" {
			scope = append(scope, "user="+r.UserID)
		}
		if r.AgentID != "" {
			scope = append(scope, "agent="+r.AgentID)
		}
		if len(scope) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(scope, ", "))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// joinSections assembles the combined replay message. No sections means an
// empty message, which callers treat as a silent no-op.
func joinSections(sections []string) string {
	return strings.Join(sections, "\n\n")
}
