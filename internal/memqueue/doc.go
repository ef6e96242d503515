// Package memqueue provides durable, replay-safe accumulation of deferred
// memory operations for ork sessions.
//
// When a session cannot reach its authoritative memory backend (the knowledge
// graph or the semantic memory service), write operations are appended to a
// local queue instead of failing. At the start of the next session the
// recovery orchestrator drains these queues and either replays or archives
// them.
//
// # Architecture
//
// Operations are persisted under the memory directory using an append-only
// JSONL (JSON Lines) format, one stream per queue kind, plus an archive
// subdirectory for streams judged too stale to replay:
//
//	.ork/memory/
//	    graph-queue.jsonl   -- deferred knowledge-graph mutations
//	    memory-queue.jsonl  -- deferred semantic memory records
//	    archive/            -- timestamp-prefixed copies of stale streams
//
// # Main Types
//
//   - [Operation]: a single pending mutation with a tagged payload
//   - [Kind]: enumeration of the queue kinds (graph, memory)
//   - [Store]: append-only file storage with per-record atomic writes
//   - [AggregatedGraph]: the deduplicated replay set for a graph queue
//
// # Thread Safety
//
// The [Store] is safe for concurrent use within a single process via an
// internal mutex. Across processes, each append is a single O_APPEND write of
// one complete line, so concurrent appenders interleave at the record level
// without corruption. Queues never block on the path-lock namespace.
package memqueue
