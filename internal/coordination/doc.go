// Package coordination provides exclusive, time-bounded write access to paths
// shared by several independent ork sessions operating on one project.
//
// When multiple editor/CLI sessions run against the same project directory,
// they may attempt to modify the same file simultaneously. The coordination
// package prevents this with advisory path locks persisted in a single shared
// snapshot file, so that cooperation survives process boundaries and crashes.
//
// # Architecture
//
// The [Store] persists the full set of held locks as one JSON snapshot under
// the coordination directory:
//
//	.ork/coordination/
//	    locks.json        -- current lock snapshot
//	    coordination.lock -- flock sentinel guarding read-modify-write cycles
//	    coordination.log  -- structured log
//
// All snapshot writes go through a write-to-temporary-then-rename cycle so a
// reader never observes a partial file. The [Manager] implements the acquire
// protocol on top of the store: every call loads the snapshot, evicts expired
// locks, decides, and persists; no lock state is ever cached across calls.
//
// # Lock Lifecycle
//
// There is no release operation. A lock is created by a granted Acquire,
// refreshed by a repeated Acquire from the same holder, and removed only by
// TTL expiry on a later call's eviction pass. Relying on expiry rather than
// explicit unlock means a crashed holder can never deadlock the project;
// the cost is that another holder may have to wait out the TTL.
//
// # Opt-In
//
// The entire subsystem is inert unless the coordination directory exists.
// Absence of the directory means multi-instance coordination is not enabled
// for the project, and Acquire permits everything without touching the disk.
//
// # Basic Usage
//
//	mgr := coordination.NewManager(projectRoot, coordDir)
//
//	grant, denial, err := mgr.Acquire("src/app.ts", coordination.LockFile,
//	    holderID, "editing handler", 5*time.Minute)
//	switch {
//	case err != nil:
//	    // persistence failed; caller decides strict vs permissive
//	case denial != nil:
//	    // blocked by denial.Conflict
//	default:
//	    _ = grant // proceed with the write
//	}
package coordination
