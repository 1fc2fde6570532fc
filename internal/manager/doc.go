// Package manager owns the backend lifecycle: loading, caching, and
// evicting backend handles under a memory and concurrency budget. It is
// structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, status/getters.
//   - config.go: ManagerConfig; NewWithConfig applies defaults.
//   - types.go: internal state types (State, handle).
//   - errors.go: error types and helpers (IsLoadFailure, IsBudgetExceeded).
//   - acquire.go: Acquire/Release, single-flight load coordination, Lease.
//   - load.go: the bounded-retry load attempt.
//   - evict.go: victim scoring and eviction, GCTick sweep loop.
//   - failures.go: invocation failure bookkeeping for routing cool-down.
//   - events.go: lifecycle event publishing (fire-and-forget).
//   - eventpub_memory.go: in-memory publisher for tests.
//
// The handle map, aggregate memory counter, and scoring state form the one
// piece of shared mutable state; a single mutex protects them. Backend
// Load and Invoke calls always run outside that lock.
//
// External packages should treat this package as the lifecycle layer and
// use public methods only (NewWithConfig, Acquire, GCTick, NoteFailure,
// Status, Close). Internal types are subject to change.
package manager
