// Package orchestrator is the public entry point of the routing core. It
// ties classification, routing, and the backend lifecycle together: a
// request is classified by the always-resident main brain, routed to a
// specialized backend or back to the main brain, invoked, and accounted.
//
// Files by concern:
//
//   - orchestrator.go: Orchestrator type, Handle, the fallback path.
//   - classifier.go: main-brain classification and the keyword fallback.
//   - router.go: the capability/confidence routing decision.
//   - counters.go: shared request counters (atomic).
//   - sessions.go: per-session usage tracking.
//   - status.go: status projection for the reporting layer.
//   - errors.go: error taxonomy kinds and predicates.
package orchestrator
