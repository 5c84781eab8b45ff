// Package coordinator implements the orchestration core of SessionMesh.
//
// The Coordinator owns the per-identity turn lifecycle: it acquires the
// identity's concurrency slot, loads session state, decides between the
// normal-continuation, rollover and tool-detour paths, drives the backend
// transport and persists the updated continuation token and turn counter.
//
// # Responsibilities (abridged)
//   - Per-request state machine (acquire → load → call → detour/answer → persist)
//   - Context-window rollover with bounded history reseeding
//   - TOOL_CALL directive dispatch and result re-injection
//   - Guaranteed guard release on every exit path
//   - Parallel fan-out over independent identities with all-settled semantics
//
// See coordinator.go for the operational implementation details.
package coordinator
