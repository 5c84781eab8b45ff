// Package core provides the foundational domain types and interfaces used by
// SessionMesh. It defines the core abstractions for:
//
//   - Identities (stable keys for one user / conversation thread)
//   - Session state (continuation token, turn counter, bounded history)
//   - Turn records (observability snapshots of backend traffic)
//   - The error taxonomy shared by all orchestration layers
//   - Pluggable stores for session persistence and turn recording
//
// The package intentionally keeps implementation concerns (persistence,
// transport adapters, orchestration) out of scope, exposing small interfaces
// to enable custom backends and extensions.
package core
