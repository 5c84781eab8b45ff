package core

import "time"

// HistoryEntry is one user or assistant message retained in a session's
// bounded conversation history.
type HistoryEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// SessionState is the durable per-identity conversation record.
//
// Contract:
//   - ContinuationToken is the opaque backend handle for "continue from the
//     prior turn"; empty means the next call starts a fresh backend session.
//   - TurnCounter counts completed turns since the last rollover.
//   - History is append-only between rollovers and truncated to the seed
//     window when a rollover happens.
//   - ContinuationToken and TurnCounter are always persisted together in a
//     single Update so neither can be observed ahead of the other.
//
// The coordinator is the sole mutator of a session while a request for its
// identity is in flight; the concurrency guard enforces that exclusivity, so
// SessionState itself carries no lock.
type SessionState struct {
	Identity          string         `json:"identity"`
	Hint              string         `json:"hint,omitempty"`
	ContinuationToken string         `json:"continuation_token,omitempty"`
	TurnCounter       int            `json:"turn_counter"`
	History           []HistoryEntry `json:"history,omitempty"`
	CustomContext     map[string]any `json:"custom_context,omitempty"`
	Created           time.Time      `json:"created"`
	Updated           time.Time      `json:"updated"`
}

// NewSessionState creates a fresh session for the given identity.
func NewSessionState(identity, hint string) *SessionState {
	now := time.Now().UTC()
	return &SessionState{
		Identity:      identity,
		Hint:          hint,
		CustomContext: map[string]any{},
		Created:       now,
		Updated:       now,
	}
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *SessionState) Clone() *SessionState {
	clone := *s
	clone.History = make([]HistoryEntry, len(s.History))
	copy(clone.History, s.History)
	clone.CustomContext = make(map[string]any, len(s.CustomContext))
	for k, v := range s.CustomContext {
		clone.CustomContext[k] = v
	}
	return &clone
}

// SessionUpdate is a partial write against a stored session. Nil pointer and
// nil slice/map fields are left unchanged by the store.
type SessionUpdate struct {
	ContinuationToken *string
	TurnCounter       *int
	History           []HistoryEntry
	CustomContext     map[string]any
}

// SessionStore persists sessions keyed by identity.
//
// Implementations need not provide their own per-identity locking: the
// orchestration layer guarantees at most one writer per identity at a time.
type SessionStore interface {
	// GetOrCreate returns the existing session for identity or lazily
	// creates one seeded with the given hint.
	GetOrCreate(identity, hint string) (*SessionState, error)

	// Update applies a partial update to the session for identity.
	Update(identity string, update SessionUpdate) error
}
