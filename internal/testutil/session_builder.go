package testutil

import (
	"fmt"

	"github.com/hupe1980/sessionmesh/core"
)

// SessionBuilder helps construct session states with fluent chaining for
// tests. Example:
//
//	state := NewSessionBuilder("user-1").Token("resp_9").Turns(5).Exchanges(5).Build()
type SessionBuilder struct {
	identity string
	hint     string
	token    string
	turns    int
	history  []core.HistoryEntry
	custom   map[string]any
}

// NewSessionBuilder creates a new builder for the given identity. Use
// chainable methods (Token, Turns, Exchange, Exchanges, Context) then call
// Build.
func NewSessionBuilder(identity string) *SessionBuilder {
	return &SessionBuilder{identity: identity}
}

// Hint sets the session hint (chainable).
func (b *SessionBuilder) Hint(hint string) *SessionBuilder {
	b.hint = hint
	return b
}

// Token sets the continuation token (chainable).
func (b *SessionBuilder) Token(token string) *SessionBuilder {
	b.token = token
	return b
}

// Turns sets the turn counter (chainable).
func (b *SessionBuilder) Turns(n int) *SessionBuilder {
	b.turns = n
	return b
}

// Exchange appends one user/assistant pair to the history (chainable).
func (b *SessionBuilder) Exchange(userText, assistantText string) *SessionBuilder {
	b.history = append(b.history,
		core.HistoryEntry{Role: core.RoleUser, Text: userText},
		core.HistoryEntry{Role: core.RoleAssistant, Text: assistantText},
	)
	return b
}

// Exchanges appends n generated user/assistant pairs ("q0"/"a0", "q1"/"a1",
// ...) to the history (chainable).
func (b *SessionBuilder) Exchanges(n int) *SessionBuilder {
	for i := 0; i < n; i++ {
		b.Exchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	return b
}

// Context sets a custom-context key/value pair (chainable).
func (b *SessionBuilder) Context(key string, val any) *SessionBuilder {
	if b.custom == nil {
		b.custom = map[string]any{}
	}
	b.custom[key] = val
	return b
}

// Build returns a *core.SessionState with the accumulated fields.
func (b *SessionBuilder) Build() *core.SessionState {
	s := core.NewSessionState(b.identity, b.hint)
	s.ContinuationToken = b.token
	s.TurnCounter = b.turns
	s.History = append(s.History, b.history...)
	if b.custom != nil {
		s.CustomContext = b.custom
	}
	return s
}

// Seed writes the built state into a store by creating the session and
// applying one update. It panics on store errors since it is test-only.
func (b *SessionBuilder) Seed(store core.SessionStore) *core.SessionState {
	s := b.Build()
	if _, err := store.GetOrCreate(s.Identity, s.Hint); err != nil {
		panic(err)
	}
	err := store.Update(s.Identity, core.SessionUpdate{
		ContinuationToken: &s.ContinuationToken,
		TurnCounter:       &s.TurnCounter,
		History:           s.History,
		CustomContext:     s.CustomContext,
	})
	if err != nil {
		panic(err)
	}
	return s
}
