package session

import (
	"sync"
	"time"

	"github.com/hupe1980/sessionmesh/core"
)

// InMemoryStore is a volatile core.SessionStore implementation keeping
// sessions in a process local map. It is safe for concurrent access and best
// suited for tests or ephemeral demo bots. Each returned session is cloned to
// prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.SessionState
}

// NewInMemoryStore constructs an empty in‑memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.SessionState)}
}

// GetOrCreate returns an existing session (clone) or creates a new one lazily
// seeded with the given hint.
func (s *InMemoryStore) GetOrCreate(identity, hint string) (*core.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[identity]; ok {
		return sess.Clone(), nil
	}
	sess := core.NewSessionState(identity, hint)
	s.sessions[identity] = sess
	return sess.Clone(), nil
}

// Update merges the non-nil fields of update into the stored session. The
// session is created on the fly if it does not exist yet.
func (s *InMemoryStore) Update(identity string, update core.SessionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[identity]
	if !ok {
		sess = core.NewSessionState(identity, "")
		s.sessions[identity] = sess
	}
	if update.ContinuationToken != nil {
		sess.ContinuationToken = *update.ContinuationToken
	}
	if update.TurnCounter != nil {
		sess.TurnCounter = *update.TurnCounter
	}
	if update.History != nil {
		sess.History = make([]core.HistoryEntry, len(update.History))
		copy(sess.History, update.History)
	}
	if update.CustomContext != nil {
		for k, v := range update.CustomContext {
			sess.CustomContext[k] = v
		}
	}
	sess.Updated = time.Now().UTC()
	return nil
}

// Len reports the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
