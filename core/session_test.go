package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionState(t *testing.T) {
	s := NewSessionState("chat-1", "hint-1")
	assert.Equal(t, "chat-1", s.Identity)
	assert.Equal(t, "hint-1", s.Hint)
	assert.Empty(t, s.ContinuationToken)
	assert.Zero(t, s.TurnCounter)
	assert.Empty(t, s.History)
	assert.NotNil(t, s.CustomContext)
	assert.False(t, s.Created.IsZero())
}

func TestSessionStateClone(t *testing.T) {
	s := NewSessionState("chat-1", "")
	s.History = append(s.History, HistoryEntry{Role: RoleUser, Text: "hi"})
	s.CustomContext["plan"] = "pro"

	clone := s.Clone()
	clone.History[0].Text = "changed"
	clone.History = append(clone.History, HistoryEntry{Role: RoleAssistant, Text: "yo"})
	clone.CustomContext["plan"] = "free"

	assert.Equal(t, "hi", s.History[0].Text)
	assert.Len(t, s.History, 1)
	assert.Equal(t, "pro", s.CustomContext["plan"])
}

func TestNewIDUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
