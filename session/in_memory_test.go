package session

import (
	"testing"

	"github.com/hupe1980/sessionmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreGetOrCreate(t *testing.T) {
	store := NewInMemoryStore()

	first, err := store.GetOrCreate("chat-1", "hint-a")
	require.NoError(t, err)
	assert.Equal(t, "chat-1", first.Identity)
	assert.Equal(t, "hint-a", first.Hint)

	// Second lookup returns the same session; the hint of the first
	// creation sticks.
	second, err := store.GetOrCreate("chat-1", "hint-b")
	require.NoError(t, err)
	assert.Equal(t, "hint-a", second.Hint)
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryStoreUpdatePartial(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.GetOrCreate("chat-1", "")
	require.NoError(t, err)

	token := "resp_123"
	counter := 3
	err = store.Update("chat-1", core.SessionUpdate{
		ContinuationToken: &token,
		TurnCounter:       &counter,
		History: []core.HistoryEntry{
			{Role: core.RoleUser, Text: "hi"},
			{Role: core.RoleAssistant, Text: "hello"},
		},
	})
	require.NoError(t, err)

	got, err := store.GetOrCreate("chat-1", "")
	require.NoError(t, err)
	assert.Equal(t, "resp_123", got.ContinuationToken)
	assert.Equal(t, 3, got.TurnCounter)
	assert.Len(t, got.History, 2)

	// Nil fields leave existing values untouched.
	err = store.Update("chat-1", core.SessionUpdate{CustomContext: map[string]any{"plan": "pro"}})
	require.NoError(t, err)

	got, err = store.GetOrCreate("chat-1", "")
	require.NoError(t, err)
	assert.Equal(t, "resp_123", got.ContinuationToken)
	assert.Equal(t, 3, got.TurnCounter)
	assert.Equal(t, "pro", got.CustomContext["plan"])
}

func TestInMemoryStoreReturnsClones(t *testing.T) {
	store := NewInMemoryStore()
	first, err := store.GetOrCreate("chat-1", "")
	require.NoError(t, err)

	first.History = append(first.History, core.HistoryEntry{Role: core.RoleUser, Text: "mutated"})
	first.CustomContext["x"] = 1

	fresh, err := store.GetOrCreate("chat-1", "")
	require.NoError(t, err)
	assert.Empty(t, fresh.History)
	assert.NotContains(t, fresh.CustomContext, "x")
}

func TestInMemoryStoreUpdateCreatesLazily(t *testing.T) {
	store := NewInMemoryStore()
	counter := 1
	err := store.Update("chat-9", core.SessionUpdate{TurnCounter: &counter})
	require.NoError(t, err)

	got, err := store.GetOrCreate("chat-9", "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TurnCounter)
}
