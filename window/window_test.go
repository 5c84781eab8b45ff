package window

import (
	"fmt"
	"testing"

	"github.com/hupe1980/sessionmesh/core"
	"github.com/stretchr/testify/assert"
)

func TestShouldRolloverBoundary(t *testing.T) {
	m := New(6)

	// The trigger fires one exchange short of the limit (counter >= limit-1,
	// evaluated before the counter increments). The boundary is asserted
	// exactly as implemented; see the manager docs.
	tests := []struct {
		counter int
		want    bool
	}{
		{0, false},
		{3, false},
		{4, false},
		{5, true},
		{6, true},
		{7, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("counter=%d", tt.counter), func(t *testing.T) {
			assert.Equal(t, tt.want, m.ShouldRollover(tt.counter))
		})
	}
}

func TestShouldRolloverDefaultsLimit(t *testing.T) {
	m := New(0)
	assert.Equal(t, DefaultPairsLimit, m.Limit())
	assert.False(t, m.ShouldRollover(DefaultPairsLimit-2))
	assert.True(t, m.ShouldRollover(DefaultPairsLimit-1))
}

func pairs(n int) []core.HistoryEntry {
	var out []core.HistoryEntry
	for i := 0; i < n; i++ {
		out = append(out,
			core.HistoryEntry{Role: core.RoleUser, Text: fmt.Sprintf("q%d", i)},
			core.HistoryEntry{Role: core.RoleAssistant, Text: fmt.Sprintf("a%d", i)},
		)
	}
	return out
}

func TestBuildSeedBounds(t *testing.T) {
	m := New(6)

	seed := m.BuildSeed(pairs(20), "current question", "current answer")

	// Never more than 2*(limit-1)+2 entries.
	assert.LessOrEqual(t, len(seed), 2*(m.Limit()-1)+2)
	assert.Len(t, seed, 12)

	// The last two entries are always the just-completed exchange.
	assert.Equal(t, core.HistoryEntry{Role: core.RoleUser, Text: "current question"}, seed[len(seed)-2])
	assert.Equal(t, core.HistoryEntry{Role: core.RoleAssistant, Text: "current answer"}, seed[len(seed)-1])

	// The retained prefix is the most recent tail of history.
	assert.Equal(t, "q15", seed[0].Text)
}

func TestBuildSeedShortHistory(t *testing.T) {
	m := New(6)
	seed := m.BuildSeed(pairs(2), "q", "a")
	assert.Len(t, seed, 6)
	assert.Equal(t, "q0", seed[0].Text)
}

func TestBuildSeedFiltersEmptyAndForeignRoles(t *testing.T) {
	m := New(6)
	history := []core.HistoryEntry{
		{Role: core.RoleUser, Text: "keep me"},
		{Role: core.RoleAssistant, Text: ""},
		{Role: core.RoleDeveloper, Text: "instructions"},
		{Role: core.RoleAssistant, Text: "also keep"},
	}

	seed := m.BuildSeed(history, "q", "a")
	assert.Equal(t, []core.HistoryEntry{
		{Role: core.RoleUser, Text: "keep me"},
		{Role: core.RoleAssistant, Text: "also keep"},
		{Role: core.RoleUser, Text: "q"},
		{Role: core.RoleAssistant, Text: "a"},
	}, seed)
}

func TestBuildSeedEmptyHistory(t *testing.T) {
	m := New(6)
	seed := m.BuildSeed(nil, "q", "a")
	assert.Equal(t, []core.HistoryEntry{
		{Role: core.RoleUser, Text: "q"},
		{Role: core.RoleAssistant, Text: "a"},
	}, seed)
}
