// Package window implements context-window lifecycle policy: deciding when a
// running conversation must be rolled over into a fresh backend session, and
// building the bounded history seed that replaces the discarded long tail.
//
// The backend's continuation token threads state server-side with no
// user-controllable maximum; periodic rollover bounds backend-side cost and
// context growth while the bounded window approximates recent relevance.
package window

import "github.com/hupe1980/sessionmesh/core"

// DefaultPairsLimit is the number of message pairs after which a new backend
// session is created.
const DefaultPairsLimit = 6

// Manager decides rollover boundaries for a fixed context-pairs limit.
type Manager struct {
	limit int
}

// New creates a Manager. A non-positive limit falls back to DefaultPairsLimit.
func New(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultPairsLimit
	}
	return &Manager{limit: limit}
}

// Limit returns the configured context-pairs limit.
func (m *Manager) Limit() int { return m.limit }

// ShouldRollover reports whether the turn currently being processed must end
// with a rollover. turnCounter is the count of completed turns before this
// turn; the decision is evaluated before the counter is incremented, so the
// window holds exactly limit-1 completed exchanges when rollover triggers.
// That boundary is kept as-is rather than rounded to limit.
func (m *Manager) ShouldRollover(turnCounter int) bool {
	return turnCounter >= m.limit-1
}

// BuildSeed reconstructs the message window that seeds a fresh backend
// session: the last limit-1 prior exchanges (2*(limit-1) entries) from
// history, followed by the just-completed exchange. Entries with empty text
// and non-conversational roles are dropped. The result is the new session's
// entire prior context.
func (m *Manager) BuildSeed(history []core.HistoryEntry, userText, assistantText string) []core.HistoryEntry {
	conversational := make([]core.HistoryEntry, 0, len(history))
	for _, e := range history {
		if e.Role != core.RoleUser && e.Role != core.RoleAssistant {
			continue
		}
		conversational = append(conversational, e)
	}

	keep := 2 * (m.limit - 1)
	if keep < 0 {
		keep = 0
	}
	if len(conversational) > keep {
		conversational = conversational[len(conversational)-keep:]
	}

	seed := make([]core.HistoryEntry, 0, len(conversational)+2)
	for _, e := range conversational {
		if e.Text == "" {
			continue
		}
		seed = append(seed, e)
	}
	if userText != "" {
		seed = append(seed, core.HistoryEntry{Role: core.RoleUser, Text: userText})
	}
	if assistantText != "" {
		seed = append(seed, core.HistoryEntry{Role: core.RoleAssistant, Text: assistantText})
	}
	return seed
}
