package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/sessionmesh/core"
	"github.com/hupe1980/sessionmesh/tool"
)

func TestDefaultSystemPromptListsTools(t *testing.T) {
	reg := tool.NewRegistry(nil)
	reg.Register(tool.NewFunctionHandler("searchDatabase", "Search the product database",
		func(context.Context, string, string) (tool.Result, error) { return tool.Result{}, nil }))

	prompt := DefaultSystemPrompt(reg)
	assert.Contains(t, prompt, "searchDatabase")
	assert.Contains(t, prompt, "Search the product database")
	assert.Contains(t, prompt, tool.DirectiveMarker)
}

func TestBuildInstructionsWithoutContext(t *testing.T) {
	state := core.NewSessionState("a1", "")
	got := BuildInstructions("Base prompt.", nil, state)
	assert.Contains(t, got, "Base prompt.")
	assert.Contains(t, got, "No specific context available")
	assert.Contains(t, got, "TOOL USAGE REMINDER")
}

func TestBuildInstructionsWithCustomContext(t *testing.T) {
	state := core.NewSessionState("a1", "")
	state.CustomContext = map[string]any{"tier": "gold"}

	got := BuildInstructions("Base prompt.", nil, state)
	assert.Contains(t, got, "CURRENT SESSION DATA")
	assert.Contains(t, got, `"tier"`)
	assert.Contains(t, got, `"gold"`)
}

func TestBuildInstructionsRecentInteractions(t *testing.T) {
	state := core.NewSessionState("a1", "")
	for _, q := range []string{"one", "two", "three", "four"} {
		state.History = append(state.History,
			core.HistoryEntry{Role: core.RoleUser, Text: q},
			core.HistoryEntry{Role: core.RoleAssistant, Text: "reply to " + q},
		)
	}

	got := BuildInstructions("Base prompt.", nil, state)
	assert.NotContains(t, got, "RECENT INTERACTIONS: one")
	assert.Contains(t, got, "two -> three -> four")
	assert.NotContains(t, got, "reply to", "assistant turns stay out of the recap")
}

func TestBuildInstructionsEmptyPromptUsesDefault(t *testing.T) {
	state := core.NewSessionState("a1", "")
	got := BuildInstructions("", tool.NewRegistry(nil), state)
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "TOOL USAGE REMINDER")
}
