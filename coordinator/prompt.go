package coordinator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/sessionmesh/core"
	"github.com/hupe1980/sessionmesh/tool"
)

// recentInteractions is how many prior user messages the instruction summary
// carries.
const recentInteractions = 3

// DefaultSystemPrompt renders a baseline system prompt advertising the
// registered tools and the TOOL_CALL protocol. Applications normally supply
// their own prompt via Options.SystemPrompt; this default keeps demos and
// tests self-contained.
func DefaultSystemPrompt(reg *tool.Registry) string {
	var sb strings.Builder
	sb.WriteString("# ROLE: Conversational assistant\n\n")
	sb.WriteString("You answer user messages helpfully and concisely.\n\n")
	sb.WriteString("# TOOLS & INSTRUCTIONS:\n")
	sb.WriteString("You have access to the following tools. To use a tool, respond EXACTLY with:\n")
	sb.WriteString(tool.DirectiveMarker + "tool_name:parameters\n\nAvailable tools:\n")
	for _, name := range reg.Names() {
		h, _ := reg.Lookup(name)
		desc := ""
		if h != nil {
			desc = h.Description()
		}
		fmt.Fprintf(&sb, "- %s - %s\n", name, desc)
	}
	return sb.String()
}

// BuildInstructions enhances the base system prompt with the session's custom
// context and a short summary of recent interactions, and reiterates the tool
// directive format.
func BuildInstructions(systemPrompt string, reg *tool.Registry, state *core.SessionState) string {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt(reg)
	}

	contextInfo := "CURRENT CONTEXT: No specific context available."
	if len(state.CustomContext) > 0 {
		if data, err := json.MarshalIndent(state.CustomContext, "", "  "); err == nil {
			contextInfo = "CURRENT SESSION DATA: " + string(data)
		}
	}

	historyInfo := ""
	if recent := recentUserMessages(state.History, recentInteractions); len(recent) > 0 {
		historyInfo = "\nRECENT INTERACTIONS: " + strings.Join(recent, " -> ")
	}

	return fmt.Sprintf(`%s

# CURRENT SESSION CONTEXT:
%s%s

# TOOL USAGE REMINDER:
- Call tools EXACTLY: %stool_name:parameters
- Wait for tool results before continuing
- Format tool responses appropriately`,
		systemPrompt, contextInfo, historyInfo, tool.DirectiveMarker)
}

// recentUserMessages returns up to n most recent non-empty user texts in
// chronological order.
func recentUserMessages(history []core.HistoryEntry, n int) []string {
	var out []string
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		e := history[i]
		if e.Role != core.RoleUser || e.Text == "" {
			continue
		}
		out = append(out, e.Text)
	}
	// Reverse back into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
