package tool

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DirectiveMarker is the fixed prefix a model emits to request a tool
// invocation: TOOL_CALL:tool_name:parameters. The marker may appear anywhere
// in the output; surrounding narrative text is ignored for parsing.
const DirectiveMarker = "TOOL_CALL:"

// directivePattern matches the directive up to the end of its line.
var directivePattern = regexp.MustCompile(`TOOL_CALL:[^\n]*`)

// Directive is a parsed tool invocation request extracted from model output.
type Directive struct {
	// ToolName identifies the requested handler. A malformed directive
	// yields an empty name; the registry then fails the invocation the same
	// way as an unknown tool.
	ToolName string
	// RawParameters is the colon-joined remainder after the tool name.
	// Empty when the directive carried no parameters; the caller then
	// substitutes the original user message.
	RawParameters string
	// Raw is the exact matched substring. Re-parsing Raw yields an
	// identical Directive (extraction is idempotent on well-formed input).
	Raw string
}

// ExtractDirective scans text for the first tool invocation directive and
// returns it, or nil when none is present. The directive does not need to be
// the entire output.
func ExtractDirective(text string) *Directive {
	if !strings.Contains(text, DirectiveMarker) {
		return nil
	}
	raw := directivePattern.FindString(text)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || parts[0]+":" != DirectiveMarker {
		return nil
	}
	return &Directive{
		ToolName:      parts[1],
		RawParameters: strings.Join(parts[2:], ":"),
		Raw:           raw,
	}
}

// RenderResultFollowup produces the synthetic user-role message that feeds a
// tool result back to the model so it can turn raw data into a natural
// language answer.
func RenderResultFollowup(result Result) string {
	data, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil || result.Data == nil {
		data = []byte("{}")
	}
	return fmt.Sprintf("Tool Results: %s\n\nBased on these results, provide a helpful response to my original message.", data)
}

// RenderProcessingInstructions extends the base instructions for the
// second backend call that folds tool results into the conversation.
func RenderProcessingInstructions(baseInstructions, toolName string) string {
	return fmt.Sprintf(`%s

TOOL RESULT PROCESSING: The tool %q returned results.
Now provide a helpful response to the user based on these results.`, baseInstructions, toolName)
}
