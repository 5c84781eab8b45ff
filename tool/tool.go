// Package tool implements the tool calling subsystem that lets conversations
// invoke side-effecting capabilities (APIs, computations, lookups) signalled
// through a textual directive embedded in model output, with consistent
// failure normalization so the orchestrator never needs to special-case tool
// execution errors.
package tool

import (
	"context"
	"fmt"
)

// Result is the uniform outcome of a tool invocation. Success=false is a
// normal value the orchestrator branches on, never an exception path.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failure builds a failed Result with the given message.
func Failure(message string) Result {
	return Result{Success: false, Message: message}
}

// Handler is a named side-effecting capability that models can request via
// the TOOL_CALL directive protocol.
//
// Handler implementations should:
//   - Provide clear, descriptive names (camelCase, matching the names the
//     system prompt advertises to the model)
//   - Handle their own domain errors and return them inside Result where a
//     graceful conversational recovery is possible
//   - Be safe for concurrent use; invocations for different identities can
//     run in parallel
type Handler interface {
	// Name returns the unique identifier for this handler.
	Name() string

	// Description returns a human-readable description of what this handler
	// does. It is surfaced to the model through the system prompt.
	Description() string

	// Invoke executes the handler. params is the raw parameter string from
	// the directive (already defaulted to the original user message when the
	// directive carried none); identity routes side effects back to the
	// correct conversation.
	Invoke(ctx context.Context, params, identity string) (Result, error)
}

// HandlerError represents errors that occur during handler execution.
type HandlerError struct {
	Tool    string `json:"tool"`    // Name of the handler that failed
	Message string `json:"message"` // Error message
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewHandlerError creates a new HandlerError with the specified details.
func NewHandlerError(tool, message string) *HandlerError {
	return &HandlerError{Tool: tool, Message: message}
}
