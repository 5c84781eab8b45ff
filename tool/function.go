package tool

import "context"

// FunctionHandler is a generic adapter that exposes a plain Go function as a
// Handler. It has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionHandler struct {
	name        string
	description string
	fn          func(ctx context.Context, params, identity string) (Result, error)
}

// NewFunctionHandler constructs a FunctionHandler from an explicit name,
// description and function.
//
// Example:
//
//	search := NewFunctionHandler(
//	  "searchDatabase",
//	  "Search the product database",
//	  func(ctx context.Context, params, identity string) (Result, error) {
//	    rows, err := db.Search(ctx, params)
//	    if err != nil {
//	      return Failure("Failed to search database"), nil
//	    }
//	    return Result{Success: true, Data: rows, Message: fmt.Sprintf("Found %d results", len(rows))}, nil
//	  },
//	)
func NewFunctionHandler(
	name, description string,
	fn func(ctx context.Context, params, identity string) (Result, error),
) *FunctionHandler {
	return &FunctionHandler{name: name, description: description, fn: fn}
}

// Name returns the unique handler name used in directive routing.
func (h *FunctionHandler) Name() string { return h.name }

// Description returns the short natural language description exposed to models.
func (h *FunctionHandler) Description() string { return h.description }

// Invoke runs the wrapped function.
func (h *FunctionHandler) Invoke(ctx context.Context, params, identity string) (Result, error) {
	return h.fn(ctx, params, identity)
}
