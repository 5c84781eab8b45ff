package tool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/sessionmesh/logging"
)

// Registry maps tool names to handlers and wraps invocation with uniform
// failure normalization: an unknown tool, a handler error and a handler panic
// all yield a Result with Success=false instead of an error, so the
// orchestrator can always branch on the Result alone.
//
// Registration and lookup are safe for concurrent use from arbitrary
// goroutines; no global lock is held during a handler's execution.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logging.Logger
}

// NewRegistry constructs an empty Registry. A nil logger defaults to NoOp.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{handlers: make(map[string]Handler), logger: logger}
}

// Register adds or replaces a handler under its name.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered handler names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Invoke executes the directive's handler. Empty directive parameters default
// to fallbackParams (the original user message). The returned Result is
// always usable; failures never surface as errors from this method.
func (r *Registry) Invoke(ctx context.Context, d *Directive, fallbackParams, identity string) Result {
	params := d.RawParameters
	if params == "" {
		params = fallbackParams
	}

	h, ok := r.Lookup(d.ToolName)
	if !ok {
		r.logger.Warn("tool.invoke.unknown", "tool", d.ToolName, "identity", identity)
		return Failure(fmt.Sprintf("Tool %q is not available", d.ToolName))
	}

	r.logger.Debug("tool.invoke.start", "tool", d.ToolName, "identity", identity, "params", params)
	start := time.Now()

	result := r.safeInvoke(ctx, h, params, identity)
	if result.Success {
		r.logger.Info("tool.invoke.success", "tool", d.ToolName, "identity", identity, "duration_ms", time.Since(start).Milliseconds())
	} else {
		r.logger.Warn("tool.invoke.failed", "tool", d.ToolName, "identity", identity, "message", result.Message)
	}
	return result
}

// safeInvoke shields the orchestrator from handler panics. Handler errors and
// panics are normalized through HandlerError before folding into the Result.
func (r *Registry) safeInvoke(ctx context.Context, h Handler, params, identity string) (result Result) {
	defer func() {
		if rec := recover(); rec != nil {
			herr := NewHandlerError(h.Name(), fmt.Sprintf("panic: %v", rec))
			r.logger.Error("tool.invoke.panic", "tool", h.Name(), "error", herr.Error())
			result = handlerFailure(herr)
		}
	}()

	res, err := h.Invoke(ctx, params, identity)
	if err != nil {
		return handlerFailure(NewHandlerError(h.Name(), err.Error()))
	}
	return res
}

// handlerFailure folds a typed handler error into the uniform Result shape.
func handlerFailure(err *HandlerError) Result {
	return Failure(fmt.Sprintf("Tool execution failed: %s", err.Message))
}
