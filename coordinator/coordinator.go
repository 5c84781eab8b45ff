package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/sessionmesh/backend"
	"github.com/hupe1980/sessionmesh/core"
	"github.com/hupe1980/sessionmesh/guard"
	"github.com/hupe1980/sessionmesh/logging"
	"github.com/hupe1980/sessionmesh/session"
	"github.com/hupe1980/sessionmesh/tool"
	"github.com/hupe1980/sessionmesh/window"
)

// ApologyText is the fixed graceful answer returned when a requested tool
// fails. The conversation continues; the failure is not surfaced as an error.
const ApologyText = "I encountered an error while processing your request. Please try again."

// Request is one inbound message tagged with its conversation identity.
type Request struct {
	// Identity is the stable key for one user / conversation thread.
	// Must not be empty.
	Identity string
	// Message is the user's message text.
	Message string
	// SessionHint seeds session creation for identities seen first here.
	SessionHint string
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Model names the backend model for every call.
	Model string
	// MaxOutputTokens bounds each generated answer.
	MaxOutputTokens int64
	// ContextPairs is the number of message pairs per backend session
	// before rollover.
	ContextPairs int
	// SystemPrompt is the base developer instruction; enhanced per request
	// with session context and a recent-history summary.
	SystemPrompt string
	// SessionStore persists per-identity session state.
	SessionStore core.SessionStore
	// Registry resolves TOOL_CALL directives to handlers.
	Registry *tool.Registry
	// Guard provides per-identity mutual exclusion.
	Guard *guard.Guard
	// Logger receives structured orchestration logs.
	Logger logging.Logger
	// Recorder optionally receives turn records. Delivery is decoupled from
	// the request path and never blocks it.
	Recorder core.TurnRecorder
	// RecorderBuffer sizes the async recorder channel.
	RecorderBuffer int
	// MaxConcurrent caps parallel runs in DispatchAll. Zero means no cap.
	MaxConcurrent int
}

// Coordinator drives the per-request turn lifecycle against the backend
// transport. Public methods are safe for concurrent use; requests for
// distinct identities proceed in parallel while requests for one identity
// are serialized by rejection, never by queueing.
type Coordinator struct {
	backend  backend.Backend
	store    core.SessionStore
	registry *tool.Registry
	guard    *guard.Guard
	window   *window.Manager
	logger   logging.Logger
	recorder *core.AsyncRecorder

	model         string
	maxTokens     int64
	systemPrompt  string
	maxConcurrent int
}

// New constructs a Coordinator with optional overrides. Any unset dependency
// is initialized with an in-memory default.
func New(b backend.Backend, optFns ...func(o *Options)) *Coordinator {
	opts := Options{
		Model:           "gpt-4o-mini",
		MaxOutputTokens: 4000,
		ContextPairs:    window.DefaultPairsLimit,
		SessionStore:    session.NewInMemoryStore(),
		Guard:           guard.New(),
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry(opts.Logger)
	}

	c := &Coordinator{
		backend:       b,
		store:         opts.SessionStore,
		registry:      opts.Registry,
		guard:         opts.Guard,
		window:        window.New(opts.ContextPairs),
		logger:        opts.Logger,
		model:         opts.Model,
		maxTokens:     opts.MaxOutputTokens,
		systemPrompt:  opts.SystemPrompt,
		maxConcurrent: opts.MaxConcurrent,
	}
	if opts.Recorder != nil {
		c.recorder = core.NewAsyncRecorder(opts.Recorder, opts.RecorderBuffer)
	}
	return c
}

// Registry returns the tool registry so callers can register handlers.
func (c *Coordinator) Registry() *tool.Registry { return c.registry }

// Guard returns the concurrency guard, e.g. for wiring the idle reaper.
func (c *Coordinator) Guard() *guard.Guard { return c.guard }

// Close flushes and stops the async turn recorder. In-flight requests are
// not cancelled.
func (c *Coordinator) Close() {
	if c.recorder != nil {
		c.recorder.Close()
	}
}

// Process runs one complete turn for the request's identity and returns the
// final answer text.
//
// Error semantics:
//   - core.ErrBusy: a request for the identity is already in flight; no
//     session state was touched.
//   - core.ErrEmptyResponse / *core.TransportError: the turn failed without
//     partial persistence.
//   - *core.StoreError: the answer was computed but persisting the session
//     failed; the answer is returned alongside the error.
//
// The concurrency slot is released on every exit path.
func (c *Coordinator) Process(ctx context.Context, req Request) (string, error) {
	if req.Identity == "" {
		return "", errors.New("identity must not be empty")
	}

	if !c.guard.TryAcquire(req.Identity) {
		c.logger.Debug("request rejected, identity busy", "identity", req.Identity)
		return "", fmt.Errorf("%s: %w", req.Identity, core.ErrBusy)
	}
	defer c.guard.Release(req.Identity)

	correlationID := core.NewID()
	c.logger.Info("request started", "identity", req.Identity, "correlation_id", correlationID)

	state, err := c.store.GetOrCreate(req.Identity, req.SessionHint)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	// The rollover decision uses the pre-call counter; the counter only
	// advances when this turn persists.
	counter := state.TurnCounter
	rolloverAfter := c.window.ShouldRollover(counter)
	prevToken := state.ContinuationToken

	instructions := BuildInstructions(c.systemPrompt, c.registry, state)
	input := []backend.Message{
		{Role: core.RoleDeveloper, Content: instructions},
		{Role: core.RoleUser, Content: req.Message},
	}

	first, err := c.call(ctx, "create", req.Identity, correlationID, input, prevToken)
	if err != nil {
		return "", err
	}
	if first.OutputText == "" {
		return "", fmt.Errorf("%s: %w", req.Identity, core.ErrEmptyResponse)
	}

	answer := first.OutputText
	lastID := first.ID

	if d := tool.ExtractDirective(first.OutputText); d != nil {
		answer, lastID, err = c.runToolDetour(ctx, req, correlationID, instructions, d, first.ID)
		if err != nil {
			return "", err
		}
	}

	if rolloverAfter {
		return c.persistRollover(ctx, req, correlationID, instructions, state, counter, answer)
	}
	return c.persistContinuation(req.Identity, state, counter, req.Message, answer, lastID)
}

// runToolDetour executes the requested tool and, on success, issues the
// follow-up backend call that folds the result into a natural answer. A
// failed tool short-circuits to the fixed apology without a second call.
func (c *Coordinator) runToolDetour(
	ctx context.Context,
	req Request,
	correlationID string,
	instructions string,
	d *tool.Directive,
	firstID string,
) (string, string, error) {
	start := time.Now()
	result := c.registry.Invoke(ctx, d, req.Message, req.Identity)
	c.logger.Info("tool detour completed",
		"identity", req.Identity,
		"tool", d.ToolName,
		"success", result.Success,
		"duration", time.Since(start),
	)

	if !result.Success {
		return ApologyText, firstID, nil
	}

	followup := []backend.Message{
		{Role: core.RoleDeveloper, Content: tool.RenderProcessingInstructions(instructions, d.ToolName)},
		{Role: core.RoleUser, Content: req.Message},
		{Role: core.RoleAssistant, Content: d.Raw},
		{Role: core.RoleUser, Content: tool.RenderResultFollowup(result)},
	}
	second, err := c.call(ctx, "tool_followup", req.Identity, correlationID, followup, firstID)
	if err != nil {
		return "", "", err
	}

	answer := second.OutputText
	if answer == "" {
		answer = result.Message
	}
	return answer, second.ID, nil
}

// persistRollover seeds a fresh backend session from the bounded history
// window and stores the new token with a reset counter. Token and counter
// land in one update so neither can be observed ahead of the other.
func (c *Coordinator) persistRollover(
	ctx context.Context,
	req Request,
	correlationID string,
	instructions string,
	state *core.SessionState,
	counter int,
	answer string,
) (string, error) {
	seed := c.window.BuildSeed(state.History, req.Message, answer)

	input := make([]backend.Message, 0, len(seed)+1)
	input = append(input, backend.Message{
		Role:    core.RoleDeveloper,
		Content: instructions + "\n\nCONTEXT: Continuing from recent conversation.",
	})
	for _, e := range seed {
		input = append(input, backend.Message{Role: e.Role, Content: e.Text})
	}

	fresh, err := c.call(ctx, "rollover", req.Identity, correlationID, input, "")
	if err != nil {
		return "", err
	}

	zero := 0
	update := core.SessionUpdate{
		ContinuationToken: &fresh.ID,
		TurnCounter:       &zero,
		History:           seed,
	}
	if err := c.store.Update(req.Identity, update); err != nil {
		return answer, &core.StoreError{Identity: req.Identity, Err: err}
	}

	c.logger.Info("session rolled over",
		"identity", req.Identity,
		"correlation_id", correlationID,
		"completed_turns", counter,
		"seed_entries", len(seed),
		"new_continuation_token", fresh.ID,
	)
	return answer, nil
}

// persistContinuation advances the counter and saves the latest response ID
// as the next turn's continuation token.
func (c *Coordinator) persistContinuation(
	identity string,
	state *core.SessionState,
	counter int,
	userText, answer, lastID string,
) (string, error) {
	next := counter + 1
	history := append(append([]core.HistoryEntry(nil), state.History...),
		core.HistoryEntry{Role: core.RoleUser, Text: userText},
		core.HistoryEntry{Role: core.RoleAssistant, Text: answer},
	)
	update := core.SessionUpdate{
		ContinuationToken: &lastID,
		TurnCounter:       &next,
		History:           history,
	}
	if err := c.store.Update(identity, update); err != nil {
		return answer, &core.StoreError{Identity: identity, Err: err}
	}
	return answer, nil
}

// call issues one backend request, emitting sent/received turn records and
// wrapping transport failures into the shared taxonomy.
func (c *Coordinator) call(
	ctx context.Context,
	op string,
	identity, correlationID string,
	input []backend.Message,
	prevToken string,
) (*backend.Response, error) {
	payload, _ := json.Marshal(input)
	c.record(core.TurnRecord{
		Time:                    time.Now().UTC(),
		Identity:                identity,
		CorrelationID:           correlationID,
		Direction:               core.TurnSent,
		ContinuationTokenBefore: prevToken,
		Payload:                 string(payload),
	})

	start := time.Now()
	resp, err := c.backend.Create(ctx, backend.Request{
		Model:              c.model,
		Input:              input,
		PreviousResponseID: prevToken,
		MaxOutputTokens:    c.maxTokens,
	})
	if err != nil {
		c.logger.Error("backend call failed",
			"op", op,
			"identity", identity,
			"correlation_id", correlationID,
			"error", err,
		)
		var te *core.TransportError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, &core.TransportError{Op: op, Err: err}
	}

	c.logger.Debug("backend call completed",
		"op", op,
		"identity", identity,
		"correlation_id", correlationID,
		"duration", time.Since(start),
		"response_id", resp.ID,
	)
	c.record(core.TurnRecord{
		Time:                    time.Now().UTC(),
		Identity:                identity,
		CorrelationID:           correlationID,
		Direction:               core.TurnReceived,
		ContinuationTokenBefore: prevToken,
		Payload:                 resp.OutputText,
		ContinuationTokenAfter:  resp.ID,
	})
	return resp, nil
}

func (c *Coordinator) record(rec core.TurnRecord) {
	if c.recorder == nil {
		return
	}
	c.recorder.Record(rec)
}
