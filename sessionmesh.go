// Package sessionmesh provides a high-level façade over the session
// coordinator and its services (session store, identity guard, tool registry
// & logging) enabling rapid construction of multi-user conversational
// systems. Most applications interact with this package by:
//  1. Creating a Mesh via New() with a backend (or NewFromConfig for YAML-driven setup)
//  2. Registering zero or more tool handlers
//  3. Sending user messages one at a time (Send) or as a concurrent batch (SendAll)
//
// The façade delegates orchestration to coordinator.Coordinator while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// session store and a structured logger.
package sessionmesh

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/sessionmesh/backend"
	anthropicbackend "github.com/hupe1980/sessionmesh/backend/anthropic"
	openaibackend "github.com/hupe1980/sessionmesh/backend/openai"
	"github.com/hupe1980/sessionmesh/config"
	"github.com/hupe1980/sessionmesh/coordinator"
	"github.com/hupe1980/sessionmesh/core"
	"github.com/hupe1980/sessionmesh/guard"
	"github.com/hupe1980/sessionmesh/logging"
	"github.com/hupe1980/sessionmesh/session"
	"github.com/hupe1980/sessionmesh/tool"
)

// Options configures the Mesh instance.
type Options struct {
	// Model names the backend model for every call.
	Model string
	// MaxOutputTokens bounds each generated answer.
	MaxOutputTokens int64
	// ContextPairs is the number of message pairs per backend session before
	// the conversation is reseeded onto a fresh one.
	ContextPairs int
	// SystemPrompt is the base instruction given to the model. Empty selects
	// a default prompt that advertises the registered tools.
	SystemPrompt string
	// MaxConcurrent caps parallel requests in SendAll. Zero means no cap.
	MaxConcurrent int

	// ReaperInterval is how often idle conversation slots are swept.
	ReaperInterval time.Duration
	// IdleTimeout is how long a conversation may sit idle before its slot
	// is reclaimed.
	IdleTimeout time.Duration

	// SessionStore persists per-identity state (defaults to in-memory).
	SessionStore core.SessionStore
	// Recorder optionally receives a record of every backend turn.
	Recorder core.TurnRecorder
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the coordinator and its services.
type Mesh struct {
	coordinator *coordinator.Coordinator
	guard       *guard.Guard
}

// New creates a new Mesh on the given backend with optional overrides. Any
// unset service is initialized with an in-memory implementation.
func New(b backend.Backend, optFns ...func(o *Options)) *Mesh {
	opts := Options{
		ReaperInterval: time.Minute,
		IdleTimeout:    5 * time.Minute,
		SessionStore:   session.NewInMemoryStore(),
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	g := guard.New()
	c := coordinator.New(b, func(o *coordinator.Options) {
		if opts.Model != "" {
			o.Model = opts.Model
		}
		if opts.MaxOutputTokens > 0 {
			o.MaxOutputTokens = opts.MaxOutputTokens
		}
		if opts.ContextPairs > 0 {
			o.ContextPairs = opts.ContextPairs
		}
		o.SystemPrompt = opts.SystemPrompt
		o.MaxConcurrent = opts.MaxConcurrent
		o.SessionStore = opts.SessionStore
		o.Recorder = opts.Recorder
		o.Logger = opts.Logger
		o.Guard = g
	})

	g.StartReaper(opts.ReaperInterval, opts.IdleTimeout)

	return &Mesh{coordinator: c, guard: g}
}

// NewFromConfig builds the backend named in cfg and wraps it in a Mesh.
// Option overrides are applied on top of the configured values.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var b backend.Backend
	switch cfg.Backend.Provider {
	case config.ProviderOpenAI:
		b = openaibackend.New(func(o *openaibackend.Options) {
			o.APIKey = cfg.Backend.APIKey
			o.BaseURL = cfg.Backend.BaseURL
		})
	case config.ProviderAnthropic:
		b = anthropicbackend.New(func(o *anthropicbackend.Options) {
			o.APIKey = cfg.Backend.APIKey
		})
	default:
		return nil, fmt.Errorf("sessionmesh: unknown backend provider %q", cfg.Backend.Provider)
	}

	return New(b, append([]func(o *Options){func(o *Options) {
		o.Model = cfg.Model
		o.MaxOutputTokens = int64(cfg.MaxOutputTokens)
		o.ContextPairs = cfg.ContextPairs
		o.SystemPrompt = cfg.SystemPrompt
		o.MaxConcurrent = cfg.MaxConcurrent
		o.ReaperInterval = cfg.Reaper.Interval
		o.IdleTimeout = cfg.Reaper.IdleTimeout
	}}, optFns...)...), nil
}

// RegisterTool makes a handler invocable through model-issued directives.
func (m *Mesh) RegisterTool(h tool.Handler) {
	m.coordinator.Registry().Register(h)
}

// Send runs one user message through the full turn lifecycle and returns the
// model's answer. Concurrent Sends for the same identity are rejected with
// core.ErrBusy; distinct identities proceed in parallel.
func (m *Mesh) Send(ctx context.Context, identity, message string) (string, error) {
	return m.coordinator.Process(ctx, coordinator.Request{Identity: identity, Message: message})
}

// SendAll processes a batch of requests concurrently and returns one outcome
// per request, in input order. Individual failures never abort the batch.
func (m *Mesh) SendAll(ctx context.Context, reqs []coordinator.Request) []coordinator.Outcome {
	return m.coordinator.DispatchAll(ctx, reqs)
}

// ActiveConversations reports how many identities currently have a request
// in flight.
func (m *Mesh) ActiveConversations() int {
	return m.guard.ActiveCount()
}

// Close stops the idle reaper and flushes the turn recorder. The Mesh must
// not be used afterwards.
func (m *Mesh) Close() {
	m.guard.StopReaper()
	m.coordinator.Close()
}
