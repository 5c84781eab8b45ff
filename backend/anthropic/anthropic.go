// Package anthropic provides a backend.Backend implementation over the
// Anthropic Messages API. The Messages API carries no server-side turn
// chaining, so continuation tokens are emulated: each response ID keys an
// in-process snapshot of the conversation so far, and a request that chains
// onto a prior ID replays that snapshot ahead of the new input. Earlier
// tokens stay valid, mirroring the Responses API contract.
package anthropic

import (
	"context"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/sessionmesh/backend"
	"github.com/hupe1980/sessionmesh/core"
)

// DefaultMaxTokens is used when the request does not bound the output.
const DefaultMaxTokens = 4096

// Options configure the Anthropic backend adapter.
type Options struct {
	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey string
	// MaxThreads caps the number of retained conversation snapshots; the
	// oldest are evicted first. Zero means no cap.
	MaxThreads int
}

// thread is the replayable conversation snapshot behind one token.
type thread struct {
	system   []anthropic.TextBlockParam
	messages []anthropic.MessageParam
}

// Backend wraps the Anthropic Messages API behind the generic
// backend.Backend interface.
type Backend struct {
	client *anthropic.Client
	opts   Options

	mu      sync.Mutex
	threads map[string]*thread
	order   []string
}

// New creates a new Anthropic backend using the official client.
func New(optFns ...func(o *Options)) *Backend {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return newBackend(&client, opts)
}

// NewFromClient creates a new Anthropic backend from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Backend {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return newBackend(client, opts)
}

func newBackend(client *anthropic.Client, opts Options) *Backend {
	return &Backend{
		client:  client,
		opts:    opts,
		threads: make(map[string]*thread),
	}
}

// Create implements backend.Backend.
func (b *Backend) Create(ctx context.Context, req backend.Request) (*backend.Response, error) {
	base := &thread{}
	if req.PreviousResponseID != "" {
		prior, ok := b.lookup(req.PreviousResponseID)
		if !ok {
			return nil, &core.TransportError{
				Op:  "create",
				Err: fmt.Errorf("unknown previous response id %q", req.PreviousResponseID),
			}
		}
		base = prior
	}

	next := &thread{
		system:   append([]anthropic.TextBlockParam(nil), base.system...),
		messages: append([]anthropic.MessageParam(nil), base.messages...),
	}
	for _, m := range req.Input {
		switch m.Role {
		case core.RoleDeveloper, core.RoleSystem:
			next.system = append(next.system, anthropic.TextBlockParam{Text: m.Content})
		case core.RoleAssistant:
			next.messages = append(next.messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			next.messages = append(next.messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  next.messages,
		MaxTokens: maxTokens,
	}
	if len(next.system) > 0 {
		params.System = next.system
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &core.TransportError{Op: "create", Err: err}
	}

	text := extractText(resp)
	if text != "" {
		next.messages = append(next.messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
	}
	b.store(resp.ID, next)

	return &backend.Response{
		ID:         resp.ID,
		OutputText: text,
		Raw:        resp,
	}, nil
}

func (b *Backend) lookup(token string) (*thread, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.threads[token]
	return t, ok
}

func (b *Backend) store(token string, t *thread) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.threads[token]; !exists {
		b.order = append(b.order, token)
	}
	b.threads[token] = t
	if b.opts.MaxThreads > 0 {
		for len(b.order) > b.opts.MaxThreads {
			oldest := b.order[0]
			b.order = b.order[1:]
			delete(b.threads, oldest)
		}
	}
}

func extractText(resp *anthropic.Message) string {
	var text string
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		tb := block.AsText()
		if tb.Text == "" {
			continue
		}
		if text != "" {
			text += "\n"
		}
		text += tb.Text
	}
	return text
}
