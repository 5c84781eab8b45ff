// Package backend defines the transport contract to the turn-chaining model
// backend. A Backend accepts an ordered message payload plus an optional
// continuation token referencing the previous turn and returns the new turn's
// response ID and output text. Adapters for concrete providers live in
// sub-packages; the orchestration layers depend only on this package.
package backend

import "context"

// Message is one role-tagged input entry of a backend payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the normalized payload for one backend call.
type Request struct {
	// Model names the target model, e.g. "gpt-4o-mini".
	Model string `json:"model"`
	// Input is the ordered message sequence for this turn.
	Input []Message `json:"input"`
	// PreviousResponseID chains this turn onto a prior one. Empty starts a
	// fresh backend session.
	PreviousResponseID string `json:"previous_response_id,omitempty"`
	// MaxOutputTokens bounds the generated answer.
	MaxOutputTokens int64 `json:"max_output_tokens,omitempty"`
}

// Response is the normalized result of one backend call.
type Response struct {
	// ID is the backend-issued handle for this turn, usable as the next
	// request's PreviousResponseID.
	ID string `json:"id"`
	// OutputText is the assistant's extracted answer text. May be empty
	// when the backend produced no usable message.
	OutputText string `json:"output_text"`
	// Raw carries the provider-specific response for callers that need it.
	Raw any `json:"-"`
}

// Backend is an opaque remote call with at least one network round-trip of
// latency. Implementations must tolerate arbitrary latency without holding
// locks that would serialize unrelated callers, and must not retry
// internally; retry policy belongs to the transport provider or the caller.
type Backend interface {
	Create(ctx context.Context, req Request) (*Response, error)
}
