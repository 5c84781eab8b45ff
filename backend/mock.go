package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/sessionmesh/core"
)

// Mock is a lightweight in-memory Backend useful for tests & examples. It
// replays scripted responses in order and records every request it receives.
// Safe for concurrent use.
type Mock struct {
	mu        sync.Mutex
	scripted  []*Response
	requests  []Request
	callCount int

	// CreateFunc, when set, fully replaces the scripted behavior.
	CreateFunc func(ctx context.Context, req Request) (*Response, error)
	// Latency is simulated per call before answering.
	Latency time.Duration
}

// NewMock constructs an empty Mock.
func NewMock() *Mock { return &Mock{} }

// Enqueue appends a scripted response. A response with an empty ID gets a
// generated one.
func (m *Mock) Enqueue(resp *Response) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	if resp.ID == "" {
		resp.ID = "resp_" + core.NewID()
	}
	m.scripted = append(m.scripted, resp)
	return m
}

// EnqueueText is shorthand for Enqueue with just output text.
func (m *Mock) EnqueueText(text string) *Mock {
	return m.Enqueue(&Response{OutputText: text})
}

// Create implements Backend. Once the script is exhausted it answers with a
// generated echo response so open-ended tests keep working.
func (m *Mock) Create(ctx context.Context, req Request) (*Response, error) {
	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Latency):
		}
	}

	if m.CreateFunc != nil {
		m.mu.Lock()
		m.requests = append(m.requests, req)
		m.callCount++
		m.mu.Unlock()
		return m.CreateFunc(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	m.callCount++
	if len(m.scripted) > 0 {
		resp := m.scripted[0]
		m.scripted = m.scripted[1:]
		return resp, nil
	}

	var last string
	if len(req.Input) > 0 {
		last = req.Input[len(req.Input)-1].Content
	}
	return &Response{
		ID:         "resp_" + core.NewID(),
		OutputText: fmt.Sprintf("Mock response to: %s", last),
	}, nil
}

// Requests returns a copy of all recorded requests in arrival order.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount reports how many Create calls the mock has served.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
