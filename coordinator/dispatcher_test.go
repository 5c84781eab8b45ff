package coordinator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sessionmesh/backend"
	"github.com/hupe1980/sessionmesh/session"
)

func TestDispatchAllPreservesOrder(t *testing.T) {
	mock := backend.NewMock()
	mock.CreateFunc = func(_ context.Context, req backend.Request) (*backend.Response, error) {
		last := req.Input[len(req.Input)-1].Content
		return &backend.Response{ID: "resp", OutputText: "echo " + last}, nil
	}
	c := newTestCoordinator(mock, session.NewInMemoryStore())

	reqs := []Request{
		{Identity: "u1", Message: "alpha"},
		{Identity: "u2", Message: "beta"},
		{Identity: "u3", Message: "gamma"},
	}
	outcomes := c.DispatchAll(context.Background(), reqs)

	require.Len(t, outcomes, 3)
	for i, want := range []string{"alpha", "beta", "gamma"} {
		assert.Equal(t, reqs[i].Identity, outcomes[i].Identity)
		assert.NoError(t, outcomes[i].Err)
		assert.Equal(t, "echo "+want, outcomes[i].Answer)
	}
}

func TestDispatchAllIsAllSettled(t *testing.T) {
	mock := backend.NewMock()
	mock.CreateFunc = func(_ context.Context, req backend.Request) (*backend.Response, error) {
		if req.Input[len(req.Input)-1].Content == "poison" {
			return nil, errors.New("backend down")
		}
		return &backend.Response{ID: "resp", OutputText: "fine"}, nil
	}
	c := newTestCoordinator(mock, session.NewInMemoryStore())

	outcomes := c.DispatchAll(context.Background(), []Request{
		{Identity: "u1", Message: "ok"},
		{Identity: "u2", Message: "poison"},
		{Identity: "u3", Message: "ok"},
	})

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err, "one failure must not abort the batch")
	assert.NoError(t, outcomes[2].Err)
	assert.Equal(t, "fine", outcomes[2].Answer)
}

func TestDispatchAllRunsConcurrently(t *testing.T) {
	const latency = 80 * time.Millisecond
	mock := backend.NewMock()
	mock.Latency = latency
	mock.CreateFunc = func(ctx context.Context, _ backend.Request) (*backend.Response, error) {
		return &backend.Response{ID: "resp", OutputText: "done"}, nil
	}
	c := newTestCoordinator(mock, session.NewInMemoryStore())

	var reqs []Request
	for i := 0; i < 4; i++ {
		reqs = append(reqs, Request{Identity: fmt.Sprintf("u%d", i), Message: "go"})
	}

	start := time.Now()
	outcomes := c.DispatchAll(context.Background(), reqs)
	elapsed := time.Since(start)

	for _, o := range outcomes {
		assert.NoError(t, o.Err)
	}
	assert.Less(t, elapsed, 3*latency, "wall time tracks the slowest request, not the sum")
}

func TestDispatchAllHonorsConcurrencyLimit(t *testing.T) {
	mock := backend.NewMock()
	inFlight := make(chan struct{}, 16)
	peak := 0
	done := make(chan int, 16)
	mock.CreateFunc = func(_ context.Context, _ backend.Request) (*backend.Response, error) {
		inFlight <- struct{}{}
		time.Sleep(10 * time.Millisecond)
		done <- len(inFlight)
		<-inFlight
		return &backend.Response{ID: "resp", OutputText: "done"}, nil
	}
	c := New(mock, func(o *Options) {
		o.MaxConcurrent = 2
	})

	var reqs []Request
	for i := 0; i < 6; i++ {
		reqs = append(reqs, Request{Identity: fmt.Sprintf("u%d", i), Message: "go"})
	}
	c.DispatchAll(context.Background(), reqs)

	close(done)
	for n := range done {
		if n > peak {
			peak = n
		}
	}
	assert.LessOrEqual(t, peak, 2)
}

func TestDispatchOneWrapsProcess(t *testing.T) {
	mock := backend.NewMock().EnqueueText("hello back")
	c := newTestCoordinator(mock, session.NewInMemoryStore())

	out := c.DispatchOne(context.Background(), Request{Identity: "u1", Message: "hello"})
	assert.Equal(t, "u1", out.Identity)
	assert.NoError(t, out.Err)
	assert.Equal(t, "hello back", out.Answer)
}
