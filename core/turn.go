package core

import (
	"sync"
	"time"
)

// TurnDirection distinguishes outbound payloads from backend answers.
type TurnDirection string

const (
	// TurnSent marks a payload handed to the backend transport.
	TurnSent TurnDirection = "sent"
	// TurnReceived marks an answer returned by the backend transport.
	TurnReceived TurnDirection = "received"
)

// TurnRecord is an observability snapshot of one backend exchange. Records
// are delivered to an optional TurnRecorder for external timeline assembly;
// they carry no orchestration semantics.
type TurnRecord struct {
	Time                    time.Time     `json:"time"`
	Identity                string        `json:"identity"`
	CorrelationID           string        `json:"correlation_id"`
	Direction               TurnDirection `json:"direction"`
	ContinuationTokenBefore string        `json:"continuation_token_before,omitempty"`
	Payload                 string        `json:"payload"`
	ContinuationTokenAfter  string        `json:"continuation_token_after,omitempty"`
}

// TurnRecorder receives turn records for external logging or timeline
// assembly. Implementations must be safe for concurrent use.
type TurnRecorder interface {
	Record(rec TurnRecord)
}

// TurnRecorderFunc adapts a plain function to the TurnRecorder interface.
type TurnRecorderFunc func(rec TurnRecord)

// Record implements TurnRecorder.
func (f TurnRecorderFunc) Record(rec TurnRecord) { f(rec) }

// AsyncRecorder decouples turn recording from the orchestration path. Records
// are pushed onto a buffered channel and drained by a single background
// goroutine; when the buffer is full the record is dropped rather than
// blocking a request.
type AsyncRecorder struct {
	inner TurnRecorder
	ch    chan TurnRecord
	done  chan struct{}
	once  sync.Once
}

// NewAsyncRecorder wraps inner with a drop-on-full buffer of the given size.
// A non-positive size falls back to a buffer of 64.
func NewAsyncRecorder(inner TurnRecorder, size int) *AsyncRecorder {
	if size <= 0 {
		size = 64
	}
	r := &AsyncRecorder{
		inner: inner,
		ch:    make(chan TurnRecord, size),
		done:  make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *AsyncRecorder) drain() {
	defer close(r.done)
	for rec := range r.ch {
		r.inner.Record(rec)
	}
}

// Record implements TurnRecorder. It never blocks; records are dropped when
// the buffer is full or the recorder is closed.
func (r *AsyncRecorder) Record(rec TurnRecord) {
	defer func() {
		// Sending on a closed channel after Close is a drop, not a fault.
		_ = recover()
	}()
	select {
	case r.ch <- rec:
	default:
	}
}

// Close stops the drain goroutine after flushing buffered records. Records
// submitted concurrently with Close may be dropped.
func (r *AsyncRecorder) Close() {
	r.once.Do(func() {
		close(r.ch)
		<-r.done
	})
}
