package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type captureRecorder struct {
	mu   sync.Mutex
	recs []TurnRecord
}

func (c *captureRecorder) Record(rec TurnRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
}

func (c *captureRecorder) records() []TurnRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TurnRecord, len(c.recs))
	copy(out, c.recs)
	return out
}

func TestAsyncRecorderDelivers(t *testing.T) {
	capture := &captureRecorder{}
	r := NewAsyncRecorder(capture, 8)

	r.Record(TurnRecord{Identity: "chat-1", Direction: TurnSent, Payload: "hello"})
	r.Record(TurnRecord{Identity: "chat-1", Direction: TurnReceived, Payload: "hi there"})
	r.Close()

	recs := capture.records()
	assert.Len(t, recs, 2)
	assert.Equal(t, TurnSent, recs[0].Direction)
	assert.Equal(t, TurnReceived, recs[1].Direction)
}

func TestAsyncRecorderNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	slow := TurnRecorderFunc(func(TurnRecord) { <-block })
	r := NewAsyncRecorder(slow, 1)

	// First record occupies the drain goroutine, second fills the buffer,
	// the rest must be dropped without blocking this goroutine.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			r.Record(TurnRecord{Identity: "chat-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a slow recorder")
	}
	close(block)
	r.Close()
}

func TestAsyncRecorderRecordAfterClose(t *testing.T) {
	capture := &captureRecorder{}
	r := NewAsyncRecorder(capture, 2)
	r.Close()

	assert.NotPanics(t, func() {
		r.Record(TurnRecord{Identity: "chat-1"})
	})
}
