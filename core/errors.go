package core

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a request arrives for an identity that
	// already has a request in flight. It is a caller-should-retry signal,
	// not an internal fault; no session state has been touched.
	ErrBusy = errors.New("identity is already processing a request")

	// ErrEmptyResponse is returned when the backend produced no usable
	// output text. The turn fails without partial persistence.
	ErrEmptyResponse = errors.New("no response text received from backend")
)

// TransportError wraps a failed backend call. It is propagated unchanged to
// the caller; the orchestrator never retries internally.
type TransportError struct {
	Op  string // "create", "tool_followup" or "rollover"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StoreError signals a persistence failure after an answer was already
// computed. The answer is still returned to the caller alongside this error:
// losing a continuation token risks context loss on the next turn, not loss
// of the current answer.
type StoreError struct {
	Identity string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session update for %q failed: %v", e.Identity, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
