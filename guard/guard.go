// Package guard implements per-identity mutual exclusion with a fast-fail
// contract: a second request for an identity whose slot is busy is rejected
// immediately instead of queued, keeping latency predictable and giving the
// caller an explicit retry-later signal. A periodic reaper removes slots that
// have been idle past a timeout.
package guard

import (
	"sync"
	"time"
)

// slot tracks busy/idle state for one identity.
type slot struct {
	busy         bool
	lastActivity time.Time
}

// Guard owns the concurrency slot table. All methods are safe for concurrent
// use; the internal lock is only held for map operations, never across a
// backend call.
type Guard struct {
	mu    sync.Mutex
	slots map[string]*slot
	now   func() time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
}

// New constructs an empty Guard.
func New() *Guard {
	return &Guard{
		slots: make(map[string]*slot),
		now:   time.Now,
	}
}

// TryAcquire marks the identity's slot busy and returns true, or returns
// false immediately when a request for the identity is already in flight.
// It never blocks and never queues.
func (g *Guard) TryAcquire(identity string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[identity]
	if ok && s.busy {
		return false
	}
	if !ok {
		s = &slot{}
		g.slots[identity] = s
	}
	s.busy = true
	s.lastActivity = g.now()
	return true
}

// Release unconditionally clears the busy flag and stamps the last activity
// time. It must run on every exit path of a guarded section; callers defer it
// right after a successful TryAcquire.
func (g *Guard) Release(identity string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[identity]
	if !ok {
		return
	}
	s.busy = false
	s.lastActivity = g.now()
}

// Busy reports whether the identity currently has a request in flight.
func (g *Guard) Busy(identity string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[identity]
	return ok && s.busy
}

// ActiveCount returns the number of identities with a busy slot.
func (g *Guard) ActiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, s := range g.slots {
		if s.busy {
			n++
		}
	}
	return n
}

// Reap removes slots that are not busy and whose last activity is older than
// timeout relative to now. Busy slots are never removed, regardless of age.
// Returns the identities that were removed.
func (g *Guard) Reap(now time.Time, timeout time.Duration) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var reaped []string
	for identity, s := range g.slots {
		if s.busy {
			continue
		}
		if now.Sub(s.lastActivity) > timeout {
			delete(g.slots, identity)
			reaped = append(reaped, identity)
		}
	}
	return reaped
}

// StartReaper launches a background loop calling Reap every interval with the
// given idle timeout. Subsequent calls are no-ops. StopReaper shuts the loop
// down.
func (g *Guard) StartReaper(interval, timeout time.Duration) {
	g.startOnce.Do(func() {
		g.reaperStop = make(chan struct{})
		g.reaperDone = make(chan struct{})
		go g.reapLoop(interval, timeout)
	})
}

// StopReaper terminates the background reap loop and waits for it to exit.
// Safe to call without a prior StartReaper.
func (g *Guard) StopReaper() {
	g.stopOnce.Do(func() {
		if g.reaperStop == nil {
			return
		}
		close(g.reaperStop)
		<-g.reaperDone
	})
}

func (g *Guard) reapLoop(interval, timeout time.Duration) {
	defer close(g.reaperDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-g.reaperStop:
			return
		case <-ticker.C:
			g.Reap(g.now(), timeout)
		}
	}
}
