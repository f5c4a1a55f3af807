// Package lifecycle provides the generational start/stop primitives
// shared by every long-running service in the agent. It is a leaf
// package so services and their supporting loops can all depend on it.
package lifecycle

import (
	"sync"
	"sync/atomic"
	"time"
)

// Flag is a cooperative stop signal. Runner loops poll ShouldStop at the
// top of each iteration; in-flight work always completes. Each service
// generation gets its own Flag, so a stale goroutine can never observe a
// later generation's state.
type Flag struct {
	stop atomic.Bool
}

// Signal requests a stop. Safe to call more than once.
func (f *Flag) Signal() {
	f.stop.Store(true)
}

// ShouldStop reports whether a stop has been requested.
func (f *Flag) ShouldStop() bool {
	return f.stop.Load()
}

// Controller tracks the running generation of one service.
//
// Start hands out a fresh Flag per generation and refuses to start a
// second one. Stop signals the current generation and immediately frees
// the slot, so a subsequent Start launches a new generation while the
// old goroutine winds down on its own signaled Flag. Runners must defer
// Release(flag) so a generation that dies on its own frees the slot too.
type Controller struct {
	mu      sync.Mutex
	current *Flag
}

// Start claims the running slot and returns the new generation's Flag,
// or nil when a generation is already running.
func (c *Controller) Start() *Flag {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return nil
	}
	c.current = &Flag{}
	return c.current
}

// Stop signals the running generation and frees the slot. It does not
// wait for the runner to exit. Returns false when nothing was running.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false
	}
	c.current.Signal()
	c.current = nil
	return true
}

// Release frees the slot if flag is still the current generation.
// Called by runners on exit; a no-op after Stop or after a newer
// generation has started.
func (c *Controller) Release(flag *Flag) {
	if flag == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == flag {
		c.current = nil
	}
}

// Running reports whether a generation currently holds the slot.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// pollInterval bounds how long a sleeping loop takes to notice a stop.
const pollInterval = 500 * time.Millisecond

// Sleep pauses for d while polling the flag, and reports whether a stop
// was requested. Loops use it instead of time.Sleep so a multi-minute
// interval does not pin a stopped goroutine.
func Sleep(flag *Flag, d time.Duration) (stopped bool) {
	deadline := time.Now().Add(d)
	for {
		if flag.ShouldStop() {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return flag.ShouldStop()
		}
		if remaining > pollInterval {
			remaining = pollInterval
		}
		time.Sleep(remaining)
	}
}
