package screenshot

import (
	"context"
	"sync"
)

// StubGrabber returns a fixed payload for testing. Failures are
// scriptable per capture index.
type StubGrabber struct {
	mu sync.Mutex

	// Payload is returned by every successful Grab.
	Payload []byte
	// FailOn holds capture indexes (0-based) that fail.
	FailOn map[int]bool
	// ErrOnGrab, when set, fails every capture.
	ErrOnGrab error

	calls int
}

var _ Grabber = (*StubGrabber)(nil)

// NewStubGrabber creates a stub returning payload on each capture.
func NewStubGrabber(payload []byte) *StubGrabber {
	return &StubGrabber{Payload: payload}
}

// Grab implements Grabber.
func (g *StubGrabber) Grab(ctx context.Context) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	index := g.calls
	g.calls++
	if g.ErrOnGrab != nil {
		return nil, g.ErrOnGrab
	}
	if g.FailOn[index] {
		return nil, &GrabError{Index: index}
	}
	return g.Payload, nil
}

// Calls returns how many captures were attempted.
func (g *StubGrabber) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// GrabError is the error a StubGrabber returns for a scripted failure.
type GrabError struct {
	Index int
}

func (e *GrabError) Error() string {
	return "scripted grab failure"
}
