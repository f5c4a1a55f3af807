package activity

import "sync"

// StubProber replays a scripted window sequence for tests. Once the
// script runs out, the last window repeats.
type StubProber struct {
	mu sync.Mutex

	// Windows are returned in order.
	Windows []Window
	// Err, when set, fails every probe.
	Err error

	calls int
}

var _ WindowProber = (*StubProber)(nil)

// NewStubProber creates a prober replaying the given windows.
func NewStubProber(windows ...Window) *StubProber {
	return &StubProber{Windows: windows}
}

// ActiveWindow implements WindowProber from the script.
func (p *StubProber) ActiveWindow() (Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.Err != nil {
		return Window{}, p.Err
	}
	if len(p.Windows) == 0 {
		return Window{}, nil
	}
	i := p.calls - 1
	if i >= len(p.Windows) {
		i = len(p.Windows) - 1
	}
	return p.Windows[i], nil
}

// Calls returns how many probes were made.
func (p *StubProber) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
