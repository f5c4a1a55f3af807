package upload

import (
	"context"
	"sync"

	"github.com/sayandeep-bot/spectosoft/types"
)

// StubUploader is a test uploader that records sends without any
// network. Tracks per-call records for test assertions.
type StubUploader struct {
	mu sync.Mutex

	// Sends holds every recorded Send call in order.
	Sends []StubSendRecord

	// FailFirst makes the first n Send calls fail before succeeding,
	// for retry convergence tests.
	FailFirst int

	// ErrOnSend, when set, makes every Send call fail.
	ErrOnSend error

	calls int
}

// StubSendRecord is one recorded delivery attempt.
type StubSendRecord struct {
	Path string
	Kind types.Kind
}

// NewStubUploader creates a new stub uploader.
func NewStubUploader() *StubUploader {
	return &StubUploader{}
}

// Send implements Uploader by recording the call.
func (u *StubUploader) Send(_ context.Context, path string, kind types.Kind) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.calls++
	u.Sends = append(u.Sends, StubSendRecord{Path: path, Kind: kind})

	if u.ErrOnSend != nil {
		return u.ErrOnSend
	}
	if u.calls <= u.FailFirst {
		return &StatusError{Code: 503}
	}
	return nil
}

// SendCount returns how many Send calls were recorded.
func (u *StubUploader) SendCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// Recorded returns a copy of the recorded sends.
func (u *StubUploader) Recorded() []StubSendRecord {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]StubSendRecord, len(u.Sends))
	copy(out, u.Sends)
	return out
}

var _ Uploader = (*StubUploader)(nil)
