package capture

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/sayandeep-bot/spectosoft/types"
)

// StubFrameSource returns deterministic frames for testing. Each frame
// payload is 4 bytes encoding the zero-based capture index, so tests
// can assert ordering without real pixels.
type StubFrameSource struct {
	mu sync.Mutex

	// FailOn holds capture indexes that return an error instead of a
	// frame.
	FailOn map[int]bool
	// CaptureDelay simulates grab latency.
	CaptureDelay time.Duration
	// Closed indicates whether Close was called.
	Closed bool

	calls int
}

// NewStubFrameSource creates a new stub frame source.
func NewStubFrameSource() *StubFrameSource {
	return &StubFrameSource{}
}

// Capture implements FrameSource with a synthetic frame.
func (s *StubFrameSource) Capture() ([]byte, error) {
	s.mu.Lock()
	index := s.calls
	s.calls++
	fail := s.FailOn[index]
	delay := s.CaptureDelay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, &CaptureError{Index: index}
	}

	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(index))
	return payload, nil
}

// Close implements FrameSource.
func (s *StubFrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Calls returns how many captures were attempted.
func (s *StubFrameSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FrameIndex decodes the capture index a stub frame carries.
func FrameIndex(payload []byte) int {
	return int(binary.LittleEndian.Uint32(payload))
}

// CaptureError is the error a StubFrameSource returns for a scripted
// failure.
type CaptureError struct {
	Index int
}

func (e *CaptureError) Error() string {
	return "scripted capture failure"
}

var _ FrameSource = (*StubFrameSource)(nil)

// StubAudioSource plays back a scripted chunk sequence for testing.
type StubAudioSource struct {
	mu sync.Mutex

	// Format is reported by Start. The zero value defaults to
	// 48 kHz stereo 32-bit float.
	Format types.AudioFormat
	// Chunks are handed out in order. Once exhausted, NextChunk waits
	// out its timeout and reports no data (or ErrAfter if set).
	Chunks []*AudioChunk
	// ErrAfter, when set, is returned by NextChunk after the scripted
	// chunks run out.
	ErrAfter error
	// StartErr fails Start immediately.
	StartErr error
	// StartDelay makes Start block, for discovery timeout tests.
	StartDelay time.Duration
	// Closed indicates whether Close was called.
	Closed bool

	next int
}

// NewStubAudioSource creates a stub source that will hand out the given
// chunks.
func NewStubAudioSource(chunks ...*AudioChunk) *StubAudioSource {
	return &StubAudioSource{Chunks: chunks}
}

// NewStubChunk builds a chunk of n frames of silence for the format.
func NewStubChunk(n int, format types.AudioFormat) *AudioChunk {
	return &AudioChunk{PCM: make([]byte, n*format.BytesPerFrame()), Frames: n}
}

// Start implements AudioSource.
func (s *StubAudioSource) Start(ctx context.Context) (types.AudioFormat, error) {
	if s.StartDelay > 0 {
		select {
		case <-time.After(s.StartDelay):
		case <-ctx.Done():
			return types.AudioFormat{}, ctx.Err()
		}
	}
	if s.StartErr != nil {
		return types.AudioFormat{}, s.StartErr
	}
	if s.Format == (types.AudioFormat{}) {
		s.Format = types.AudioFormat{SampleRate: 48000, Channels: 2, BitsPerSample: 32}
	}
	return s.Format, nil
}

// NextChunk implements AudioSource by replaying the script.
func (s *StubAudioSource) NextChunk(timeout time.Duration) (*AudioChunk, error) {
	s.mu.Lock()
	if s.next < len(s.Chunks) {
		chunk := s.Chunks[s.next]
		s.next++
		s.mu.Unlock()
		return chunk, nil
	}
	err := s.ErrAfter
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	time.Sleep(timeout)
	return nil, nil
}

// Close implements AudioSource.
func (s *StubAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

var _ AudioSource = (*StubAudioSource)(nil)
