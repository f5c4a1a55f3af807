package record

import (
	"fmt"
	"os"
	"sync"

	"github.com/sayandeep-bot/spectosoft/types"
)

// WriterEvent records one sample written to a StubWriter, carrying the
// track name so tests can assert cross-track ordering.
type WriterEvent struct {
	Track     string
	Timestamp int64
}

// StubWriter is an in-memory SegmentWriter for tests. Writes are
// recorded in arrival order; failures are programmable per track.
type StubWriter struct {
	mu sync.Mutex

	Spec      SegmentSpec
	Video     []types.TimedSample
	Audio     []types.TimedSample
	Events    []WriterEvent
	Finalized bool

	ErrOnVideo    error
	ErrOnAudio    error
	ErrOnFinalize error
}

var _ SegmentWriter = (*StubWriter)(nil)

func (w *StubWriter) WriteVideo(sample types.TimedSample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ErrOnVideo != nil {
		return w.ErrOnVideo
	}
	w.Video = append(w.Video, sample)
	w.Events = append(w.Events, WriterEvent{Track: "video", Timestamp: sample.Timestamp})
	return nil
}

func (w *StubWriter) WriteAudio(sample types.TimedSample) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ErrOnAudio != nil {
		return w.ErrOnAudio
	}
	w.Audio = append(w.Audio, sample)
	w.Events = append(w.Events, WriterEvent{Track: "audio", Timestamp: sample.Timestamp})
	return nil
}

func (w *StubWriter) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Finalized = true
	return w.ErrOnFinalize
}

// VideoCount returns the number of frames written.
func (w *StubWriter) VideoCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Video)
}

// AudioCount returns the number of audio chunks written.
func (w *StubWriter) AudioCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Audio)
}

// EventLog returns a copy of the cross-track write log.
func (w *StubWriter) EventLog() []WriterEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]WriterEvent(nil), w.Events...)
}

// IsFinalized reports whether Finalize ran.
func (w *StubWriter) IsFinalized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Finalized
}

// StubWriterFactory creates StubWriters and records them in creation
// order. Error fields seed the writers it creates; FailCreate fails
// specific creations by index.
type StubWriterFactory struct {
	mu      sync.Mutex
	writers []*StubWriter

	// ErrOnCreate fails every creation when set.
	ErrOnCreate error
	// FailCreate fails the n-th successful-so-far creation (0-based).
	FailCreate map[int]bool
	// VideoErr, AudioErr and FinalizeErr are copied into each created
	// writer's corresponding ErrOn field.
	VideoErr    error
	AudioErr    error
	FinalizeErr error
	// TouchFiles creates the segment file on open, the way a real
	// encoder would, so completeness checks see a file to delete.
	TouchFiles bool
}

// NewStubWriterFactory returns a factory that touches segment files.
func NewStubWriterFactory() *StubWriterFactory {
	return &StubWriterFactory{TouchFiles: true}
}

// New opens a stub writer for spec. Pass the method value as the
// session's WriterFactory.
func (f *StubWriterFactory) New(spec SegmentSpec) (SegmentWriter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrOnCreate != nil {
		return nil, f.ErrOnCreate
	}
	if f.FailCreate[len(f.writers)] {
		return nil, fmt.Errorf("writer %d refused to open", len(f.writers))
	}
	if f.TouchFiles {
		if err := os.WriteFile(spec.Path, []byte("segment"), 0o644); err != nil {
			return nil, err
		}
	}
	w := &StubWriter{
		Spec:          spec,
		ErrOnVideo:    f.VideoErr,
		ErrOnAudio:    f.AudioErr,
		ErrOnFinalize: f.FinalizeErr,
	}
	f.writers = append(f.writers, w)
	return w, nil
}

// Created returns the writers created so far, in order.
func (f *StubWriterFactory) Created() []*StubWriter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*StubWriter(nil), f.writers...)
}
