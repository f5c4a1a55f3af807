// Package record turns timed capture streams into container segments.
//
// A recording session runs one video producer and (when a microphone or
// monitor source is available) one audio producer, each stamping samples
// with its own 100 ns clock. The session goroutine interleaves the two
// streams into a segment writer, rotates segments on a wall-clock
// schedule, and hands committed segment files to the delivery engine.
// Segments that fall short of their expected frame count are deleted
// rather than delivered.
package record

import "github.com/sayandeep-bot/spectosoft/types"

// SegmentSpec describes one container segment to encode.
type SegmentSpec struct {
	// Path is the destination file, pre-allocated in the pending store.
	Path string
	// Container selects the output format and codec set.
	Container types.Container
	// Width and Height are the frame geometry in pixels.
	Width  int
	Height int
	// FPS is the nominal video frame rate.
	FPS int
	// BitrateKbps is the target video bitrate.
	BitrateKbps int
	// FlipVertical inverts frame rows for sources that deliver
	// bottom-up pixel data.
	FlipVertical bool
	// Audio is the PCM format of the audio track, nil for video-only
	// segments.
	Audio *types.AudioFormat
}

// SegmentWriter encodes the samples of one segment. Timestamps must be
// non-decreasing within each track. Finalize flushes and closes the
// output file and makes it crash-durable; the writer is unusable
// afterwards. Implementations are not safe for concurrent use.
type SegmentWriter interface {
	WriteVideo(sample types.TimedSample) error
	WriteAudio(sample types.TimedSample) error
	Finalize() error
}

// AudioSink receives drained audio samples in timestamp order. Both
// SegmentWriter and Manager satisfy it.
type AudioSink interface {
	WriteAudio(sample types.TimedSample) error
}

// WriterFactory opens a writer for one segment. Called once per
// segment; a failure aborts the rotation that requested it.
type WriterFactory func(spec SegmentSpec) (SegmentWriter, error)
