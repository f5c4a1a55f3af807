// Package capture produces the raw media streams behind a recording
// session: video frames grabbed from the display and PCM chunks pulled
// from the system audio loopback.
//
// Producers run as goroutines with independent clocks. Each stamps its
// samples with 100 ns ticks starting at 0 and sends them on a channel
// owned by the producer; the channel is closed when the producer exits.
// The recording consumer merges the two streams by timestamp.
package capture

import (
	"context"
	"time"

	"github.com/sayandeep-bot/spectosoft/types"
)

// FrameSource grabs raw BGRA frames from the display. Geometry is fixed
// when the source is opened; every Capture returns one frame of
// width*height*4 bytes. Capture may block until a frame is available;
// Close unblocks a pending Capture.
type FrameSource interface {
	Capture() ([]byte, error)
	Close() error
}

// FrameSourceFactory opens a frame source for one recording session.
type FrameSourceFactory func(width, height, fps int) (FrameSource, error)

// AudioChunk is one block of interleaved PCM pulled from an AudioSource.
type AudioChunk struct {
	// PCM holds Frames * BytesPerFrame bytes of interleaved samples.
	PCM []byte
	// Frames is the number of sample frames in PCM.
	Frames int
}

// AudioSource is a loopback capture of the system audio output.
//
// Start spawns the capture and reports the stream's PCM format; the
// format is immutable for the source's lifetime. NextChunk returns the
// next chunk, or (nil, nil) when no data arrived within the timeout.
type AudioSource interface {
	Start(ctx context.Context) (types.AudioFormat, error)
	NextChunk(timeout time.Duration) (*AudioChunk, error)
	Close() error
}

// AudioSourceFactory opens an audio source for one recording session.
type AudioSourceFactory func() (AudioSource, error)

// DiscoverAudio starts an audio source under a deadline. Loopback
// discovery can hang indefinitely on hosts without a usable output
// device, so a session that cannot discover a format within the timeout
// proceeds without audio rather than blocking forever.
func DiscoverAudio(src AudioSource, timeout time.Duration) (types.AudioFormat, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	type result struct {
		format types.AudioFormat
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		format, err := src.Start(ctx)
		ch <- result{format, err}
	}()

	select {
	case r := <-ch:
		return r.format, r.err
	case <-ctx.Done():
		return types.AudioFormat{}, ctx.Err()
	}
}
