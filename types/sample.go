//nolint:revive // types is a common Go package naming convention
package types

// TicksPerSecond is the timestamp resolution for captured samples.
// 100 ns ticks divide evenly into common frame rates and audio sample
// rates, so per-stream timestamps stay exact integers.
const TicksPerSecond = 10_000_000

// TimedSample is one unit of captured media: a raw payload stamped with
// a 100 ns tick timestamp. Timestamps start at 0 at stream start and are
// strictly increasing within a stream. Ownership of Payload transfers to
// the receiver when the sample is sent on a channel.
type TimedSample struct {
	// Payload is the raw sample bytes (BGRA pixels or PCM frames).
	Payload []byte
	// Timestamp is the sample time in 100 ns ticks since stream start.
	Timestamp int64
}

// AudioFormat describes a PCM stream, discovered once per recording
// session from the audio capability. Immutable for the session.
type AudioFormat struct {
	// SampleRate is sample frames per second (e.g. 48000).
	SampleRate int
	// Channels is the interleaved channel count.
	Channels int
	// BitsPerSample is the width of one sample (16 or 32).
	BitsPerSample int
}

// BytesPerFrame returns the size of one interleaved sample frame.
func (f AudioFormat) BytesPerFrame() int {
	return f.Channels * (f.BitsPerSample / 8)
}

// VideoFrameTicks returns the duration of one frame at fps in ticks.
// fps must be > 0.
func VideoFrameTicks(fps int) int64 {
	return TicksPerSecond / int64(fps)
}

// AudioFramesTicks returns the duration of n sample frames at the given
// sample rate in ticks. The multiplication happens before the division
// so common rates (44100, 48000) convert without rounding drift.
func AudioFramesTicks(n, sampleRate int) int64 {
	return TicksPerSecond * int64(n) / int64(sampleRate)
}
