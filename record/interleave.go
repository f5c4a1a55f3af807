package record

import "github.com/sayandeep-bot/spectosoft/types"

// Interleaver merges an audio stream into a video-paced consumer loop.
//
// Audio chunks are written strictly before the video frame whose
// timestamp they precede. A chunk that is read from the channel but is
// not yet due is parked in a one-element lookahead and written on a
// later call, so no chunk is ever dropped on the floor between drains.
type Interleaver struct {
	audio     <-chan types.TimedSample
	lookahead *types.TimedSample
	closed    bool
}

// NewInterleaver wraps an audio channel. A nil channel yields an
// interleaver that drains nothing, which is how video-only sessions
// run.
func NewInterleaver(audio <-chan types.TimedSample) *Interleaver {
	return &Interleaver{audio: audio, closed: audio == nil}
}

// DrainBefore writes every available audio sample with a timestamp
// strictly below videoTS to the sink, in arrival order. It never
// blocks: when the channel is momentarily empty the remaining chunks
// are picked up by the next drain. Returns the number of samples
// written.
func (in *Interleaver) DrainBefore(videoTS int64, sink AudioSink) (int, error) {
	written := 0
	for {
		if in.lookahead == nil {
			if in.closed {
				return written, nil
			}
			select {
			case sample, ok := <-in.audio:
				if !ok {
					in.closed = true
					return written, nil
				}
				in.lookahead = &sample
			default:
				return written, nil
			}
		}
		if in.lookahead.Timestamp >= videoTS {
			return written, nil
		}
		sample := *in.lookahead
		in.lookahead = nil
		if err := sink.WriteAudio(sample); err != nil {
			return written, err
		}
		written++
	}
}

// Exhausted reports whether the audio stream has ended and every
// buffered sample has been drained.
func (in *Interleaver) Exhausted() bool {
	return in.closed && in.lookahead == nil
}
