package capture

import (
	"time"

	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/types"
)

// audioPollTimeout bounds one NextChunk wait so the stop flag is
// rechecked at least this often.
const audioPollTimeout = time.Millisecond

// AudioConfig configures one audio producer.
type AudioConfig struct {
	// Source provides the chunks, already started. The producer does
	// not close it.
	Source AudioSource
	// Format is the source's discovered PCM format, used to convert
	// chunk lengths into tick durations.
	Format types.AudioFormat

	Logger    *log.Logger
	Collector *metrics.Collector
}

// RunAudioProducer pulls PCM chunks from the source and sends them on
// out, closing out when it returns.
//
// Unlike the paced video producer, the audio producer is driven by the
// source: it polls with a short timeout and forwards whatever arrives.
// Each chunk is stamped with the running tick total of all frames sent
// before it, then the total advances by the chunk's own duration, so
// chunk spacing mirrors the sample count exactly.
//
// A source error ends the producer; the session keeps recording video
// without audio. The producer also stops when the flag is signalled or
// done closes.
func RunAudioProducer(flag *lifecycle.Flag, done <-chan struct{}, cfg AudioConfig, out chan<- types.TimedSample) {
	defer close(out)

	var timestamp int64
	for !flag.ShouldStop() {
		select {
		case <-done:
			return
		default:
		}

		chunk, err := cfg.Source.NextChunk(audioPollTimeout)
		if err != nil {
			cfg.Logger.Warn("audio capture ended", map[string]any{"error": err.Error()})
			return
		}
		if chunk == nil || chunk.Frames == 0 {
			continue
		}

		select {
		case out <- types.TimedSample{Payload: chunk.PCM, Timestamp: timestamp}:
		case <-done:
			return
		}
		cfg.Collector.IncAudioChunk()
		timestamp += types.AudioFramesTicks(chunk.Frames, cfg.Format.SampleRate)
	}
}
