package capture

import (
	"time"

	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/types"
)

// VideoConfig configures one video producer.
type VideoConfig struct {
	// Source provides the frames. The producer does not close it.
	Source FrameSource
	// FPS is the capture rate; must be > 0.
	FPS int
	// MaxTicks bounds the number of capture ticks. 0 means run until
	// the stop flag is signalled.
	MaxTicks int

	Logger    *log.Logger
	Collector *metrics.Collector
}

// RunVideoProducer grabs frames at a fixed cadence and sends them on
// out, closing out when it returns.
//
// Pacing is fixed-step: each tick advances the deadline by exactly one
// frame interval and sleeps only for whatever remains. An overrun means
// the next capture starts immediately, never that two captures are
// squeezed into one tick. Timestamps come from the tick ledger, not the
// wall clock: the producer adds one frame's worth of ticks per sent
// frame, so per-stream spacing is exact regardless of scheduling jitter.
//
// A failed grab skips the tick: nothing is sent and the timestamp does
// not advance, keeping sent timestamps contiguous. The producer stops
// when the flag is signalled, the tick budget runs out, or done closes
// (the consumer is gone).
func RunVideoProducer(flag *lifecycle.Flag, done <-chan struct{}, cfg VideoConfig, out chan<- types.TimedSample) {
	defer close(out)

	interval := time.Second / time.Duration(cfg.FPS)
	frameTicks := types.VideoFrameTicks(cfg.FPS)

	var timestamp int64
	next := time.Now()
	for tick := 0; cfg.MaxTicks == 0 || tick < cfg.MaxTicks; tick++ {
		if flag.ShouldStop() {
			return
		}
		select {
		case <-done:
			return
		default:
		}

		payload, err := cfg.Source.Capture()
		if err != nil {
			cfg.Collector.IncFrameCaptureFailure()
			cfg.Logger.Warn("frame capture failed, tick skipped", map[string]any{
				"tick":  tick,
				"error": err.Error(),
			})
		} else {
			select {
			case out <- types.TimedSample{Payload: payload, Timestamp: timestamp}:
			case <-done:
				return
			}
			cfg.Collector.IncFrameCaptured()
			timestamp += frameTicks
		}

		next = next.Add(interval)
		if d := time.Until(next); d > 0 {
			time.Sleep(d)
		}
	}
}
