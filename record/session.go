package record

import (
	"context"
	"fmt"
	"sync"

	"github.com/sayandeep-bot/spectosoft/capture"
	"github.com/sayandeep-bot/spectosoft/iox"
	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
	"github.com/sayandeep-bot/spectosoft/upload"
)

// Channel depths between producers and the session consumer. Video is
// shallow so backpressure reaches the pacer quickly; audio buffers a
// few seconds of 10 ms chunks so brief consumer stalls drop nothing.
const (
	videoChannelDepth = 8
	audioChannelDepth = 256
)

// SessionConfig wires one recording session.
type SessionConfig struct {
	// NewFrames opens the session's frame source.
	NewFrames capture.FrameSourceFactory
	// NewAudio opens the session's audio source; nil records video
	// only.
	NewAudio capture.AudioSourceFactory
	// Factory opens segment writers.
	Factory WriterFactory
	// Store allocates segment files; Engine delivers committed ones.
	Store  *pending.Store
	Engine *upload.Engine
	// Params carries the session's recording knobs, already defaulted.
	Params Params

	Logger    *log.Logger
	Collector *metrics.Collector
}

// RunSession records container segments until the flag is signalled or
// the tick budget runs out. Audio setup failures degrade the session
// to video-only; frame source and writer failures end it with an
// error, leaving the service loop to back off and retry.
func RunSession(flag *lifecycle.Flag, cfg SessionConfig) error {
	p := cfg.Params

	frames, err := cfg.NewFrames(p.Width, p.Height, p.FPS)
	if err != nil {
		return fmt.Errorf("open frame source: %w", err)
	}
	defer iox.DiscardClose(frames)

	audioSrc, format := openAudio(cfg)
	if audioSrc != nil {
		defer iox.DiscardClose(audioSrc)
	}

	// done tears down producers blocked on a send when the consumer
	// leaves early. Producers must be joined before the deferred
	// source Close calls run, so a producer never polls a closed
	// source.
	done := make(chan struct{})
	var wg sync.WaitGroup
	defer func() {
		close(done)
		wg.Wait()
	}()

	videoCh := make(chan types.TimedSample, videoChannelDepth)
	wg.Add(1)
	go func() {
		defer wg.Done()
		capture.RunVideoProducer(flag, done, capture.VideoConfig{
			Source:    frames,
			FPS:       p.FPS,
			MaxTicks:  p.MaxTicks,
			Logger:    cfg.Logger,
			Collector: cfg.Collector,
		}, videoCh)
	}()

	var audioCh chan types.TimedSample
	if audioSrc != nil {
		audioCh = make(chan types.TimedSample, audioChannelDepth)
		wg.Add(1)
		go func() {
			defer wg.Done()
			capture.RunAudioProducer(flag, done, capture.AudioConfig{
				Source:    audioSrc,
				Format:    *format,
				Logger:    cfg.Logger,
				Collector: cfg.Collector,
			}, audioCh)
		}()
	}

	template := SegmentSpec{
		Container:    p.Container,
		Width:        p.Width,
		Height:       p.Height,
		FPS:          p.FPS,
		BitrateKbps:  p.BitrateKbps,
		FlipVertical: p.FlipVertical,
		Audio:        format,
	}
	manager := NewManager(ManagerConfig{
		Factory:   cfg.Factory,
		Store:     cfg.Store,
		Template:  template,
		Duration:  p.SegmentDuration,
		Logger:    cfg.Logger,
		Collector: cfg.Collector,
	})
	if err := manager.Open(); err != nil {
		return err
	}

	in := NewInterleaver(audioCh)

	for sample := range videoCh {
		// Audio due before this frame lands in the segment the frame
		// closes, not the one it opens.
		if _, err := in.DrainBefore(sample.Timestamp, manager); err != nil {
			manager.Abandon()
			return fmt.Errorf("write audio: %w", err)
		}
		committed, rotated, err := manager.RotateIfDue()
		if err != nil {
			manager.Abandon()
			return fmt.Errorf("rotate segment: %w", err)
		}
		if rotated && committed != "" {
			// Delivery must not stall the capture loop; a failure
			// leaves the segment for the sweeper.
			go cfg.Engine.DeliverNow(context.Background(), types.KindVideo, committed)
		}
		if err := manager.WriteVideo(sample); err != nil {
			manager.Abandon()
			return fmt.Errorf("write frame: %w", err)
		}
	}

	if committed := manager.Close(); committed != "" {
		cfg.Engine.DeliverNow(context.Background(), types.KindVideo, committed)
	}
	return nil
}

// openAudio starts audio capture and discovers its format. Any failure
// here degrades the session to video-only rather than aborting it.
func openAudio(cfg SessionConfig) (capture.AudioSource, *types.AudioFormat) {
	if !cfg.Params.IncludeAudio || cfg.NewAudio == nil {
		return nil, nil
	}
	src, err := cfg.NewAudio()
	if err != nil {
		cfg.Logger.Warn("audio source unavailable, recording video only", map[string]any{
			"error": err.Error(),
		})
		return nil, nil
	}
	format, err := capture.DiscoverAudio(src, cfg.Params.AudioDiscoveryTimeout)
	if err != nil {
		cfg.Logger.Warn("audio discovery failed, recording video only", map[string]any{
			"error": err.Error(),
		})
		iox.DiscardClose(src)
		return nil, nil
	}
	cfg.Logger.Info("audio format discovered", map[string]any{
		"sample_rate": format.SampleRate,
		"channels":    format.Channels,
		"bits":        format.BitsPerSample,
	})
	return src, &format
}
