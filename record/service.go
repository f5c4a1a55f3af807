package record

import (
	"time"

	"github.com/sayandeep-bot/spectosoft/capture"
	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
	"github.com/sayandeep-bot/spectosoft/upload"
)

// Session loop pacing.
const (
	defaultFailureBackoff = 30 * time.Second
	defaultSessionPause   = 5 * time.Second
)

// Params are the per-session recording knobs.
type Params struct {
	// Width and Height are the capture geometry in pixels.
	Width  int
	Height int
	// FPS is the video frame rate.
	FPS int
	// SegmentDuration is the wall-clock rotation period.
	SegmentDuration time.Duration
	// Container selects the segment format.
	Container types.Container
	// BitrateKbps is the target video bitrate.
	BitrateKbps int
	// FlipVertical inverts frame rows for bottom-up sources.
	FlipVertical bool
	// IncludeAudio records an audio track when a source is available.
	IncludeAudio bool
	// MaxTicks bounds each session to a fixed number of capture ticks;
	// 0 records until stopped.
	MaxTicks int
	// AudioDiscoveryTimeout bounds how long a session waits for the
	// audio source to report its format before going video-only.
	AudioDiscoveryTimeout time.Duration
}

// DefaultParams returns the stock recording configuration: 1080p at
// 15 fps, 30 second MP4 segments with audio.
func DefaultParams() Params {
	return Params{
		Width:                 1920,
		Height:                1080,
		FPS:                   15,
		SegmentDuration:       30 * time.Second,
		Container:             types.ContainerMP4,
		BitrateKbps:           4000,
		FlipVertical:          true,
		IncludeAudio:          true,
		AudioDiscoveryTimeout: 3 * time.Second,
	}
}

// withDefaults fills unset numeric fields from DefaultParams. Booleans
// are taken as given; callers wanting the stock values start from
// DefaultParams and override.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Width <= 0 {
		p.Width = d.Width
	}
	if p.Height <= 0 {
		p.Height = d.Height
	}
	if p.FPS <= 0 {
		p.FPS = d.FPS
	}
	if p.SegmentDuration <= 0 {
		p.SegmentDuration = d.SegmentDuration
	}
	if p.Container == "" {
		p.Container = d.Container
	}
	if p.BitrateKbps <= 0 {
		p.BitrateKbps = d.BitrateKbps
	}
	if p.AudioDiscoveryTimeout <= 0 {
		p.AudioDiscoveryTimeout = d.AudioDiscoveryTimeout
	}
	return p
}

// ServiceConfig wires the recording service.
type ServiceConfig struct {
	// NewFrames opens a frame source per session.
	NewFrames capture.FrameSourceFactory
	// NewAudio opens an audio source per session; nil records video
	// only.
	NewAudio capture.AudioSourceFactory
	// Factory opens segment writers.
	Factory WriterFactory
	// Store holds pending segments; Engine delivers them.
	Store  *pending.Store
	Engine *upload.Engine
	// SweepInterval paces the retry sweeper; 0 uses the engine
	// default.
	SweepInterval time.Duration
	// FailureBackoff and SessionPause override the loop pacing in
	// tests; 0 means the defaults.
	FailureBackoff time.Duration
	SessionPause   time.Duration

	Logger    *log.Logger
	Collector *metrics.Collector
}

// Service runs back-to-back recording sessions until stopped. A failed
// session is retried after a backoff; a session that ends cleanly
// (tick budget) rolls into the next one after a short pause. Each
// generation also runs a retry sweeper for the video backlog. Start
// and Stop are idempotent.
type Service struct {
	cfg ServiceConfig
	ctl lifecycle.Controller
}

// NewService builds the recording service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.FailureBackoff <= 0 {
		cfg.FailureBackoff = defaultFailureBackoff
	}
	if cfg.SessionPause <= 0 {
		cfg.SessionPause = defaultSessionPause
	}
	cfg.Logger = cfg.Logger.WithService("recording")
	return &Service{cfg: cfg}
}

// Start launches the recording loop. Reports whether a new generation
// started; a second Start while one is running is ignored.
func (s *Service) Start(params Params) bool {
	flag := s.ctl.Start()
	if flag == nil {
		s.cfg.Logger.Info("recording already running, ignoring start", nil)
		return false
	}
	p := params.withDefaults()
	s.cfg.Logger.Info("recording service started", map[string]any{
		"width":           p.Width,
		"height":          p.Height,
		"fps":             p.FPS,
		"segment_seconds": int(p.SegmentDuration / time.Second),
		"container":       string(p.Container),
		"audio":           p.IncludeAudio,
	})
	go s.run(flag, p)
	go s.cfg.Engine.RunSweeper(flag, types.KindVideo, s.cfg.SweepInterval)
	return true
}

// Stop signals the running generation. Reports whether anything was
// running. Does not wait for the session to wind down.
func (s *Service) Stop() bool {
	if !s.ctl.Stop() {
		s.cfg.Logger.Info("recording not running, ignoring stop", nil)
		return false
	}
	s.cfg.Logger.Info("recording stop requested", nil)
	return true
}

// Running reports whether a generation holds the slot.
func (s *Service) Running() bool {
	return s.ctl.Running()
}

func (s *Service) run(flag *lifecycle.Flag, p Params) {
	defer s.ctl.Release(flag)
	for !flag.ShouldStop() {
		err := RunSession(flag, SessionConfig{
			NewFrames: s.cfg.NewFrames,
			NewAudio:  s.cfg.NewAudio,
			Factory:   s.cfg.Factory,
			Store:     s.cfg.Store,
			Engine:    s.cfg.Engine,
			Params:    p,
			Logger:    s.cfg.Logger,
			Collector: s.cfg.Collector,
		})
		if err != nil {
			s.cfg.Logger.Error("recording session failed", map[string]any{
				"error": err.Error(),
			})
			if lifecycle.Sleep(flag, s.cfg.FailureBackoff) {
				break
			}
			continue
		}
		if lifecycle.Sleep(flag, s.cfg.SessionPause) {
			break
		}
	}
	s.cfg.Logger.Info("recording service stopped", nil)
}
