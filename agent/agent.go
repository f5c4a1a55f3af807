// Package agent composes the pending store, delivery engine, metrics
// collector, and the three capture services into one monitoring agent.
//
// The Agent is the process composition root: the CLI and the control
// surface both drive it, and embedders feed OS input events into its
// Tracker. Services share one store and one delivery engine so backlog
// from any source drains through the same retry path.
package agent

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/sayandeep-bot/spectosoft/activity"
	"github.com/sayandeep-bot/spectosoft/capture"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/record"
	"github.com/sayandeep-bot/spectosoft/screenshot"
	"github.com/sayandeep-bot/spectosoft/types"
	"github.com/sayandeep-bot/spectosoft/upload"
)

// defaultSweepStagger spaces the one-shot startup sweeps so the first
// seconds of a session are not spent saturating the uplink.
const defaultSweepStagger = 2 * time.Second

// Config wires an Agent.
type Config struct {
	// AgentID identifies this installation in logs, metrics, and
	// status reports.
	AgentID string
	// Version is the build version reported by Status.
	Version string
	// DataRoot is the pending store root directory.
	DataRoot string
	// Uploader delivers artifacts; UploaderName labels the backend in
	// metrics ("http" or "s3").
	Uploader     upload.Uploader
	UploaderName string

	// FFmpeg locates the capture binary and inputs for the default
	// backends.
	FFmpeg capture.FFmpegConfig

	// NewFrames overrides the recording frame source (for testing).
	// If nil, uses the ffmpeg screen grabber.
	NewFrames capture.FrameSourceFactory
	// NewAudio overrides the recording audio source. If nil, uses the
	// ffmpeg loopback reader.
	NewAudio capture.AudioSourceFactory
	// Writers overrides the segment writer factory. If nil, uses the
	// ffmpeg encoder.
	Writers record.WriterFactory
	// Grabber overrides the screenshot backend. If nil, uses the
	// one-shot ffmpeg grabber.
	Grabber screenshot.Grabber
	// Prober resolves the focused window at activity flush time. Nil
	// disables focus events.
	Prober activity.WindowProber

	// ScreenshotInterval between screenshots; 0 means the service
	// default.
	ScreenshotInterval time.Duration
	// ActivityFlushInterval between activity flushes; 0 means the
	// service default.
	ActivityFlushInterval time.Duration
	// SweepInterval paces the per-service retry sweepers; 0 means the
	// engine default.
	SweepInterval time.Duration
	// SweepStagger spaces the startup sweeps (screenshots at 1x,
	// activity at 2x, video at 3x); 0 means defaultSweepStagger.
	SweepStagger time.Duration

	Logger *log.Logger
}

// Agent owns the shared store, engine, and collector plus the
// recording, screenshot, and activity services.
type Agent struct {
	cfg       Config
	store     *pending.Store
	engine    *upload.Engine
	collector *metrics.Collector
	tracker   *activity.Tracker

	recording   *record.Service
	screenshots *screenshot.Service
	activity    *activity.Service

	logger *log.Logger
}

// New builds an Agent and schedules the startup sweeps. Services are
// constructed stopped; call the Start methods to run them.
func New(cfg Config) (*Agent, error) {
	if cfg.AgentID == "" {
		return nil, errors.New("agent: AgentID is required")
	}
	if cfg.DataRoot == "" {
		return nil, errors.New("agent: DataRoot is required")
	}
	if cfg.Uploader == nil {
		return nil, errors.New("agent: Uploader is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("agent: Logger is required")
	}
	if cfg.SweepStagger <= 0 {
		cfg.SweepStagger = defaultSweepStagger
	}
	if cfg.NewFrames == nil {
		ff := cfg.FFmpeg
		cfg.NewFrames = func(width, height, fps int) (capture.FrameSource, error) {
			return capture.NewFFmpegFrameSource(ff, width, height, fps)
		}
	}
	if cfg.NewAudio == nil {
		ff := cfg.FFmpeg
		cfg.NewAudio = func() (capture.AudioSource, error) {
			return capture.NewFFmpegAudioSource(ff), nil
		}
	}
	if cfg.Writers == nil {
		cfg.Writers = record.NewFFmpegWriterFactory(record.FFmpegWriterConfig{
			Binary: cfg.FFmpeg.Binary,
		})
	}
	if cfg.Grabber == nil {
		cfg.Grabber = screenshot.NewFFmpegGrabber(screenshot.FFmpegGrabberConfig{
			Binary:  cfg.FFmpeg.Binary,
			Display: cfg.FFmpeg.Display,
		})
	}

	store := pending.NewStore(cfg.DataRoot)
	collector := metrics.NewCollector(cfg.AgentID, cfg.UploaderName)
	engine := upload.NewEngine(store, cfg.Uploader, cfg.Logger, collector)
	tracker := activity.NewTracker()

	a := &Agent{
		cfg:       cfg,
		store:     store,
		engine:    engine,
		collector: collector,
		tracker:   tracker,
		logger:    cfg.Logger,
	}
	a.recording = record.NewService(record.ServiceConfig{
		NewFrames:     cfg.NewFrames,
		NewAudio:      cfg.NewAudio,
		Factory:       cfg.Writers,
		Store:         store,
		Engine:        engine,
		SweepInterval: cfg.SweepInterval,
		Logger:        cfg.Logger,
		Collector:     collector,
	})
	a.screenshots = screenshot.NewService(screenshot.ServiceConfig{
		Grabber:       cfg.Grabber,
		Store:         store,
		Engine:        engine,
		Interval:      cfg.ScreenshotInterval,
		SweepInterval: cfg.SweepInterval,
		Logger:        cfg.Logger,
		Collector:     collector,
	})
	a.activity = activity.NewService(activity.ServiceConfig{
		Tracker:       tracker,
		Prober:        cfg.Prober,
		Store:         store,
		Engine:        engine,
		FlushInterval: cfg.ActivityFlushInterval,
		SweepInterval: cfg.SweepInterval,
		Logger:        cfg.Logger,
		Collector:     collector,
	})

	a.scheduleStartupSweeps()
	return a, nil
}

// scheduleStartupSweeps drains backlog left by a previous run: one
// sweep per kind with an existing pending root, staggered smallest
// artifacts first. Fire-and-forget; the sweeps die with the process.
func (a *Agent) scheduleStartupSweeps() {
	order := []types.Kind{types.KindScreenshot, types.KindActivity, types.KindVideo}
	for i, kind := range order {
		if _, err := os.Stat(a.store.KindRoot(kind)); err != nil {
			continue
		}
		delay := time.Duration(i+1) * a.cfg.SweepStagger
		a.logger.Info("startup sweep scheduled", map[string]any{
			"kind":     string(kind),
			"delay_ms": delay.Milliseconds(),
		})
		go func() {
			time.Sleep(delay)
			a.engine.Sweep(context.Background(), kind)
		}()
	}
}

// Tracker is the activity input sink. OS input hooks feed it; the
// activity service drains it.
func (a *Agent) Tracker() *activity.Tracker {
	return a.tracker
}

// Collector exposes the shared metrics collector for exporters.
func (a *Agent) Collector() *metrics.Collector {
	return a.collector
}

// Store exposes the shared pending store for read-only inspection.
func (a *Agent) Store() *pending.Store {
	return a.store
}

// Engine exposes the shared delivery engine for one-shot sweeps.
func (a *Agent) Engine() *upload.Engine {
	return a.engine
}

// StartRecording launches the recording service with the given
// parameters. Reports whether a new session chain started.
func (a *Agent) StartRecording(params record.Params) bool {
	return a.recording.Start(params)
}

// StopRecording stops the recording service.
func (a *Agent) StopRecording() bool {
	return a.recording.Stop()
}

// StartScreenshots launches the screenshot service.
func (a *Agent) StartScreenshots() bool {
	return a.screenshots.Start()
}

// StopScreenshots stops the screenshot service.
func (a *Agent) StopScreenshots() bool {
	return a.screenshots.Stop()
}

// StartActivity launches the activity service.
func (a *Agent) StartActivity() bool {
	return a.activity.Start()
}

// StopActivity stops the activity service.
func (a *Agent) StopActivity() bool {
	return a.activity.Stop()
}

// RecordingRunning reports the recording service state.
func (a *Agent) RecordingRunning() bool { return a.recording.Running() }

// ScreenshotsRunning reports the screenshot service state.
func (a *Agent) ScreenshotsRunning() bool { return a.screenshots.Running() }

// ActivityRunning reports the activity service state.
func (a *Agent) ActivityRunning() bool { return a.activity.Running() }

// StopAll stops every service. Used on shutdown.
func (a *Agent) StopAll() {
	a.recording.Stop()
	a.screenshots.Stop()
	a.activity.Stop()
}
