package screenshot

import (
	"context"
	"time"

	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
	"github.com/sayandeep-bot/spectosoft/upload"
)

// DefaultInterval between captures.
const DefaultInterval = 10 * time.Second

// grabTimeout bounds one capture so a wedged grab process cannot stall
// the loop past its own interval.
const grabTimeout = 10 * time.Second

// ServiceConfig wires the screenshot service.
type ServiceConfig struct {
	Grabber Grabber
	Store   *pending.Store
	Engine  *upload.Engine
	// Interval between captures; 0 means DefaultInterval.
	Interval time.Duration
	// SweepInterval paces the retry sweeper; 0 uses the engine
	// default.
	SweepInterval time.Duration

	Logger    *log.Logger
	Collector *metrics.Collector
}

// Service captures a screenshot on a fixed interval, persists it, and
// attempts immediate delivery. Capture and persist failures skip the
// tick; delivery failures leave the file for the sweeper. Start and
// Stop are idempotent.
type Service struct {
	cfg ServiceConfig
	ctl lifecycle.Controller
}

// NewService builds the screenshot service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	cfg.Logger = cfg.Logger.WithService("screenshots")
	return &Service{cfg: cfg}
}

// Start launches the capture loop. Reports whether a new generation
// started. The first capture happens immediately, not after one
// interval.
func (s *Service) Start() bool {
	flag := s.ctl.Start()
	if flag == nil {
		s.cfg.Logger.Info("screenshots already running, ignoring start", nil)
		return false
	}
	s.cfg.Logger.Info("screenshot service started", map[string]any{
		"interval_seconds": int(s.cfg.Interval / time.Second),
	})
	go s.run(flag)
	go s.cfg.Engine.RunSweeper(flag, types.KindScreenshot, s.cfg.SweepInterval)
	return true
}

// Stop signals the running generation. Reports whether anything was
// running.
func (s *Service) Stop() bool {
	if !s.ctl.Stop() {
		s.cfg.Logger.Info("screenshots not running, ignoring stop", nil)
		return false
	}
	s.cfg.Logger.Info("screenshot stop requested", nil)
	return true
}

// Running reports whether a generation holds the slot.
func (s *Service) Running() bool {
	return s.ctl.Running()
}

func (s *Service) run(flag *lifecycle.Flag) {
	defer s.ctl.Release(flag)
	for !flag.ShouldStop() {
		s.captureOnce()
		if lifecycle.Sleep(flag, s.cfg.Interval) {
			break
		}
	}
	s.cfg.Logger.Info("screenshot service stopped", nil)
}

func (s *Service) captureOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), grabTimeout)
	defer cancel()

	image, err := s.cfg.Grabber.Grab(ctx)
	if err != nil {
		s.cfg.Logger.Warn("screenshot capture failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	path, err := s.cfg.Store.Persist(types.KindScreenshot, ".png", image)
	if err != nil {
		s.cfg.Collector.IncPersistFailure(string(types.KindScreenshot))
		s.cfg.Logger.Error("could not persist screenshot", map[string]any{
			"error": err.Error(),
		})
		return
	}
	s.cfg.Collector.IncPersisted(string(types.KindScreenshot))

	s.cfg.Engine.DeliverNow(context.Background(), types.KindScreenshot, path)
}
