// Package control serves the local management API: start/stop per
// service, a status report, and Prometheus metrics. It binds wherever
// the config points it, which should stay on loopback.
package control

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sayandeep-bot/spectosoft/agent"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/record"
)

// ShutdownTimeout bounds the connection drain on shutdown.
const ShutdownTimeout = 10 * time.Second

// readHeaderTimeout guards against idle header writers holding
// connections open.
const readHeaderTimeout = 5 * time.Second

// ServerConfig wires the control server.
type ServerConfig struct {
	// Agent is the managed agent.
	Agent *agent.Agent
	// Listen is the bind address, e.g. "127.0.0.1:7710".
	Listen string
	// Recording supplies the default parameters for starts whose
	// request body leaves fields unset.
	Recording record.Params

	Logger *log.Logger
}

// Server is the management HTTP surface.
type Server struct {
	cfg      ServerConfig
	exporter *metrics.Exporter
	srv      *http.Server
}

// NewServer builds the control server. Call ListenAndServe to bind.
func NewServer(cfg ServerConfig) *Server {
	cfg.Logger = cfg.Logger.WithService("control")
	s := &Server{
		cfg:      cfg,
		exporter: metrics.NewExporter(),
	}
	s.srv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Router builds the route tree. Exposed so tests can drive the full
// middleware stack through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(s.cfg.Logger))
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recording/start", s.handleRecordingStart)
		r.Post("/recording/stop", s.handleStop("recording", s.cfg.Agent.StopRecording))
		r.Post("/screenshots/start", s.handleStart("screenshots", s.cfg.Agent.StartScreenshots))
		r.Post("/screenshots/stop", s.handleStop("screenshots", s.cfg.Agent.StopScreenshots))
		r.Post("/activity/start", s.handleStart("activity", s.cfg.Agent.StartActivity))
		r.Post("/activity/stop", s.handleStop("activity", s.cfg.Agent.StopActivity))
		r.Get("/status", s.handleStatus)
	})
	r.Method(http.MethodGet, "/metrics", s.exporter.Handler(s.cfg.Agent.Collector()))
	return r
}

// ListenAndServe blocks serving the API until Shutdown or a listener
// error. A closed server returns nil.
func (s *Server) ListenAndServe() error {
	s.cfg.Logger.Info("control server listening", map[string]any{
		"addr": s.cfg.Listen,
	})
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	drain, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()
	s.cfg.Logger.Info("control server draining", nil)
	return s.srv.Shutdown(drain)
}
