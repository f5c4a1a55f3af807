package upload

import (
	"context"
	"os"
	"time"

	"github.com/sayandeep-bot/spectosoft/lifecycle"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
)

// DefaultSweepInterval is the pause between background retry sweeps.
const DefaultSweepInterval = 300 * time.Second

// Engine couples the pending store with an uploader to give every
// artifact at-least-once delivery. Artifacts are removed from disk only
// after the uploader confirms success; everything else stays pending and
// is retried by a later sweep.
//
// Engine holds no per-artifact state, so sweeps are idempotent and safe
// to run concurrently with each other and with immediate deliveries.
type Engine struct {
	store     *pending.Store
	uploader  Uploader
	logger    *log.Logger
	collector *metrics.Collector
}

// NewEngine wires a store and uploader into a delivery engine.
// collector may be nil.
func NewEngine(store *pending.Store, uploader Uploader, logger *log.Logger, collector *metrics.Collector) *Engine {
	return &Engine{
		store:     store,
		uploader:  uploader,
		logger:    logger,
		collector: collector,
	}
}

// DeliverNow makes a single delivery attempt for a freshly persisted
// artifact and reports whether it was delivered. On success the artifact
// is removed; a failed removal is logged and tolerated since the next
// sweep may simply re-upload the file. On failure the artifact stays in
// the pending tree for the background sweeper.
func (e *Engine) DeliverNow(ctx context.Context, kind types.Kind, path string) bool {
	if err := e.uploader.Send(ctx, path, kind); err != nil {
		e.collector.IncUploadFailed(string(kind))
		e.logger.Warn("delivery failed, artifact kept for retry", map[string]any{
			"kind":  string(kind),
			"path":  path,
			"error": err.Error(),
		})
		return false
	}

	e.collector.IncUploadSucceeded(string(kind))
	if err := e.store.Remove(path); err != nil {
		e.collector.IncDeleteFailure()
		e.logger.Warn("could not remove delivered artifact", map[string]any{
			"kind":  string(kind),
			"path":  path,
			"error": err.Error(),
		})
		return true
	}

	e.logger.Info("artifact delivered", map[string]any{
		"kind": string(kind),
		"path": path,
	})
	return true
}

// SweepResult summarizes one retry pass over a kind's backlog.
type SweepResult struct {
	Kind     types.Kind
	Found    int
	Uploaded int
	Failed   int
}

// Remaining reports how many artifacts the sweep left pending.
func (r SweepResult) Remaining() int {
	return r.Found - r.Uploaded
}

// Sweep walks the pending backlog for a kind and attempts to deliver
// each artifact, oldest first. Failed artifacts are left in place. An
// artifact that vanished between scan and send was claimed by a
// concurrent delivery and counts as neither uploaded nor failed here.
func (e *Engine) Sweep(ctx context.Context, kind types.Kind) SweepResult {
	result := SweepResult{Kind: kind}

	paths, err := e.store.Scan(kind)
	if err != nil {
		e.logger.Error("pending scan failed", map[string]any{
			"kind":  string(kind),
			"error": err.Error(),
		})
		return result
	}
	defer e.collector.IncSweep()

	result.Found = len(paths)
	if result.Found == 0 {
		return result
	}

	e.logger.Info("sweeping pending artifacts", map[string]any{
		"kind":  string(kind),
		"found": result.Found,
	})

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if e.DeliverNow(ctx, kind, path) {
			result.Uploaded++
		} else {
			result.Failed++
		}
	}

	e.logger.Info("sweep complete", map[string]any{
		"kind":      string(kind),
		"found":     result.Found,
		"uploaded":  result.Uploaded,
		"failed":    result.Failed,
		"remaining": result.Remaining(),
	})
	return result
}

// RunSweeper retries a kind's backlog on a fixed interval until the
// lifecycle flag is signalled. The first sweep happens one full interval
// after start; callers wanting an immediate pass run Sweep themselves.
func (e *Engine) RunSweeper(flag *lifecycle.Flag, kind types.Kind, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	for {
		if lifecycle.Sleep(flag, interval) {
			return
		}
		e.Sweep(context.Background(), kind)
	}
}
