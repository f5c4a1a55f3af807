package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/sayandeep-bot/spectosoft/iox"
	"github.com/sayandeep-bot/spectosoft/log"
	"github.com/sayandeep-bot/spectosoft/metrics"
	"github.com/sayandeep-bot/spectosoft/pending"
	"github.com/sayandeep-bot/spectosoft/types"
)

// SegmentState tracks a segment through its lifecycle.
type SegmentState int

// Segment lifecycle states.
const (
	// SegmentOpen is receiving samples.
	SegmentOpen SegmentState = iota
	// SegmentFinalizing is flushing its writer.
	SegmentFinalizing
	// SegmentCommitted passed the completeness check and is eligible
	// for delivery.
	SegmentCommitted
	// SegmentDiscarded fell short of its expected frame count and was
	// deleted.
	SegmentDiscarded
)

// String returns the state name for logs.
func (s SegmentState) String() string {
	switch s {
	case SegmentOpen:
		return "open"
	case SegmentFinalizing:
		return "finalizing"
	case SegmentCommitted:
		return "committed"
	case SegmentDiscarded:
		return "discarded"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Segment is the bookkeeping for one container file.
type Segment struct {
	// Path is the segment file in the pending store.
	Path string
	// Expected is the frame count a full segment must reach.
	Expected int
	// Actual is the frame count written so far.
	Actual int
	// State is the lifecycle position.
	State SegmentState
	// OpenedAt is when the segment started, for rotation scheduling.
	OpenedAt time.Time
}

// ManagerConfig wires a segment Manager.
type ManagerConfig struct {
	// Factory opens writers, one per segment.
	Factory WriterFactory
	// Store allocates segment paths under the video pending root.
	Store *pending.Store
	// Template carries the per-session encoding parameters; Path is
	// overwritten for each segment.
	Template SegmentSpec
	// Duration is the wall-clock rotation period.
	Duration time.Duration

	Logger    *log.Logger
	Collector *metrics.Collector
}

// Manager owns the current segment of a recording session: it opens
// writers, counts frames, rotates on schedule, and applies the
// completeness policy on every finalize. Segments whose actual frame
// count falls below expected are deleted instead of committed, so a
// half-recorded file never reaches the upload backlog.
//
// Not safe for concurrent use; the session goroutine is the only
// caller.
type Manager struct {
	cfg      ManagerConfig
	expected int

	writer  SegmentWriter
	segment Segment

	now func() time.Time
}

// NewManager builds a Manager. The expected frame count is the frame
// rate times the whole seconds of the rotation period.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:      cfg,
		expected: cfg.Template.FPS * int(cfg.Duration/time.Second),
		now:      time.Now,
	}
}

// Open starts the first segment.
func (m *Manager) Open() error {
	if m.writer != nil {
		return errors.New("segment already open")
	}
	w, seg, err := m.open()
	if err != nil {
		return err
	}
	m.writer, m.segment = w, seg
	return nil
}

func (m *Manager) open() (SegmentWriter, Segment, error) {
	path, err := m.cfg.Store.Allocate(types.KindVideo, m.cfg.Template.Container.Ext())
	if err != nil {
		return nil, Segment{}, fmt.Errorf("allocate segment path: %w", err)
	}
	spec := m.cfg.Template
	spec.Path = path
	w, err := m.cfg.Factory(spec)
	if err != nil {
		return nil, Segment{}, fmt.Errorf("open segment writer: %w", err)
	}
	seg := Segment{
		Path:     path,
		Expected: m.expected,
		State:    SegmentOpen,
		OpenedAt: m.now(),
	}
	m.cfg.Logger.Debug("segment opened", map[string]any{
		"path":     path,
		"expected": seg.Expected,
	})
	return w, seg, nil
}

// WriteVideo appends one frame to the current segment.
func (m *Manager) WriteVideo(sample types.TimedSample) error {
	if err := m.writer.WriteVideo(sample); err != nil {
		return err
	}
	m.segment.Actual++
	return nil
}

// WriteAudio appends one audio chunk to the current segment.
func (m *Manager) WriteAudio(sample types.TimedSample) error {
	return m.writer.WriteAudio(sample)
}

// Current returns a copy of the open segment's bookkeeping.
func (m *Manager) Current() Segment {
	return m.segment
}

// RotateIfDue finalizes the current segment and opens the next one
// when the rotation period has elapsed. The new writer is opened
// first: if that fails the current segment is left untouched and the
// caller decides its fate. The finished segment's commit path is
// returned when it passed the completeness check, "" otherwise.
func (m *Manager) RotateIfDue() (committed string, rotated bool, err error) {
	if m.now().Sub(m.segment.OpenedAt) < m.cfg.Duration {
		return "", false, nil
	}
	next, nextSeg, err := m.open()
	if err != nil {
		return "", false, err
	}
	finished, finishedSeg := m.writer, m.segment
	m.writer, m.segment = next, nextSeg
	return m.finalize(finished, finishedSeg), true, nil
}

// Close finalizes the current segment and returns its commit path, or
// "" when the segment was discarded or nothing was open.
func (m *Manager) Close() string {
	if m.writer == nil {
		return ""
	}
	w, seg := m.writer, m.segment
	m.writer = nil
	m.segment = Segment{}
	return m.finalize(w, seg)
}

// Abandon drops the current segment after a writer error: the writer
// is released best-effort and the file deleted. Safe to call when
// nothing is open.
func (m *Manager) Abandon() {
	if m.writer == nil {
		return
	}
	w, seg := m.writer, m.segment
	m.writer = nil
	m.segment = Segment{}

	iox.DiscardErr(w.Finalize)
	if err := m.cfg.Store.Remove(seg.Path); err != nil {
		m.cfg.Logger.Warn("could not remove abandoned segment", map[string]any{
			"path":  seg.Path,
			"error": err.Error(),
		})
	}
	m.cfg.Collector.IncSegmentAbandoned()
	m.cfg.Logger.Warn("segment abandoned", map[string]any{
		"path":   seg.Path,
		"frames": seg.Actual,
	})
}

// finalize flushes one segment and applies the completeness policy.
// Returns the segment path when it committed, "" otherwise.
func (m *Manager) finalize(w SegmentWriter, seg Segment) string {
	seg.State = SegmentFinalizing
	if err := w.Finalize(); err != nil {
		m.cfg.Collector.IncSegmentAbandoned()
		m.cfg.Logger.Error("segment finalize failed", map[string]any{
			"path":  seg.Path,
			"error": err.Error(),
		})
		if rerr := m.cfg.Store.Remove(seg.Path); rerr != nil {
			m.cfg.Logger.Warn("could not remove failed segment", map[string]any{
				"path":  seg.Path,
				"error": rerr.Error(),
			})
		}
		return ""
	}

	if seg.Actual < seg.Expected {
		seg.State = SegmentDiscarded
		m.cfg.Collector.IncSegmentDiscarded()
		m.cfg.Logger.Warn("segment incomplete, deleting", map[string]any{
			"path":     seg.Path,
			"frames":   seg.Actual,
			"expected": seg.Expected,
		})
		if err := m.cfg.Store.Remove(seg.Path); err != nil {
			m.cfg.Logger.Warn("could not remove incomplete segment", map[string]any{
				"path":  seg.Path,
				"error": err.Error(),
			})
		}
		return ""
	}

	seg.State = SegmentCommitted
	m.cfg.Collector.IncSegmentCommitted()
	m.cfg.Logger.Info("segment committed", map[string]any{
		"path":   seg.Path,
		"frames": seg.Actual,
		"state":  seg.State.String(),
	})
	return seg.Path
}
