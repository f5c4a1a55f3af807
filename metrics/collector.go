// Package metrics provides agent-lifetime metrics collection.
//
// The Collector accumulates counters across capture, segment, and
// delivery paths. It is a leaf package with no internal dependencies;
// per-kind maps are keyed by plain strings so the package stays free of
// the types package.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after
// creation. The JSON tags are the status endpoint's wire shape.
type Snapshot struct {
	// Capture
	FramesCaptured       int64 `json:"frames_captured"`
	FrameCaptureFailures int64 `json:"frame_capture_failures"`
	AudioChunks          int64 `json:"audio_chunks"`

	// Segments
	SegmentsCommitted int64 `json:"segments_committed"`
	SegmentsDiscarded int64 `json:"segments_discarded"`
	SegmentsAbandoned int64 `json:"segments_abandoned"`

	// Pending store
	ArtifactsPersisted map[string]int64 `json:"artifacts_persisted"`
	PersistFailures    map[string]int64 `json:"persist_failures"`

	// Delivery
	UploadsSucceeded map[string]int64 `json:"uploads_succeeded"`
	UploadsFailed    map[string]int64 `json:"uploads_failed"`
	DeleteFailures   int64            `json:"delete_failures"`
	SweepsCompleted  int64            `json:"sweeps_completed"`

	// Dimensions (informational, set at construction)
	AgentID  string `json:"agent_id"`
	Uploader string `json:"uploader"`
}

// Collector accumulates metrics for the lifetime of the agent process.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe
// so components can run without metrics wired.
type Collector struct {
	mu sync.Mutex

	framesCaptured       int64
	frameCaptureFailures int64
	audioChunks          int64

	segmentsCommitted int64
	segmentsDiscarded int64
	segmentsAbandoned int64

	artifactsPersisted map[string]int64
	persistFailures    map[string]int64

	uploadsSucceeded map[string]int64
	uploadsFailed    map[string]int64
	deleteFailures   int64
	sweepsCompleted  int64

	agentID  string
	uploader string
}

// NewCollector creates a Collector with dimension labels.
// agentID identifies this installation; uploader names the delivery
// backend (http or s3).
func NewCollector(agentID, uploader string) *Collector {
	return &Collector{
		artifactsPersisted: make(map[string]int64),
		persistFailures:    make(map[string]int64),
		uploadsSucceeded:   make(map[string]int64),
		uploadsFailed:      make(map[string]int64),
		agentID:            agentID,
		uploader:           uploader,
	}
}

// --- Capture ---

// IncFrameCaptured records one video frame handed to the synchronizer.
func (c *Collector) IncFrameCaptured() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.framesCaptured++
	c.mu.Unlock()
}

// IncFrameCaptureFailure records a frame grab error (tick skipped).
func (c *Collector) IncFrameCaptureFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.frameCaptureFailures++
	c.mu.Unlock()
}

// IncAudioChunk records one audio chunk handed to the synchronizer.
func (c *Collector) IncAudioChunk() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.audioChunks++
	c.mu.Unlock()
}

// --- Segments ---

// IncSegmentCommitted records a finalized segment that met the
// expected-frame threshold and entered the pending store.
func (c *Collector) IncSegmentCommitted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.segmentsCommitted++
	c.mu.Unlock()
}

// IncSegmentDiscarded records a finalized segment deleted for falling
// short of the expected frame count.
func (c *Collector) IncSegmentDiscarded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.segmentsDiscarded++
	c.mu.Unlock()
}

// IncSegmentAbandoned records a segment dropped due to a writer error.
func (c *Collector) IncSegmentAbandoned() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.segmentsAbandoned++
	c.mu.Unlock()
}

// --- Pending store ---

// IncPersisted records a durable artifact write for the given kind.
func (c *Collector) IncPersisted(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.artifactsPersisted[kind]++
	c.mu.Unlock()
}

// IncPersistFailure records a failed artifact write for the given kind.
func (c *Collector) IncPersistFailure(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.persistFailures[kind]++
	c.mu.Unlock()
}

// --- Delivery ---

// IncUploadSucceeded records a confirmed delivery for the given kind.
func (c *Collector) IncUploadSucceeded(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.uploadsSucceeded[kind]++
	c.mu.Unlock()
}

// IncUploadFailed records a failed delivery attempt for the given kind.
func (c *Collector) IncUploadFailed(kind string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.uploadsFailed[kind]++
	c.mu.Unlock()
}

// IncDeleteFailure records a failure to remove an already-delivered
// artifact. The artifact may be re-uploaded by a later sweep.
func (c *Collector) IncDeleteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.deleteFailures++
	c.mu.Unlock()
}

// IncSweep records one completed sweep pass.
func (c *Collector) IncSweep() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.sweepsCompleted++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all counters.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		FramesCaptured:       c.framesCaptured,
		FrameCaptureFailures: c.frameCaptureFailures,
		AudioChunks:          c.audioChunks,

		SegmentsCommitted: c.segmentsCommitted,
		SegmentsDiscarded: c.segmentsDiscarded,
		SegmentsAbandoned: c.segmentsAbandoned,

		ArtifactsPersisted: copyCounts(c.artifactsPersisted),
		PersistFailures:    copyCounts(c.persistFailures),

		UploadsSucceeded: copyCounts(c.uploadsSucceeded),
		UploadsFailed:    copyCounts(c.uploadsFailed),
		DeleteFailures:   c.deleteFailures,
		SweepsCompleted:  c.sweepsCompleted,

		AgentID:  c.agentID,
		Uploader: c.uploader,
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
