package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exposes Collector counters in Prometheus exposition format.
// Gauges are refreshed from a Snapshot on every scrape, so the exporter
// never races the hot capture path.
type Exporter struct {
	registry *prometheus.Registry

	framesCaptured       prometheus.Gauge
	frameCaptureFailures prometheus.Gauge
	audioChunks          prometheus.Gauge

	segmentsCommitted prometheus.Gauge
	segmentsDiscarded prometheus.Gauge
	segmentsAbandoned prometheus.Gauge

	artifactsPersisted *prometheus.GaugeVec
	persistFailures    *prometheus.GaugeVec
	uploadsSucceeded   *prometheus.GaugeVec
	uploadsFailed      *prometheus.GaugeVec

	deleteFailures  prometheus.Gauge
	sweepsCompleted prometheus.Gauge
}

// NewExporter creates an Exporter with all gauges registered on a
// private registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		framesCaptured: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_frames_captured_total",
			Help: "Video frames handed to the synchronizer.",
		}),
		frameCaptureFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_frame_capture_failures_total",
			Help: "Video frame grab errors (tick skipped).",
		}),
		audioChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_audio_chunks_total",
			Help: "Audio chunks handed to the synchronizer.",
		}),
		segmentsCommitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_segments_committed_total",
			Help: "Finalized segments that entered the pending store.",
		}),
		segmentsDiscarded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_segments_discarded_total",
			Help: "Finalized segments deleted for missing frames.",
		}),
		segmentsAbandoned: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_segments_abandoned_total",
			Help: "Segments dropped due to writer errors.",
		}),
		artifactsPersisted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spectosoft_artifacts_persisted_total",
			Help: "Artifacts durably written to the pending store.",
		}, []string{"kind"}),
		persistFailures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spectosoft_persist_failures_total",
			Help: "Failed pending store writes.",
		}, []string{"kind"}),
		uploadsSucceeded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spectosoft_uploads_succeeded_total",
			Help: "Artifacts delivered and removed from the pending store.",
		}, []string{"kind"}),
		uploadsFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spectosoft_uploads_failed_total",
			Help: "Failed delivery attempts.",
		}, []string{"kind"}),
		deleteFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_delete_failures_total",
			Help: "Delivered artifacts that could not be removed.",
		}),
		sweepsCompleted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spectosoft_sweeps_completed_total",
			Help: "Completed sweep passes over the pending store.",
		}),
	}

	e.registry.MustRegister(
		e.framesCaptured,
		e.frameCaptureFailures,
		e.audioChunks,
		e.segmentsCommitted,
		e.segmentsDiscarded,
		e.segmentsAbandoned,
		e.artifactsPersisted,
		e.persistFailures,
		e.uploadsSucceeded,
		e.uploadsFailed,
		e.deleteFailures,
		e.sweepsCompleted,
	)
	return e
}

// Handler returns an http.Handler that refreshes every gauge from a
// fresh Snapshot of c before serving the scrape.
func (e *Exporter) Handler(c *Collector) http.Handler {
	promHandler := promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.update(c.Snapshot())
		promHandler.ServeHTTP(w, r)
	})
}

func (e *Exporter) update(s Snapshot) {
	e.framesCaptured.Set(float64(s.FramesCaptured))
	e.frameCaptureFailures.Set(float64(s.FrameCaptureFailures))
	e.audioChunks.Set(float64(s.AudioChunks))

	e.segmentsCommitted.Set(float64(s.SegmentsCommitted))
	e.segmentsDiscarded.Set(float64(s.SegmentsDiscarded))
	e.segmentsAbandoned.Set(float64(s.SegmentsAbandoned))

	setCounts(e.artifactsPersisted, s.ArtifactsPersisted)
	setCounts(e.persistFailures, s.PersistFailures)
	setCounts(e.uploadsSucceeded, s.UploadsSucceeded)
	setCounts(e.uploadsFailed, s.UploadsFailed)

	e.deleteFailures.Set(float64(s.DeleteFailures))
	e.sweepsCompleted.Set(float64(s.SweepsCompleted))
}

func setCounts(vec *prometheus.GaugeVec, counts map[string]int64) {
	for kind, n := range counts {
		vec.WithLabelValues(kind).Set(float64(n))
	}
}
