package controller

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the playback counters exported at /metrics by the monitor.
// Each run owns its registry so tests and repeated runs never collide on
// the global default registerer.
type Metrics struct {
	Registry *prometheus.Registry

	framesProcessed  *prometheus.CounterVec
	samplesDelivered *prometheus.CounterVec
	samplesSkipped   *prometheus.CounterVec
	framesBehind     *prometheus.CounterVec
	trackingDuration prometheus.Histogram
	pacingSleep      prometheus.Histogram
	windowSize       prometheus.Histogram
	segments         prometheus.Counter
	failures         *prometheus.CounterVec
}

// NewMetrics registers the playback metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		framesProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "playback_frames_processed_total",
			Help: "Frames handed to the tracking engine",
		}, []string{"sequence"}),
		samplesDelivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "playback_imu_samples_delivered_total",
			Help: "Inertial samples delivered inside frame windows",
		}, []string{"sequence"}),
		samplesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "playback_imu_samples_skipped_total",
			Help: "Inertial samples consumed by cursor initialisation",
		}, []string{"sequence"}),
		framesBehind: f.NewCounterVec(prometheus.CounterOpts{
			Name: "playback_frames_behind_schedule_total",
			Help: "Frames whose tracking took at least the capture interval",
		}, []string{"sequence"}),
		trackingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "playback_tracking_duration_seconds",
			Help:    "Wall time of each tracking call",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}),
		pacingSleep: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "playback_pacing_sleep_seconds",
			Help:    "Delay inserted after a frame to keep capture cadence",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		windowSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "playback_imu_window_size",
			Help:    "Inertial samples per frame window",
			Buckets: prometheus.LinearBuckets(0, 5, 12),
		}),
		segments: f.NewCounter(prometheus.CounterOpts{
			Name: "playback_segments_started_total",
			Help: "Sequence transitions signalled to the engine",
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "playback_failures_total",
			Help: "Fatal playback failures by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeFrame(seq string, window int, tracking, sleep time.Duration, behind bool) {
	if m == nil {
		return
	}
	m.framesProcessed.WithLabelValues(seq).Inc()
	m.samplesDelivered.WithLabelValues(seq).Add(float64(window))
	m.windowSize.Observe(float64(window))
	m.trackingDuration.Observe(tracking.Seconds())
	if behind {
		m.framesBehind.WithLabelValues(seq).Inc()
	} else {
		m.pacingSleep.Observe(sleep.Seconds())
	}
}

func (m *Metrics) observeSkipped(seq string, n int) {
	if m == nil {
		return
	}
	m.samplesSkipped.WithLabelValues(seq).Add(float64(n))
}

func (m *Metrics) observeSegment() {
	if m == nil {
		return
	}
	m.segments.Inc()
}

// ObserveFailure counts a fatal failure by its error kind label.
func (m *Metrics) ObserveFailure(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}
