package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the speech feedback pipeline
type Metrics struct {
	// Run metrics
	RunsTotal      *prometheus.CounterVec
	RunsRejected   prometheus.Counter
	RecordingBytes prometheus.Histogram

	// Stage metrics
	StageDuration *prometheus.HistogramVec
	StageFailures *prometheus.CounterVec

	// Feedback quality
	UnknownRatings *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_runs_total",
			Help: "Total number of pipeline runs by audio source and outcome",
		}, []string{"source", "outcome"}),
		RunsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "speech_coach_runs_rejected_total",
			Help: "Total number of actions rejected because a run was in flight",
		}),
		RecordingBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speech_coach_recording_bytes",
			Help:    "Size of audio payloads submitted for processing",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speech_coach_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_stage_failures_total",
			Help: "Total number of failed pipeline stages",
		}, []string{"stage"}),

		UnknownRatings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_coach_unknown_ratings_total",
			Help: "Ratings outside the documented options, by section",
		}, []string{"section"}),
	}
}

func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) ObserveRun(source, outcome string, size int) {
	m.RunsTotal.WithLabelValues(source, outcome).Inc()
	m.RecordingBytes.Observe(float64(size))
}

func (m *Metrics) ObserveRejected() {
	m.RunsRejected.Inc()
}

func (m *Metrics) ObserveUnknownRatings(sections []string) {
	for _, s := range sections {
		m.UnknownRatings.WithLabelValues(s).Inc()
	}
}
