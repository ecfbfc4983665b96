package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncRunMetrics records metadata for weekly sync runs.
type SyncRunMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	attempts    *prometheus.CounterVec
	droppedRows *prometheus.CounterVec
}

// NewSyncRunMetrics registers the sync metrics on the provided registerer.
func NewSyncRunMetrics(reg prometheus.Registerer) *SyncRunMetrics {
	if reg == nil {
		return &SyncRunMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_run_duration_seconds",
		Help:    "Duration of weekly sync runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"workspace"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_run_success",
		Help: "Successful weekly sync runs.",
	}, []string{"workspace"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_run_failure",
		Help: "Failed weekly sync runs.",
	}, []string{"workspace"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_candidate_attempts_total",
		Help: "Upstream endpoint candidates attempted, per series.",
	}, []string{"series"})
	droppedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_rows_dropped_total",
		Help: "Upstream rows dropped during normalization, per reason.",
	}, []string{"reason"})
	reg.MustRegister(duration, success, failure, attempts, droppedRows)
	return &SyncRunMetrics{
		duration:    duration,
		success:     success,
		failure:     failure,
		attempts:    attempts,
		droppedRows: droppedRows,
	}
}

// ObserveDuration records the duration of a run for the workspace.
func (m *SyncRunMetrics) ObserveDuration(workspace string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(workspace)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the workspace.
func (m *SyncRunMetrics) IncSuccess(workspace string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(workspace)).Inc()
}

// IncFailure increments the failure counter for the workspace.
func (m *SyncRunMetrics) IncFailure(workspace string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(workspace)).Inc()
}

// AddAttempts counts candidate requests issued for a series.
func (m *SyncRunMetrics) AddAttempts(series string, n int) {
	if m == nil || m.attempts == nil || n <= 0 {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(series)).Add(float64(n))
}

// AddDroppedRows counts rows discarded during normalization.
func (m *SyncRunMetrics) AddDroppedRows(reason string, n int) {
	if m == nil || m.droppedRows == nil || n <= 0 {
		return
	}
	m.droppedRows.WithLabelValues(normalizeLabel(reason)).Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
