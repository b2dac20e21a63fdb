// Package metrics exposes Prometheus counters for progress and sync activity.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// progressWritesTotal counts progress store writes.
	// Labels:
	//   - op: "upsert" or "clear"
	//   - status: "ok" or "persist_failed"
	progressWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcal_progress_writes_total",
			Help: "Total number of progress store writes",
		},
		[]string{"op", "status"},
	)

	// suggestionsTotal counts suggestion lookups by outcome ("hit", "miss").
	suggestionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcal_suggestions_total",
			Help: "Total number of progressive suggestion lookups",
		},
		[]string{"outcome"},
	)

	// syncItemsTotal counts outbox items by final status ("delivered", "dropped", "evicted").
	syncItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcal_sync_items_total",
			Help: "Total number of sync outbox items by final status",
		},
		[]string{"status"},
	)

	syncAttemptDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "repcal_sync_attempt_duration_seconds",
			Help:    "Duration of a single sync delivery attempt in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	syncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "repcal_sync_queue_depth",
			Help: "Number of items waiting in the sync outbox",
		},
	)

	// programFallbacksTotal counts loads that ended on the built-in fallback program.
	programFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "repcal_program_fallbacks_total",
			Help: "Total number of times the built-in fallback program was used",
		},
	)
)

func init() {
	prometheus.MustRegister(progressWritesTotal)
	prometheus.MustRegister(suggestionsTotal)
	prometheus.MustRegister(syncItemsTotal)
	prometheus.MustRegister(syncAttemptDuration)
	prometheus.MustRegister(syncQueueDepth)
	prometheus.MustRegister(programFallbacksTotal)
}

// RecordProgressWrite records a progress store write.
func RecordProgressWrite(op string, err error) {
	status := "ok"
	if err != nil {
		status = "persist_failed"
	}
	progressWritesTotal.WithLabelValues(op, status).Inc()
}

// RecordSuggestion records whether a suggestion lookup found a source week.
func RecordSuggestion(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	suggestionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSyncItem records the final status of an outbox item.
func RecordSyncItem(status string) {
	syncItemsTotal.WithLabelValues(status).Inc()
}

// RecordSyncAttempt records the duration of one delivery attempt.
func RecordSyncAttempt(durationSeconds float64) {
	syncAttemptDuration.Observe(durationSeconds)
}

// SetSyncQueueDepth reports the current outbox length.
func SetSyncQueueDepth(n int) {
	syncQueueDepth.Set(float64(n))
}

// RecordProgramFallback records use of the built-in fallback program.
func RecordProgramFallback() {
	programFallbacksTotal.Inc()
}
