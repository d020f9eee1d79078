// Package metrics exposes Prometheus metrics about notification passes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pass results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

var (
	// passesTotal counts notification passes by result.
	passesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_passes_total",
			Help: "Total number of notification passes",
		},
		[]string{"result"},
	)

	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_pass_duration_seconds",
			Help:    "Duration of notification passes in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	recordsEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_records_evaluated_total",
			Help: "Total number of records evaluated",
		},
	)

	statusResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_status_resets_total",
			Help: "Total number of done records reset to keep after their occurrence rolled over",
		},
	)

	// categoryFailures counts categories dropped from a pass.
	categoryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_category_failures_total",
			Help: "Total number of categories dropped from a pass because their store failed",
		},
		[]string{"category"},
	)

	activeNotifications = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reminder_active_notifications",
			Help: "Notifications active after the last pass",
		},
		[]string{"urgent"},
	)
)

func init() {
	prometheus.MustRegister(passesTotal)
	prometheus.MustRegister(passDuration)
	prometheus.MustRegister(recordsEvaluated)
	prometheus.MustRegister(statusResets)
	prometheus.MustRegister(categoryFailures)
	prometheus.MustRegister(activeNotifications)
}

// RecordPass records one finished pass.
func RecordPass(result string, durationSeconds float64) {
	passesTotal.WithLabelValues(result).Inc()
	passDuration.Observe(durationSeconds)
}

// RecordEvaluation adds the evaluated records and status resets of a pass.
func RecordEvaluation(evaluated, resets int) {
	recordsEvaluated.Add(float64(evaluated))
	statusResets.Add(float64(resets))
}

// RecordCategoryFailure records a category dropped from a pass.
func RecordCategoryFailure(category string) {
	categoryFailures.WithLabelValues(category).Inc()
}

// SetActive publishes the size of the active set.
func SetActive(urgent, other int) {
	activeNotifications.WithLabelValues("true").Set(float64(urgent))
	activeNotifications.WithLabelValues("false").Set(float64(other))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
