// Package metrics exposes Prometheus counters for the booking flow.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	bookingSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barbershop",
			Name:      "booking_submissions_total",
			Help:      "Count of booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	slotQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "barbershop",
			Name:      "slot_queries_total",
			Help:      "Count of slot listings by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers the counters with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingSubmissions, slotQueries)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBookingSubmission counts one submission ("created" or an error kind).
func RecordBookingSubmission(outcome string) {
	bookingSubmissions.WithLabelValues(outcome).Inc()
}

// RecordSlotQuery counts one slot listing ("ok" or an error kind).
func RecordSlotQuery(outcome string) {
	slotQueries.WithLabelValues(outcome).Inc()
}
