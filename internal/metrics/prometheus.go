// Package metrics contains middlewares and counters for metrics gathering.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP Requests total counter
var totalRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP Requests.",
	},
	[]string{"path"},
)

// HTTP Response status
var duration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_duration",
		Help: "HTTP Requests Duration",
	},
	[]string{"path"},
)

// Appointment lifecycle counters
var appointmentsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "appointments_created_total",
		Help: "Appointments successfully booked.",
	},
)

var appointmentsDeleted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "appointments_deleted_total",
		Help: "Appointments removed.",
	},
)

var remindersSent = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "appointment_reminders_sent_total",
		Help: "Reminder notifications emitted by the daily batch.",
	},
)

func init() {
	for _, collector := range []prometheus.Collector{totalRequests, duration, appointmentsCreated, appointmentsDeleted, remindersSent} {
		if err := prometheus.Register(collector); err != nil {
			panic(err)
		}
	}
}

// PrometheusMiddleware instruments the given request and register metrics.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(duration.WithLabelValues(r.RequestURI))
		next.ServeHTTP(w, r)
		totalRequests.WithLabelValues(r.RequestURI).Inc()
		timer.ObserveDuration()
	})
}

// IncAppointmentsCreated registers a successful booking.
func IncAppointmentsCreated() {
	appointmentsCreated.Inc()
}

// IncAppointmentsDeleted registers an appointment removal.
func IncAppointmentsDeleted() {
	appointmentsDeleted.Inc()
}

// IncRemindersSent registers a reminder notification emitted by the batch job.
func IncRemindersSent() {
	remindersSent.Inc()
}
