package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// Metrics bundles the service's Prometheus collectors.
type Metrics struct {
	BookingsTotal           *prometheus.CounterVec
	BookingConflictsTotal   prometheus.Counter
	CalendarMirrorFailures  prometheus.Counter
	AvailabilityRequests    *prometheus.CounterVec
	ChatTurnsTotal          *prometheus.CounterVec
	LLMLatencySeconds       prometheus.Histogram
	EmailSendFailuresTotal  prometheus.Counter
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome.",
		}, []string{"outcome"}),
		BookingConflictsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Bookings rejected because the slot was taken.",
		}),
		CalendarMirrorFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_mirror_failures_total",
			Help:      "Calendar operations that failed and were skipped.",
		}),
		AvailabilityRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_requests_total",
			Help:      "Availability computations by degradation state.",
		}, []string{"degraded"}),
		ChatTurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Chat turns by resolved intent.",
		}, []string{"intent"}),
		LLMLatencySeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_latency_seconds",
			Help:      "Latency of upstream model calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		EmailSendFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_send_failures_total",
			Help:      "Outbound emails that could not be delivered.",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// NewForTest registers collectors on a throwaway registry.
func NewForTest() *Metrics {
	return New(prometheus.NewRegistry())
}
