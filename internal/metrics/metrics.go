package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "khidma",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and path.",
		},
		[]string{"method", "path"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "khidma",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by variant and target status.",
		},
		[]string{"booking_type", "status"},
	)

	notificationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "khidma",
			Name:      "notifications_created_total",
			Help:      "Notification rows created.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, notificationsCreated)
	})
}

func IncHTTP(method, path string) {
	httpRequests.WithLabelValues(method, path).Inc()
}

func IncTransition(bookingType, status string) {
	bookingTransitions.WithLabelValues(bookingType, status).Inc()
}

func IncNotification() {
	notificationsCreated.Inc()
}
