package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hospitality"

var (
	// HTTPRequestsTotal counts served requests by method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "code"},
	)

	// HTTPRequestDuration is the handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method"},
	)

	// ValidationFailures counts rejected drafts by offending field.
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Total number of rejected payloads",
		},
		[]string{"field"},
	)

	// AveragePrice mirrors the last recomputed restaurant average price.
	AveragePrice = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "restaurant_average_price",
			Help:      "Current mean price across all restaurants",
		},
	)

	// ImageUploads counts image uploads by outcome.
	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_uploads_total",
			Help:      "Total number of image uploads",
		},
		[]string{"entity", "status"},
	)

	// BookingEvents counts booking writes by kind (created, updated, status, deleted).
	BookingEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_events_total",
			Help:      "Total number of booking writes",
		},
		[]string{"kind"},
	)
)
