package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplegeo_requests_total",
			Help: "Total number of SimpleGeo API requests.",
		},
		[]string{"method", "resource", "status"},
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simplegeo_request_duration_seconds",
			Help:    "Duration of SimpleGeo API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "resource"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

// StatusLabel renders a response status, or "error" when no response arrived.
func StatusLabel(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func ObserveRequest(method, resource string, status int, durationSeconds float64) {
	requestsTotal.WithLabelValues(method, resource, StatusLabel(status)).Inc()
	requestDurationSeconds.WithLabelValues(method, resource).Observe(durationSeconds)
}

func RequestsCounter(method, resource string, status int) prometheus.Counter {
	return requestsTotal.WithLabelValues(method, resource, StatusLabel(status))
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
