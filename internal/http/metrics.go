package httpx

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsState struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimitHits   *prometheus.CounterVec
}

// initMetrics registers the per-service request metrics. Registration is
// idempotent so tests can build routers repeatedly.
func (m *metricsState) initMetrics(service string) {
	m.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "penpal",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "penpal",
		Subsystem: service,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.rateLimitHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "penpal",
		Subsystem: service,
		Name:      "rate_limit_hits_total",
		Help:      "Requests rejected by the rate limiter.",
	}, []string{"route"})

	m.requestsTotal = mustRegisterCounterVec(m.requestsTotal)
	m.requestDuration = mustRegisterHistogramVec(m.requestDuration)
	m.rateLimitHits = mustRegisterCounterVec(m.rateLimitHits)
}

func mustRegisterCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(err)
	}
	return vec
}

func mustRegisterHistogramVec(vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector.(*prometheus.HistogramVec)
		}
		panic(err)
	}
	return vec
}

func (m *metricsState) recordRequestMetrics(method, path string, status int, duration time.Duration) {
	if m.requestsTotal == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *metricsState) recordRateLimitHit(route string) {
	if m.rateLimitHits == nil {
		return
	}
	m.rateLimitHits.WithLabelValues(route).Inc()
}
