package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hekshermgmt_http_requests_total",
			Help: "Total number of HTTP requests handled (count)",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hekshermgmt_http_request_duration_ms",
			Help:    "Duration of handled HTTP requests in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"method", "path"},
	)

	HeksherRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hekshermgmt_heksher_requests_total",
			Help: "Total number of requests forwarded to the Heksher backend (count)",
		},
		[]string{"operation", "status"},
	)

	HeksherRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hekshermgmt_heksher_request_duration_ms",
			Help:    "Duration of Heksher backend requests in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"operation"},
	)

	RuleMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hekshermgmt_rule_mutations_total",
			Help: "Total number of rule mutations attempted through this service (count)",
		},
		[]string{"action", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hekshermgmt_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hekshermgmt_rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)
)

func Register() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HeksherRequestsTotal)
	prometheus.MustRegister(HeksherRequestDuration)
	prometheus.MustRegister(RuleMutationsTotal)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func ObserveHeksherRequest(operation, status string, duration time.Duration) {
	HeksherRequestsTotal.WithLabelValues(operation, status).Inc()
	HeksherRequestDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}

func IncRuleMutation(action, status string) {
	RuleMutationsTotal.WithLabelValues(action, status).Inc()
}
