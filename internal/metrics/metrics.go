package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the billing backend.
type Metrics struct {
	// SIWE auth metrics
	SiweNoncesIssuedTotal prometheus.Counter
	SiweLoginsTotal       *prometheus.CounterVec

	// Payment verification metrics
	PaymentVerificationsTotal *prometheus.CounterVec
	CreditsGrantedTotal       *prometheus.CounterVec
	VerificationDuration      prometheus.Histogram

	// RPC call metrics
	RPCCallDuration *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		SiweNoncesIssuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "plum_siwe_nonces_issued_total",
				Help: "Total number of SIWE login nonces issued",
			},
		),
		SiweLoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plum_siwe_logins_total",
				Help: "Total number of SIWE login attempts",
			},
			[]string{"outcome"},
		),
		PaymentVerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plum_payment_verifications_total",
				Help: "Total number of plan payment verification attempts",
			},
			[]string{"plan", "outcome"},
		),
		CreditsGrantedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plum_credits_granted_total",
				Help: "Total credits granted through verified payments",
			},
			[]string{"plan"},
		),
		VerificationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plum_payment_verification_duration_seconds",
				Help:    "Time taken to verify a plan payment end to end",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		RPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plum_rpc_call_duration_seconds",
				Help:    "Duration of JSON-RPC calls to the chain",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plum_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plum_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
	}
}
