package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	offersResolved  *prometheus.CounterVec
	sessionsEnded   *prometheus.CounterVec
	offerLatency    prometheus.Histogram
	activeSessions  prometheus.Gauge
	deliveryFailure prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram, prometheus.Gauge, prometheus.Counter) {
	offers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_offers_resolved_total",
			Help: "Number of driver offers resolved, by result",
		},
		[]string{"result"},
	)
	sessions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_sessions_total",
			Help: "Number of dispatch sessions ended, by outcome",
		},
		[]string{"outcome"},
	)
	lat := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ride_offer_latency_seconds",
			Help:    "Latency from offer send to driver response or timeout",
			Buckets: prometheus.DefBuckets,
		},
	)
	active := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_sessions_active",
			Help: "Number of dispatch sessions currently running",
		},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_delivery_failure_total",
			Help: "Number of failed offer deliveries to drivers",
		},
	)
	return offers, sessions, lat, active, fail
}

func init() {
	offersResolved, sessionsEnded, offerLatency, activeSessions, deliveryFailure = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(offersResolved, sessionsEnded, offerLatency, activeSessions, deliveryFailure)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	offersResolved, sessionsEnded, offerLatency, activeSessions, deliveryFailure = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
