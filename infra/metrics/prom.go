package metrics

import (
	coremetrics "github.com/unirides/dispatch/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records dispatch session and offer results in Prometheus metrics.
type PromSink struct {
	sessions *prometheus.CounterVec
	offers   *prometheus.CounterVec
	duration prometheus.Histogram
	fleet    prometheus.Gauge
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ride_sessions_total",
		Help: "Total number of resolved dispatch sessions",
	}, []string{"outcome"})
	offers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ride_offer_results_total",
		Help: "Total number of resolved offers",
	}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ride_session_duration_seconds",
		Help:    "Time between request submission and session resolution",
		Buckets: prometheus.DefBuckets,
	})
	fleet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "driver_registry_size",
		Help: "Number of drivers known to the registry",
	})

	if err := reg.Register(sessions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sessions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(offers); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			offers = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fleet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fleet = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{sessions: sessions, offers: offers, duration: duration, fleet: fleet}, nil
}

// RecordSessionResult increments the session counter and observes duration.
func (s *PromSink) RecordSessionResult(res coremetrics.SessionResult) error {
	s.sessions.WithLabelValues(res.Outcome).Inc()
	s.duration.Observe(res.Duration.Seconds())
	return nil
}

// RecordOfferResult increments the per-offer result counter.
func (s *PromSink) RecordOfferResult(res coremetrics.OfferResult) error {
	s.offers.WithLabelValues(res.Result).Inc()
	return nil
}

// RecordFleetSize sets the gauge to the number of registered drivers.
func (s *PromSink) RecordFleetSize(size int) error {
	if s.fleet != nil {
		s.fleet.Set(float64(size))
	}
	return nil
}
