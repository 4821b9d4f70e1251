package dispatch

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch metrics so they are exported
	offersResolved.WithLabelValues("accepted").Inc()
	sessionsEnded.WithLabelValues("ACCEPTED").Inc()
	offerLatency.Observe(0.5)
	activeSessions.Inc()
	deliveryFailure.Inc()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"ride_offers_resolved_total",
		"dispatch_sessions_total",
		"ride_offer_latency_seconds",
		"dispatch_sessions_active",
		"gateway_delivery_failure_total",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}
