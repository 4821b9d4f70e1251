package metrics

import (
	"context"
	"time"

	"github.com/unirides/dispatch/core/events"
	coremetrics "github.com/unirides/dispatch/core/metrics"
	"github.com/unirides/dispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// offer and session events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.OfferEvent:
					if r, ok := sink.(coremetrics.OfferRecorder); ok {
						_ = r.RecordOfferResult(coremetrics.OfferResult{
							RideID:   e.RideID,
							DriverID: e.DriverID,
							Result:   e.Result,
							Latency:  e.Latency,
							Time:     time.Now(),
						})
					}
				case events.SessionEvent:
					_ = sink.RecordSessionResult(coremetrics.SessionResult{
						RideID:     e.RideID,
						RiderID:    e.RiderID,
						Outcome:    e.Outcome,
						DriverID:   e.DriverID,
						Candidates: e.Candidates,
						Duration:   e.Duration,
						Time:       time.Now(),
					})
				}
			}
		}
	}()
}

// FleetSizer reports how many drivers the registry currently tracks.
type FleetSizer interface {
	Size() int
}

// StartFleetSizeReporter periodically pushes the registry size to the sink.
func StartFleetSizeReporter(ctx context.Context, reg FleetSizer, sink coremetrics.MetricsSink, interval time.Duration) {
	rec, ok := sink.(coremetrics.FleetSizeRecorder)
	if reg == nil || !ok {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = rec.RecordFleetSize(reg.Size())
			}
		}
	}()
}
