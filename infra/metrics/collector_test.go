package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/unirides/dispatch/core/events"
	coremetrics "github.com/unirides/dispatch/core/metrics"
	"github.com/unirides/dispatch/internal/eventbus"
)

type countingSink struct {
	mu       sync.Mutex
	sessions []coremetrics.SessionResult
	offers   []coremetrics.OfferResult
}

func (c *countingSink) RecordSessionResult(res coremetrics.SessionResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions = append(c.sessions, res)
	return nil
}

func (c *countingSink) RecordOfferResult(res coremetrics.OfferResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offers = append(c.offers, res)
	return nil
}

func TestEventCollector(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &countingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink)

	bus.Publish(events.OfferEvent{RideID: "r1", DriverID: "d1", Result: events.OfferRejected, Latency: time.Second})
	bus.Publish(events.SessionEvent{RideID: "r1", RiderID: "u1", Outcome: "ACCEPTED", DriverID: "d2", Candidates: 2})

	deadline := time.After(2 * time.Second)
	for {
		sink.mu.Lock()
		done := len(sink.sessions) == 1 && len(sink.offers) == 1
		sink.mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("events not collected: %+v", sink)
		case <-time.After(10 * time.Millisecond):
		}
	}
	if sink.offers[0].Result != events.OfferRejected || sink.offers[0].DriverID != "d1" {
		t.Fatalf("unexpected offer record: %+v", sink.offers[0])
	}
	if sink.sessions[0].Outcome != "ACCEPTED" || sink.sessions[0].Candidates != 2 {
		t.Fatalf("unexpected session record: %+v", sink.sessions[0])
	}
}

type fixedSizer struct{ n int }

func (f fixedSizer) Size() int { return f.n }

type fleetSink struct {
	countingSink
	mu    sync.Mutex
	sizes []int
}

func (f *fleetSink) RecordFleetSize(size int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sizes = append(f.sizes, size)
	return nil
}

func TestFleetSizeReporter(t *testing.T) {
	sink := &fleetSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartFleetSizeReporter(ctx, fixedSizer{n: 7}, sink, 10*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.sizes)
		sink.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("fleet size never reported")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.sizes[0] != 7 {
		t.Fatalf("expected size 7, got %d", sink.sizes[0])
	}
}
