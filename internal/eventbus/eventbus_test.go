package eventbus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unirides/dispatch/core/events"
)

func TestBusFanOut(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	bus.Publish(events.OfferEvent{RideID: "r1", DriverID: "d1", Result: events.OfferAccepted})

	for _, ch := range []<-chan Event{ch1, ch2} {
		ev, ok := (<-ch).(events.OfferEvent)
		require.True(t, ok)
		require.Equal(t, "r1", ev.RideID)
		require.Equal(t, events.OfferAccepted, ev.Result)
	}
	bus.Unsubscribe(ch1)
	bus.Unsubscribe(ch2)
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Publish(events.SessionEvent{RideID: "r"})
	}
	require.Len(t, ch, subscriberBuffer)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()

	_, ok := <-ch1
	require.False(t, ok)
	_, ok = <-ch2
	require.False(t, ok)

	// publish and subscribe after close must not panic
	bus.Publish(events.SessionEvent{})
	ch3 := bus.Subscribe()
	_, ok = <-ch3
	require.False(t, ok)
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	require.NotPanics(t, func() { bus.Unsubscribe(ch) })
}
