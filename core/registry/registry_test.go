package registry

import (
	"errors"
	"testing"

	"github.com/unirides/dispatch/core/model"
	"github.com/unirides/dispatch/infra/logger"
)

func newTestRegistry() *Registry {
	return New(logger.NopLogger{})
}

func TestRegisterIdempotent(t *testing.T) {
	r := newTestRegistry()
	r.Register("d1", &model.Location{Lat: 1, Lng: 1})
	if err := r.SetAvailability("d1", model.AvailabilityAvailable); err != nil {
		t.Fatalf("set availability: %v", err)
	}
	// second registration must not reset state
	r.Register("d1", nil)
	d, err := r.Get("d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Availability != model.AvailabilityAvailable {
		t.Fatalf("re-register reset availability to %s", d.Availability)
	}
}

func TestSetAvailability(t *testing.T) {
	r := newTestRegistry()
	r.Register("d1", nil)

	if err := r.SetAvailability("unknown", model.AvailabilityAvailable); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if err := r.SetAvailability("d1", model.AvailabilityBusy); err == nil {
		t.Fatalf("BUSY must not be settable directly")
	}
	if err := r.SetAvailability("d1", model.AvailabilityAvailable); err != nil {
		t.Fatalf("go online: %v", err)
	}
	// idempotent second call
	if err := r.SetAvailability("d1", model.AvailabilityAvailable); err != nil {
		t.Fatalf("second call must be a no-op, got %v", err)
	}

	r.MarkBusy("d1")
	if err := r.SetAvailability("d1", model.AvailabilityOffline); err == nil {
		t.Fatalf("busy driver must not toggle availability")
	}
}

func TestMarkBusyMarkFree(t *testing.T) {
	r := newTestRegistry()
	r.Register("d1", nil)
	if err := r.SetAvailability("d1", model.AvailabilityAvailable); err != nil {
		t.Fatalf("go online: %v", err)
	}

	if !r.MarkBusy("d1") {
		t.Fatalf("claim on an AVAILABLE driver must succeed")
	}
	d, _ := r.Get("d1")
	if d.Availability != model.AvailabilityBusy {
		t.Fatalf("expected BUSY got %s", d.Availability)
	}
	// reconciliation paths must not panic or error
	if r.MarkBusy("d1") {
		t.Fatalf("second claim on a BUSY driver must fail")
	}
	if r.MarkBusy("unknown") {
		t.Fatalf("claim on an unknown driver must fail")
	}
	r.MarkFree("unknown")

	r.MarkFree("d1")
	d, _ = r.Get("d1")
	if d.Availability != model.AvailabilityAvailable {
		t.Fatalf("expected AVAILABLE got %s", d.Availability)
	}
	// already free: stays free
	r.MarkFree("d1")
	d, _ = r.Get("d1")
	if d.Availability != model.AvailabilityAvailable {
		t.Fatalf("expected AVAILABLE got %s", d.Availability)
	}
}

func TestMarkBusyDoesNotClaimOfflineDriver(t *testing.T) {
	r := newTestRegistry()
	r.Register("d1", nil)
	// still OFFLINE: never went online
	if r.MarkBusy("d1") {
		t.Fatalf("claim on an OFFLINE driver must fail")
	}
	d, _ := r.Get("d1")
	if d.Availability != model.AvailabilityOffline {
		t.Fatalf("expected OFFLINE got %s", d.Availability)
	}
}

func TestDisconnectKeepsDriverOffline(t *testing.T) {
	r := newTestRegistry()
	r.Register("d1", nil)
	if err := r.SetAvailability("d1", model.AvailabilityAvailable); err != nil {
		t.Fatalf("go online: %v", err)
	}
	r.MarkBusy("d1")
	r.Disconnect("d1")
	// freeing after a disconnect must not bring the driver back online
	r.MarkFree("d1")
	d, _ := r.Get("d1")
	if d.Availability != model.AvailabilityOffline {
		t.Fatalf("expected OFFLINE got %s", d.Availability)
	}
}

func TestListAvailableOrdering(t *testing.T) {
	r := newTestRegistry()
	near := model.Location{Lat: 6.5, Lng: 3.37}
	add := func(id string, lat, lng float64) {
		r.Register(id, &model.Location{Lat: lat, Lng: lng})
		if err := r.SetAvailability(id, model.AvailabilityAvailable); err != nil {
			t.Fatalf("go online %s: %v", id, err)
		}
	}
	add("d-far", 6.6, 3.5)
	add("d-near", 6.501, 3.371)
	// same position as d-near: tie broken by id
	add("d-also-near", 6.501, 3.371)
	// outside the radius
	add("d-out", 7.5, 4.5)
	// busy drivers are excluded
	add("d-busy", 6.5, 3.37)
	r.MarkBusy("d-busy")

	var got []string
	for d := range r.ListAvailable(near, 20) {
		got = append(got, d.ID)
	}
	want := []string{"d-also-near", "d-near", "d-far"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}

	// restartable: second iteration yields the same sequence
	var again []string
	seq := r.ListAvailable(near, 20)
	for d := range seq {
		again = append(again, d.ID)
	}
	for d := range seq {
		_ = d
		break
	}
	if len(again) != len(got) {
		t.Fatalf("restarted iteration differs: %v vs %v", again, got)
	}
}

func TestListAvailableExcludesDriversWithoutLocation(t *testing.T) {
	r := newTestRegistry()
	r.Register("d1", nil)
	if err := r.SetAvailability("d1", model.AvailabilityAvailable); err != nil {
		t.Fatalf("go online: %v", err)
	}
	for range r.ListAvailable(model.Location{}, 100) {
		t.Fatalf("driver without location must not be listed")
	}
}
