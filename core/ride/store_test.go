package ride

import (
	"errors"
	"testing"

	"github.com/unirides/dispatch/core/model"
)

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	s.Create(model.RideRequest{ID: "r1", RiderID: "u1"})

	got, err := s.Get("r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != model.RidePending {
		t.Fatalf("expected PENDING got %s", got.State)
	}

	if err := s.SetState("r1", model.RideOffered); err != nil {
		t.Fatalf("set state: %v", err)
	}
	if err := s.Accept("r1", "d1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got, _ = s.Get("r1")
	if got.State != model.RideAccepted || got.DriverID != "d1" {
		t.Fatalf("unexpected request after accept: %+v", got)
	}
}

func TestStoreTerminalStateIsFinal(t *testing.T) {
	s := NewStore()
	s.Create(model.RideRequest{ID: "r1"})
	if err := s.SetState("r1", model.RideCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := s.SetState("r1", model.RideOffered); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition got %v", err)
	}
	if err := s.Accept("r1", "d1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition got %v", err)
	}
}

func TestStoreUnknownRequest(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if err := s.SetState("nope", model.RideOffered); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
