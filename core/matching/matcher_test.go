package matching

import (
	"testing"

	"github.com/unirides/dispatch/core/model"
	"github.com/unirides/dispatch/core/registry"
	"github.com/unirides/dispatch/infra/logger"
)

func setupRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return registry.New(logger.NopLogger{})
}

func online(t *testing.T, r *registry.Registry, id string, loc model.Location, rating float64) {
	t.Helper()
	r.Register(id, &loc)
	if err := r.SetAvailability(id, model.AvailabilityAvailable); err != nil {
		t.Fatalf("go online %s: %v", id, err)
	}
	if err := r.SetRating(id, rating); err != nil {
		t.Fatalf("set rating %s: %v", id, err)
	}
}

func TestBuildCandidateListRatingTieBreak(t *testing.T) {
	reg := setupRegistry(t)
	pickup := model.Location{Lat: 6.5244, Lng: 3.3792}
	// both roughly 1km away at the same point
	loc := model.Location{Lat: 6.5334, Lng: 3.3792}
	online(t, reg, "driver-a", loc, 4.0)
	online(t, reg, "driver-b", loc, 4.8)

	m := New(reg, 5, 0)
	got := m.BuildCandidateList(model.RideRequest{Pickup: pickup})
	want := []string{"driver-b", "driver-a"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBuildCandidateListDistanceFirst(t *testing.T) {
	reg := setupRegistry(t)
	pickup := model.Location{Lat: 6.5244, Lng: 3.3792}
	online(t, reg, "far-but-great", model.Location{Lat: 6.56, Lng: 3.3792}, 5.0)
	online(t, reg, "near-but-poor", model.Location{Lat: 6.5253, Lng: 3.3792}, 2.0)

	m := New(reg, 5, 0)
	got := m.BuildCandidateList(model.RideRequest{Pickup: pickup})
	if len(got) != 2 || got[0] != "near-but-poor" {
		t.Fatalf("distance must outrank rating, got %v", got)
	}
}

func TestBuildCandidateListDeterministic(t *testing.T) {
	reg := setupRegistry(t)
	pickup := model.Location{Lat: 6.5244, Lng: 3.3792}
	loc := model.Location{Lat: 6.53, Lng: 3.38}
	online(t, reg, "d3", loc, 4.5)
	online(t, reg, "d1", loc, 4.5)
	online(t, reg, "d2", loc, 4.5)

	m := New(reg, 5, 0)
	first := m.BuildCandidateList(model.RideRequest{Pickup: pickup})
	for i := 0; i < 5; i++ {
		again := m.BuildCandidateList(model.RideRequest{Pickup: pickup})
		if len(again) != len(first) {
			t.Fatalf("non-deterministic length")
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("non-deterministic ordering: %v vs %v", again, first)
			}
		}
	}
	// identical distance and rating: identifier ascending
	if first[0] != "d1" || first[1] != "d2" || first[2] != "d3" {
		t.Fatalf("expected id ascending tie-break, got %v", first)
	}
}

func TestBuildCandidateListEmptyAndCapped(t *testing.T) {
	reg := setupRegistry(t)
	pickup := model.Location{Lat: 6.5244, Lng: 3.3792}

	m := New(reg, 5, 2)
	if got := m.BuildCandidateList(model.RideRequest{Pickup: pickup}); len(got) != 0 {
		t.Fatalf("expected empty list got %v", got)
	}

	for i, id := range []string{"a", "b", "c", "d"} {
		online(t, reg, id, model.Location{Lat: 6.5244 + float64(i)*0.001, Lng: 3.3792}, 4)
	}
	got := m.BuildCandidateList(model.RideRequest{Pickup: pickup})
	if len(got) != 2 {
		t.Fatalf("expected cap of 2 got %v", got)
	}
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected the two nearest, got %v", got)
	}
}
