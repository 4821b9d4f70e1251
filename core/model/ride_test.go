package model

import "testing"

func TestRideStateString(t *testing.T) {
	cases := map[RideState]string{
		RidePending:       "PENDING",
		RideOffered:       "OFFERED",
		RideAccepted:      "ACCEPTED",
		RideRejectedByAll: "REJECTED_BY_ALL",
		RideExpired:       "EXPIRED",
		RideCancelled:     "CANCELLED",
		RideState(42):     "UNKNOWN",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("state %d: got %s want %s", st, got, want)
		}
	}
}

func TestRideStateTerminal(t *testing.T) {
	for _, st := range []RideState{RideAccepted, RideRejectedByAll, RideExpired, RideCancelled} {
		if !st.Terminal() {
			t.Errorf("%s should be terminal", st)
		}
	}
	for _, st := range []RideState{RidePending, RideOffered} {
		if st.Terminal() {
			t.Errorf("%s should not be terminal", st)
		}
	}
}

func TestRideRequestValidate(t *testing.T) {
	req := RideRequest{RiderID: "r1"}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (RideRequest{}).Validate(); err == nil {
		t.Fatalf("expected error for missing rider id")
	}
	if err := (RideRequest{RiderID: "r1", EstimatedFare: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative fare")
	}
}

func TestDriverEligible(t *testing.T) {
	d := Driver{ID: "d1", Availability: AvailabilityAvailable}
	if d.Eligible() {
		t.Fatalf("driver without location must not be eligible")
	}
	d.Location = &Location{Lat: 6.45, Lng: 3.43}
	if !d.Eligible() {
		t.Fatalf("available driver with location must be eligible")
	}
	d.Availability = AvailabilityBusy
	if d.Eligible() {
		t.Fatalf("busy driver must not be eligible")
	}
}

func TestDistanceKm(t *testing.T) {
	a := Location{Lat: 6.5244, Lng: 3.3792}
	b := Location{Lat: 6.4654, Lng: 3.4064}
	d := a.DistanceKm(b)
	if d < 6 || d > 8 {
		t.Fatalf("expected roughly 7km, got %f", d)
	}
	if a.DistanceKm(a) != 0 {
		t.Fatalf("distance to self must be zero")
	}
}
