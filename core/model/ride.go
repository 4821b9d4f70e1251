package model

import (
	"fmt"
	"time"
)

// RideState is the lifecycle state of a ride request.
type RideState int

const (
	RidePending RideState = iota
	RideOffered
	RideAccepted
	RideRejectedByAll
	RideExpired
	RideCancelled
)

// String returns a human-readable representation of the ride state.
func (s RideState) String() string {
	switch s {
	case RidePending:
		return "PENDING"
	case RideOffered:
		return "OFFERED"
	case RideAccepted:
		return "ACCEPTED"
	case RideRejectedByAll:
		return "REJECTED_BY_ALL"
	case RideExpired:
		return "EXPIRED"
	case RideCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s RideState) Terminal() bool {
	switch s {
	case RideAccepted, RideRejectedByAll, RideExpired, RideCancelled:
		return true
	default:
		return false
	}
}

// RideRequest is a rider's request for a ride. It is owned by the request
// store for its entire lifecycle and mutated only through the dispatch layer.
type RideRequest struct {
	ID            string    `json:"id"`
	RiderID       string    `json:"rider_id"`
	Pickup        Location  `json:"pickup"`
	Destination   Location  `json:"destination"`
	EstimatedFare float64   `json:"estimated_fare"`
	CreatedAt     time.Time `json:"created_at"`
	State         RideState `json:"state"`
	// DriverID is set once the request reaches ACCEPTED.
	DriverID string `json:"driver_id,omitempty"`
}

// Validate checks that the request is well formed.
func (r RideRequest) Validate() error {
	if r.RiderID == "" {
		return fmt.Errorf("rider id is required")
	}
	if r.EstimatedFare < 0 {
		return fmt.Errorf("estimated fare must not be negative")
	}
	return nil
}
