package gateway

import (
	"time"

	"github.com/unirides/dispatch/core/model"
)

// Offer is the time-boxed proposal of a ride request sent to one driver.
type Offer struct {
	RideID        string         `json:"ride_id"`
	Pickup        model.Location `json:"pickup_location"`
	Destination   model.Location `json:"destination"`
	EstimatedFare float64        `json:"estimated_amount"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Outcome event names delivered to riders.
const (
	OutcomeAccepted  = "ride_accepted"
	OutcomeRejected  = "ride_rejected"
	OutcomeExpired   = "ride_request_expired"
	OutcomeCancelled = "ride_cancelled"
)

// Outcome reports the final resolution of a ride request to a party.
type Outcome struct {
	RideID string `json:"ride_id"`
	Event  string `json:"event"`
	// DriverID is set on ride_accepted so the rider knows who is coming.
	DriverID string `json:"driver_id,omitempty"`
}

// Gateway delivers offers and outcomes over a persistent connection to
// exactly the intended party. It is a stateless relay: delivery failures are
// reported back to the caller and never retried internally.
type Gateway interface {
	SendOffer(driverID string, offer Offer) error
	SendOutcome(partyID string, outcome Outcome) error
}
