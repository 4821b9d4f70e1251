package events

import "time"

// Offer resolution reasons.
const (
	OfferAccepted    = "accepted"
	OfferRejected    = "rejected"
	OfferTimedOut    = "timeout"
	OfferUnreachable = "unreachable"
	OfferCancelled   = "cancelled"
)

// OfferEvent is published when an offer to a single driver resolves.
type OfferEvent struct {
	RideID   string
	DriverID string
	Result   string
	Err      error
	Latency  time.Duration
}
