package model

import "time"

// Availability describes whether a driver can receive ride offers.
type Availability int

const (
	// AvailabilityOffline marks a driver that is registered but not taking rides.
	AvailabilityOffline Availability = iota
	// AvailabilityAvailable marks a driver eligible for ride offers.
	AvailabilityAvailable
	// AvailabilityBusy marks a driver with an outstanding offer or active ride.
	AvailabilityBusy
)

// String returns a human-readable representation of the availability.
func (a Availability) String() string {
	switch a {
	case AvailabilityOffline:
		return "OFFLINE"
	case AvailabilityAvailable:
		return "AVAILABLE"
	case AvailabilityBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}

// Driver holds the registry view of a connected driver. The registry does not
// own the transport connection; reaching the driver goes through the gateway.
type Driver struct {
	ID           string       `json:"id"`
	Availability Availability `json:"availability"`
	// Location is the last reported position. Nil until the first update.
	Location  *Location `json:"location,omitempty"`
	Rating    float64   `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLocation reports whether the driver ever reported a position.
func (d Driver) HasLocation() bool { return d.Location != nil }

// Eligible reports whether the driver can be offered a ride right now.
func (d Driver) Eligible() bool {
	return d.Availability == AvailabilityAvailable && d.Location != nil
}
