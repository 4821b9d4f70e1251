package events

import "time"

// SessionEvent is published when a dispatch session reaches a terminal state.
// Outcome is the terminal ride state string, e.g. "ACCEPTED" or
// "REJECTED_BY_ALL".
type SessionEvent struct {
	RideID     string
	RiderID    string
	Outcome    string
	DriverID   string
	Candidates int
	Duration   time.Duration
}
