package dispatch

import "errors"

// ErrInvalidTransition is returned when an event references a ride whose
// session already reached a terminal state. Callers log and drop these events;
// a closed session is never re-opened.
var ErrInvalidTransition = errors.New("ride dispatch already resolved")

// ErrClosed is returned when the coordinator is shutting down.
var ErrClosed = errors.New("dispatch coordinator closed")

// ErrRiderMismatch is returned when a party tries to cancel a ride request
// submitted by a different rider.
var ErrRiderMismatch = errors.New("ride belongs to a different rider")
