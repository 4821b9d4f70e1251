package events

import "github.com/unirides/dispatch/core/model"

// RequestEvent is published when a new ride request enters dispatch.
type RequestEvent struct {
	Request model.RideRequest
}
