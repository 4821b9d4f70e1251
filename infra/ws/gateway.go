package ws

import (
	"fmt"

	"github.com/unirides/dispatch/core/gateway"
)

// Envelope is the wire frame for every server-to-client message.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// EventNewRideRequest is the event name carrying an offer to a driver.
const EventNewRideRequest = "new_ride_request"

// Gateway delivers offers and outcomes over hub sessions. A missing session
// or a failed write both surface as gateway.ErrUnreachable; the caller decides
// what a failed delivery means.
type Gateway struct {
	hub *Hub
}

var _ gateway.Gateway = (*Gateway)(nil)

func NewGateway(hub *Hub) *Gateway {
	return &Gateway{hub: hub}
}

func (g *Gateway) SendOffer(driverID string, offer gateway.Offer) error {
	if err := g.hub.Send(driverID, Envelope{Event: EventNewRideRequest, Data: offer}); err != nil {
		return fmt.Errorf("offer to %s: %w: %w", driverID, gateway.ErrUnreachable, err)
	}
	return nil
}

func (g *Gateway) SendOutcome(partyID string, outcome gateway.Outcome) error {
	if err := g.hub.Send(partyID, Envelope{Event: outcome.Event, Data: outcome}); err != nil {
		return fmt.Errorf("outcome to %s: %w: %w", partyID, gateway.ErrUnreachable, err)
	}
	return nil
}
