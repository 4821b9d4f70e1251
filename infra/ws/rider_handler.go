package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unirides/dispatch/core/logger"
	"github.com/unirides/dispatch/core/ride"
)

// EventCancelRide is the rider-initiated cancellation event.
const EventCancelRide = "cancelRide"

// Canceller withdraws an in-flight ride request on behalf of its rider.
type Canceller interface {
	Cancel(rideID, riderID string) error
}

type cancelRide struct {
	RideID string `json:"ride_id"`
}

// RiderHandler keeps rider sockets registered so outcomes can be pushed back,
// and accepts cancellation events.
type RiderHandler struct {
	hub       *Hub
	canceller Canceller
	log       logger.Logger
	upgrader  websocket.Upgrader
}

func NewRiderHandler(hub *Hub, canceller Canceller, log logger.Logger) *RiderHandler {
	return &RiderHandler{
		hub:       hub,
		canceller: canceller,
		log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws/riders/{id}.
func (h *RiderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	riderID := r.PathValue("id")
	if riderID == "" {
		http.Error(w, "missing rider id", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("rider ws upgrade failed: %v", err)
		return
	}
	h.log.Infof("rider %s connected", riderID)

	h.hub.Add(riderID, conn)

	stop := make(chan struct{})
	go h.pingLoop(conn, stop)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.readLoop(conn, riderID)

	close(stop)
	h.hub.Remove(riderID, conn)
	conn.Close()
	h.log.Infof("rider %s disconnected", riderID)
}

func (h *RiderHandler) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (h *RiderHandler) readLoop(conn *websocket.Conn, riderID string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("rider %s read: %v", riderID, err)
			}
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.log.Warnf("rider %s sent malformed frame: %v", riderID, err)
			continue
		}
		if frame.Event != EventCancelRide {
			h.log.Debugf("rider %s sent unknown event %q", riderID, frame.Event)
			continue
		}
		var c cancelRide
		if err := json.Unmarshal(frame.Data, &c); err != nil {
			h.log.Warnf("rider %s cancelRide: %v", riderID, err)
			continue
		}
		if err := h.canceller.Cancel(c.RideID, riderID); err != nil {
			if errors.Is(err, ride.ErrNotFound) {
				h.log.Warnf("rider %s cancelled unknown ride %s", riderID, c.RideID)
			} else {
				h.log.Warnf("rider %s cancel %s: %v", riderID, c.RideID, err)
			}
		}
	}
}
