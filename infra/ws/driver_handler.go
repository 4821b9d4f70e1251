package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unirides/dispatch/core/logger"
	"github.com/unirides/dispatch/core/model"
)

// Inbound driver event names.
const (
	EventRideResponse   = "ride_response"
	EventStatusUpdate   = "status_update"
	EventLocationUpdate = "location_update"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 5 * time.Second
)

// DriverStore is the registry surface the socket layer needs.
type DriverStore interface {
	Register(id string, initial *model.Location)
	SetAvailability(id string, av model.Availability) error
	UpdateLocation(id string, lat, lng float64) error
	Disconnect(id string)
}

// ResponseHandler receives a driver's answer to an outstanding offer.
type ResponseHandler interface {
	HandleDriverResponse(rideID, driverID string, accepted bool) error
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type rideResponse struct {
	RideID   string `json:"ride_id"`
	Response string `json:"response"`
}

type statusUpdate struct {
	Status string `json:"status"`
}

type locationUpdate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DriverHandler upgrades driver sockets, registers them with the hub and
// registry, and feeds their messages into the dispatcher.
type DriverHandler struct {
	hub       *Hub
	store     DriverStore
	responses ResponseHandler
	log       logger.Logger
	upgrader  websocket.Upgrader
}

func NewDriverHandler(hub *Hub, store DriverStore, responses ResponseHandler, log logger.Logger) *DriverHandler {
	return &DriverHandler{
		hub:       hub,
		store:     store,
		responses: responses,
		log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws/drivers/{id}.
func (h *DriverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	driverID := r.PathValue("id")
	if driverID == "" {
		http.Error(w, "missing driver id", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("driver ws upgrade failed: %v", err)
		return
	}
	h.log.Infof("driver %s connected", driverID)

	h.store.Register(driverID, nil)
	h.hub.Add(driverID, conn)

	stop := make(chan struct{})
	go h.pingLoop(conn, stop)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.readLoop(conn, driverID)

	close(stop)
	h.hub.Remove(driverID, conn)
	h.store.Disconnect(driverID)
	conn.Close()
	h.log.Infof("driver %s disconnected", driverID)
}

func (h *DriverHandler) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
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

func (h *DriverHandler) readLoop(conn *websocket.Conn, driverID string) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("driver %s read: %v", driverID, err)
			}
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.log.Warnf("driver %s sent malformed frame: %v", driverID, err)
			continue
		}
		h.handleFrame(driverID, frame)
	}
}

func (h *DriverHandler) handleFrame(driverID string, frame inboundFrame) {
	switch frame.Event {
	case EventRideResponse:
		var resp rideResponse
		if err := json.Unmarshal(frame.Data, &resp); err != nil {
			h.log.Warnf("driver %s ride_response: %v", driverID, err)
			return
		}
		accepted := resp.Response == "accepted"
		if err := h.responses.HandleDriverResponse(resp.RideID, driverID, accepted); err != nil {
			h.log.Warnf("driver %s response for ride %s dropped: %v", driverID, resp.RideID, err)
		}
	case EventStatusUpdate:
		var upd statusUpdate
		if err := json.Unmarshal(frame.Data, &upd); err != nil {
			h.log.Warnf("driver %s status_update: %v", driverID, err)
			return
		}
		av := model.AvailabilityOffline
		if upd.Status == "online" {
			av = model.AvailabilityAvailable
		}
		if err := h.store.SetAvailability(driverID, av); err != nil {
			h.log.Warnf("driver %s status rejected: %v", driverID, err)
		}
	case EventLocationUpdate:
		var upd locationUpdate
		if err := json.Unmarshal(frame.Data, &upd); err != nil {
			h.log.Warnf("driver %s location_update: %v", driverID, err)
			return
		}
		if err := h.store.UpdateLocation(driverID, upd.Lat, upd.Lng); err != nil {
			h.log.Warnf("driver %s location rejected: %v", driverID, err)
		}
	default:
		h.log.Debugf("driver %s sent unknown event %q", driverID, frame.Event)
	}
}
