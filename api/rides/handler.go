package rides

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/unirides/dispatch/core/dispatch"
	"github.com/unirides/dispatch/core/model"
	"github.com/unirides/dispatch/core/ride"
)

// Dispatcher is the coordinator surface the ride API needs.
type Dispatcher interface {
	Submit(req model.RideRequest) (model.RideRequest, error)
	Cancel(rideID, riderID string) error
	Request(rideID string) (model.RideRequest, error)
}

type submitRequest struct {
	RiderID       string         `json:"rider_id"`
	Pickup        model.Location `json:"pickup"`
	Destination   model.Location `json:"destination"`
	EstimatedFare float64        `json:"estimated_amount"`
}

type submitResponse struct {
	RideID string `json:"ride_id"`
	State  string `json:"state"`
}

type cancelRequest struct {
	RiderID string `json:"rider_id"`
}

// NewSubmitHandler accepts new ride requests via POST /api/rides.
func NewSubmitHandler(d Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var in submitRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		req, err := d.Submit(model.RideRequest{
			RiderID:       in.RiderID,
			Pickup:        in.Pickup,
			Destination:   in.Destination,
			EstimatedFare: in.EstimatedFare,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(submitResponse{RideID: req.ID, State: req.State.String()})
	})
}

// NewCancelHandler withdraws a ride request via POST /api/rides/{id}/cancel.
func NewCancelHandler(d Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "missing ride id", http.StatusBadRequest)
			return
		}
		var in cancelRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RiderID == "" {
			http.Error(w, "missing rider_id", http.StatusBadRequest)
			return
		}
		if err := d.Cancel(id, in.RiderID); err != nil {
			status := http.StatusConflict
			switch {
			case errors.Is(err, ride.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, dispatch.ErrRiderMismatch):
				status = http.StatusForbidden
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// NewStatusHandler reports the current state of a ride request via GET /api/rides/{id}.
func NewStatusHandler(d Dispatcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "missing ride id", http.StatusBadRequest)
			return
		}
		req, err := d.Request(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(req)
	})
}
