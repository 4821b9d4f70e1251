package drivers

import (
	"encoding/json"
	"net/http"

	"github.com/unirides/dispatch/core/model"
)

// Source provides a point-in-time view of the driver registry.
type Source interface {
	Snapshot() []model.Driver
}

// NewListHandler returns an HTTP handler exposing the registry via GET /api/drivers.
// The optional availability query parameter filters by state name.
func NewListHandler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		drivers := src.Snapshot()
		if want := r.URL.Query().Get("availability"); want != "" {
			filtered := drivers[:0]
			for _, d := range drivers {
				if d.Availability.String() == want {
					filtered = append(filtered, d)
				}
			}
			drivers = filtered
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(drivers); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
