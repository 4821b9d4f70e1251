// Package registry tracks connected drivers, their availability and their
// last-known location.
package registry

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/unirides/dispatch/core/logger"
	"github.com/unirides/dispatch/core/model"
)

// ErrNotFound is returned when the referenced driver is unknown.
var ErrNotFound = errors.New("driver not found")

// Registry is the in-memory driver registry. All mutations of driver
// availability go through the registry's own synchronized operations;
// dispatch sessions never touch driver state directly.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]*model.Driver
	log     logger.Logger
	now     func() time.Time
}

// New creates an empty Registry.
func New(log logger.Logger) *Registry {
	return &Registry{
		drivers: make(map[string]*model.Driver),
		log:     log,
		now:     time.Now,
	}
}

// Register adds the driver if it is not yet known. Registration is idempotent
// and leaves the driver OFFLINE until it explicitly goes online.
func (r *Registry) Register(id string, initial *model.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[id]; ok {
		return
	}
	r.drivers[id] = &model.Driver{
		ID:           id,
		Availability: model.AvailabilityOffline,
		Location:     initial,
		UpdatedAt:    r.now(),
	}
}

// SetAvailability transitions the driver between AVAILABLE and OFFLINE.
// Setting the current status again is a no-op. A BUSY driver cannot toggle
// its availability; the dispatch layer owns that state.
func (r *Registry) SetAvailability(id string, av model.Availability) error {
	if av != model.AvailabilityAvailable && av != model.AvailabilityOffline {
		return fmt.Errorf("availability %s cannot be set directly", av)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return ErrNotFound
	}
	if d.Availability == av {
		return nil
	}
	if d.Availability == model.AvailabilityBusy {
		return fmt.Errorf("driver %s is busy", id)
	}
	d.Availability = av
	d.UpdatedAt = r.now()
	return nil
}

// UpdateLocation overwrites the driver's last-known location. No history is
// retained.
func (r *Registry) UpdateLocation(id string, lat, lng float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return ErrNotFound
	}
	d.Location = &model.Location{Lat: lat, Lng: lng}
	d.UpdatedAt = r.now()
	return nil
}

// SetRating overwrites the driver's rating.
func (r *Registry) SetRating(id string, rating float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return ErrNotFound
	}
	d.Rating = rating
	d.UpdatedAt = r.now()
	return nil
}

// MarkBusy claims an AVAILABLE driver for an offer or ride, moving it to
// BUSY. Called exclusively by the dispatch layer. The claim fails when the
// driver is unknown, OFFLINE, or already BUSY with another session; candidate
// lists go stale between build and offer, so a failed claim is logged and the
// caller moves on.
func (r *Registry) MarkBusy(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		r.log.Warnf("mark busy: driver %s not found", id)
		return false
	}
	if d.Availability != model.AvailabilityAvailable {
		r.log.Debugf("mark busy: driver %s is %s, not claimable", id, d.Availability)
		return false
	}
	d.Availability = model.AvailabilityBusy
	d.UpdatedAt = r.now()
	return true
}

// MarkFree returns a BUSY driver to AVAILABLE after an offer resolved without
// an accept. A driver that went OFFLINE in the meantime stays OFFLINE.
func (r *Registry) MarkFree(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		r.log.Warnf("mark free: driver %s not found", id)
		return
	}
	if d.Availability != model.AvailabilityBusy {
		r.log.Debugf("mark free: driver %s is %s, not busy", id, d.Availability)
		return
	}
	d.Availability = model.AvailabilityAvailable
	d.UpdatedAt = r.now()
}

// Disconnect marks the driver OFFLINE when its connection drops.
func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return
	}
	d.Availability = model.AvailabilityOffline
	d.UpdatedAt = r.now()
}

// Get returns a copy of the driver record.
func (r *Registry) Get(id string) (model.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[id]
	if !ok {
		return model.Driver{}, ErrNotFound
	}
	return *d, nil
}

// Snapshot returns a copy of all driver records ordered by identifier.
func (r *Registry) Snapshot() []model.Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Size returns the number of registered drivers.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drivers)
}

// ListAvailable returns a finite, restartable sequence of the drivers that
// are AVAILABLE and within radiusKm of near, ordered by ascending distance
// with ties broken by driver identifier. The sequence iterates over a
// snapshot taken at call time, so repeated iteration is deterministic.
func (r *Registry) ListAvailable(near model.Location, radiusKm float64) iter.Seq[model.Driver] {
	r.mu.RLock()
	matches := make([]model.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		if !d.Eligible() {
			continue
		}
		if d.Location.DistanceKm(near) > radiusKm {
			continue
		}
		matches = append(matches, *d)
	}
	r.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		di := matches[i].Location.DistanceKm(near)
		dj := matches[j].Location.DistanceKm(near)
		if di != dj {
			return di < dj
		}
		return matches[i].ID < matches[j].ID
	})

	return func(yield func(model.Driver) bool) {
		for _, d := range matches {
			if !yield(d) {
				return
			}
		}
	}
}
