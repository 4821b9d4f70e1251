// Package ride holds ride requests and owns their lifecycle state.
package ride

import (
	"errors"
	"sync"

	"github.com/unirides/dispatch/core/model"
)

// ErrNotFound is returned when the referenced ride request is unknown.
var ErrNotFound = errors.New("ride request not found")

// ErrInvalidTransition is returned when a state change is requested on a
// request already in a terminal state.
var ErrInvalidTransition = errors.New("invalid ride state transition")

// Store is an in-memory ride request store. Requests are mutated only through
// Store methods so observers always see consistent state.
type Store struct {
	mu   sync.RWMutex
	reqs map[string]*model.RideRequest
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{reqs: make(map[string]*model.RideRequest)}
}

// Create registers a new request in PENDING state.
func (s *Store) Create(req model.RideRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.State = model.RidePending
	s.reqs[req.ID] = &req
}

// Get returns a copy of the request.
func (s *Store) Get(id string) (model.RideRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reqs[id]
	if !ok {
		return model.RideRequest{}, ErrNotFound
	}
	return *r, nil
}

// SetState transitions the request to the given state. Transitions out of a
// terminal state are rejected with ErrInvalidTransition.
func (s *Store) SetState(id string, st model.RideState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reqs[id]
	if !ok {
		return ErrNotFound
	}
	if r.State.Terminal() {
		return ErrInvalidTransition
	}
	r.State = st
	return nil
}

// Accept finalizes the request as ACCEPTED and records the winning driver.
func (s *Store) Accept(id, driverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reqs[id]
	if !ok {
		return ErrNotFound
	}
	if r.State.Terminal() {
		return ErrInvalidTransition
	}
	r.State = model.RideAccepted
	r.DriverID = driverID
	return nil
}

// List returns a copy of all stored requests.
func (s *Store) List() []model.RideRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RideRequest, 0, len(s.reqs))
	for _, r := range s.reqs {
		out = append(out, *r)
	}
	return out
}
