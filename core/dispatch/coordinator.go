// Package dispatch matches ride requests to drivers and guarantees
// exactly-once assignment under concurrent responses and timeouts.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unirides/dispatch/core/dispatch/logging"
	"github.com/unirides/dispatch/core/events"
	"github.com/unirides/dispatch/core/gateway"
	"github.com/unirides/dispatch/core/logger"
	"github.com/unirides/dispatch/core/model"
	"github.com/unirides/dispatch/core/registry"
	"github.com/unirides/dispatch/core/ride"
	"github.com/unirides/dispatch/internal/eventbus"
)

// CandidateBuilder ranks eligible drivers for a request.
type CandidateBuilder interface {
	BuildCandidateList(req model.RideRequest) []string
}

// Coordinator owns the dispatch sessions. Each ride request gets one session
// goroutine; sessions interact only through the registry's synchronized
// operations, so one session cannot corrupt another.
type Coordinator struct {
	cfg      Config
	registry *registry.Registry
	matcher  CandidateBuilder
	gateway  gateway.Gateway
	store    *ride.Store
	bus      eventbus.EventBus
	log      logger.Logger
	tuner    TimeoutTuner

	mu       sync.Mutex
	sessions map[string]*session
	logs     logging.LogStore
	closed   bool
	wg       sync.WaitGroup
}

// NewCoordinator creates a Coordinator. cfg defaults are applied if unset.
func NewCoordinator(cfg Config, reg *registry.Registry, matcher CandidateBuilder, gw gateway.Gateway, store *ride.Store, bus eventbus.EventBus, log logger.Logger) (*Coordinator, error) {
	if reg == nil || matcher == nil || gw == nil || store == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewCoordinator")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var tuner TimeoutTuner = NoopTuner{}
	if cfg.TunerEnabled {
		if qt := NewQuantileTuner(
			time.Duration(cfg.MinTimeoutSeconds)*time.Second,
			time.Duration(cfg.MaxTimeoutSeconds)*time.Second,
		); qt != nil {
			tuner = qt
		}
	}
	return &Coordinator{
		cfg:      cfg,
		registry: reg,
		matcher:  matcher,
		gateway:  gw,
		store:    store,
		bus:      bus,
		log:      log,
		tuner:    tuner,
		sessions: make(map[string]*session),
	}, nil
}

// SetLogStore configures the store used to persist session records.
func (c *Coordinator) SetLogStore(store logging.LogStore) {
	c.mu.Lock()
	c.logs = store
	c.mu.Unlock()
}

// Logs returns the configured session log store, or nil.
func (c *Coordinator) Logs() logging.LogStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logs
}

// SetTuner overrides the offer deadline tuner.
func (c *Coordinator) SetTuner(t TimeoutTuner) {
	if t == nil {
		return
	}
	c.mu.Lock()
	c.tuner = t
	c.mu.Unlock()
}

// offerTimeout returns the deadline for the next offer.
func (c *Coordinator) offerTimeout() time.Duration {
	c.mu.Lock()
	t := c.tuner
	c.mu.Unlock()
	base := time.Duration(c.cfg.OfferTimeoutSeconds) * time.Second
	return t.Timeout(base)
}

// tunerObserve feeds one offer resolution into the deadline tuner.
func (c *Coordinator) tunerObserve(latency time.Duration, responded bool) {
	c.mu.Lock()
	t := c.tuner
	c.mu.Unlock()
	t.Observe(latency, responded)
}

// Submit registers a new ride request and starts its dispatch session. The
// returned request carries the generated identifier.
func (c *Coordinator) Submit(req model.RideRequest) (model.RideRequest, error) {
	if err := req.Validate(); err != nil {
		return model.RideRequest{}, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	req.State = model.RidePending
	req.DriverID = ""

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return model.RideRequest{}, ErrClosed
	}
	c.store.Create(req)
	candidates := c.matcher.BuildCandidateList(req)
	s := newSession(c, req, candidates)
	c.sessions[req.ID] = s
	c.wg.Add(1)
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(events.RequestEvent{Request: req})
	}
	c.log.Infof("ride %s submitted by %s, %d candidates", req.ID, req.RiderID, len(candidates))

	go func() {
		defer c.wg.Done()
		s.run()
	}()
	return req, nil
}

// HandleDriverResponse routes a driver's accept or reject to the ride's
// session. A response for an unknown ride fails with ride.ErrNotFound; a
// response for an already-resolved ride fails with ErrInvalidTransition and
// never re-opens the session.
func (c *Coordinator) HandleDriverResponse(rideID, driverID string, accepted bool) error {
	if _, err := c.store.Get(rideID); err != nil {
		return err
	}
	c.mu.Lock()
	s := c.sessions[rideID]
	c.mu.Unlock()
	if s == nil {
		c.log.Warnf("ride %s: response from driver %s after resolution", rideID, driverID)
		return ErrInvalidTransition
	}
	return s.deliver(sessionEvent{kind: evResponse, driverID: driverID, accepted: accepted})
}

// Cancel interrupts the ride's session on behalf of the rider who submitted
// it. The currently-offered driver, if any, is freed and no further offers
// are sent. A cancel naming a different rider fails with ErrRiderMismatch.
func (c *Coordinator) Cancel(rideID, riderID string) error {
	req, err := c.store.Get(rideID)
	if err != nil {
		return err
	}
	if req.RiderID != riderID {
		c.log.Warnf("ride %s: cancel by %s rejected, owner is %s", rideID, riderID, req.RiderID)
		return ErrRiderMismatch
	}
	c.mu.Lock()
	s := c.sessions[rideID]
	c.mu.Unlock()
	if s == nil {
		return ErrInvalidTransition
	}
	return s.deliver(sessionEvent{kind: evCancel})
}

// Request returns the stored ride request.
func (c *Coordinator) Request(rideID string) (model.RideRequest, error) {
	return c.store.Get(rideID)
}

// appendLog persists a session record if a log store is configured.
func (c *Coordinator) appendLog(rec logging.LogRecord) {
	c.mu.Lock()
	store := c.logs
	c.mu.Unlock()
	if store == nil {
		return
	}
	if err := store.Append(context.Background(), rec); err != nil {
		c.log.Errorf("dispatch log append: %v", err)
	}
}

// finish removes the session and marks it resolved. Called exactly once by
// the session goroutine.
func (c *Coordinator) finish(s *session) {
	c.mu.Lock()
	delete(c.sessions, s.req.ID)
	c.mu.Unlock()
	close(s.done)
}

// Close cancels all running sessions and waits for them to resolve.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	active := make([]*session, 0, len(c.sessions))
	for _, s := range c.sessions {
		active = append(active, s)
	}
	logs := c.logs
	c.mu.Unlock()

	for _, s := range active {
		if err := s.deliver(sessionEvent{kind: evCancel}); err != nil && !errors.Is(err, ErrInvalidTransition) {
			c.log.Warnf("ride %s: cancel on close: %v", s.req.ID, err)
		}
	}
	c.wg.Wait()
	if logs != nil {
		return logs.Close()
	}
	return nil
}
