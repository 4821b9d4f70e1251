package dispatch

import (
	"time"

	"github.com/unirides/dispatch/core/dispatch/logging"
	"github.com/unirides/dispatch/core/events"
	"github.com/unirides/dispatch/core/gateway"
	"github.com/unirides/dispatch/core/model"
)

// SessionState is the state of a dispatch session.
type SessionState int

const (
	StatePending SessionState = iota
	StateOffering
	StateAdvancing
	StateAccepted
	StateExhausted
	StateCancelled
	StateExpired
)

// String returns a human-readable representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateOffering:
		return "OFFERING"
	case StateAdvancing:
		return "ADVANCING"
	case StateAccepted:
		return "ACCEPTED"
	case StateExhausted:
		return "EXHAUSTED"
	case StateCancelled:
		return "CANCELLED"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

type eventKind int

const (
	evResponse eventKind = iota
	evCancel
)

type sessionEvent struct {
	kind     eventKind
	driverID string
	accepted bool
}

// resolution is the terminal decision of a session. freeDriver names a driver
// that still holds a BUSY mark from the in-flight offer and must be released
// after the ride reaches its terminal state.
type resolution struct {
	state      SessionState
	driverID   string
	freeDriver string
}

// session drives offers for one ride request across its candidate list. All
// state transitions are applied by the single run goroutine, which drains one
// event channel; that goroutine is the authoritative claim point resolving
// races between accept, reject, timeout and cancellation.
type session struct {
	coord      *Coordinator
	req        model.RideRequest
	candidates []string
	state      SessionState
	startedAt  time.Time

	events chan sessionEvent
	done   chan struct{}

	offers []logging.OfferLog
}

func newSession(c *Coordinator, req model.RideRequest, candidates []string) *session {
	return &session{
		coord:      c,
		req:        req,
		candidates: candidates,
		state:      StatePending,
		startedAt:  time.Now(),
		events:     make(chan sessionEvent, 4),
		done:       make(chan struct{}),
	}
}

// deliver hands an external event to the run goroutine. It fails with
// ErrInvalidTransition once the session has resolved.
func (s *session) deliver(ev sessionEvent) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrInvalidTransition
	}
}

// run executes the session to a terminal state.
func (s *session) run() {
	activeSessions.Inc()
	defer activeSessions.Dec()

	if len(s.candidates) == 0 {
		s.coord.log.Infof("ride %s: no candidates, exhausting immediately", s.req.ID)
		s.finalize(resolution{state: StateExhausted})
		return
	}

	expiry := time.NewTimer(s.expiryBudget())
	defer expiry.Stop()

	for _, driverID := range s.candidates {
		res, final := s.offerTo(driverID, expiry.C)
		if final {
			s.finalize(res)
			return
		}
	}
	s.finalize(resolution{state: StateExhausted})
}

// expiryBudget bounds the whole session: no request may dispatch longer than
// one deadline per candidate plus slack for delivery overhead.
func (s *session) expiryBudget() time.Duration {
	per := s.coord.offerTimeout()
	return per*time.Duration(len(s.candidates)) + per/2
}

// offerTo runs a single offer round against one driver. It returns final=false
// when the session should advance to the next candidate.
func (s *session) offerTo(driverID string, expiry <-chan time.Time) (resolution, bool) {
	s.state = StateOffering
	if !s.coord.registry.MarkBusy(driverID) {
		// candidate went offline or was claimed by another session since the
		// list was built; skip without sending an offer
		s.coord.log.Warnf("ride %s: driver %s no longer claimable, skipping", s.req.ID, driverID)
		s.state = StateAdvancing
		return resolution{}, false
	}
	if err := s.coord.store.SetState(s.req.ID, model.RideOffered); err != nil {
		s.coord.log.Errorf("ride %s: mark offered: %v", s.req.ID, err)
	}

	start := time.Now()
	offer := gateway.Offer{
		RideID:        s.req.ID,
		Pickup:        s.req.Pickup,
		Destination:   s.req.Destination,
		EstimatedFare: s.req.EstimatedFare,
		CreatedAt:     s.req.CreatedAt,
	}
	if err := s.coord.gateway.SendOffer(driverID, offer); err != nil {
		// delivery failure counts as a rejection: free the driver, move on
		deliveryFailure.Inc()
		s.coord.registry.MarkFree(driverID)
		s.recordOffer(driverID, events.OfferUnreachable, err, time.Since(start))
		s.state = StateAdvancing
		return resolution{}, false
	}

	deadline := s.coord.offerTimeout()
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for {
		select {
		case ev := <-s.events:
			switch ev.kind {
			case evCancel:
				s.recordOffer(driverID, events.OfferCancelled, nil, time.Since(start))
				return resolution{state: StateCancelled, freeDriver: driverID}, true
			case evResponse:
				if ev.driverID != driverID {
					// late answer for an already-resolved offer; its claim is
					// gone, so the event is dropped
					s.coord.log.Warnf("ride %s: stale response from driver %s ignored", s.req.ID, ev.driverID)
					continue
				}
				latency := time.Since(start)
				s.coord.tunerObserve(latency, true)
				if ev.accepted {
					s.recordOffer(driverID, events.OfferAccepted, nil, latency)
					return resolution{state: StateAccepted, driverID: driverID}, true
				}
				s.coord.registry.MarkFree(driverID)
				s.recordOffer(driverID, events.OfferRejected, nil, latency)
				s.state = StateAdvancing
				return resolution{}, false
			}
		case <-timer.C:
			s.coord.tunerObserve(deadline, false)
			s.coord.registry.MarkFree(driverID)
			s.recordOffer(driverID, events.OfferTimedOut, nil, deadline)
			s.state = StateAdvancing
			return resolution{}, false
		case <-expiry:
			s.recordOffer(driverID, events.OfferTimedOut, nil, time.Since(start))
			return resolution{state: StateExpired, freeDriver: driverID}, true
		}
	}
}

// recordOffer publishes the per-offer event and keeps the session log.
func (s *session) recordOffer(driverID, result string, err error, latency time.Duration) {
	offersResolved.WithLabelValues(result).Inc()
	offerLatency.Observe(latency.Seconds())
	s.offers = append(s.offers, logging.OfferLog{
		DriverID:  driverID,
		Result:    result,
		LatencyMS: latency.Milliseconds(),
	})
	if s.coord.bus != nil {
		s.coord.bus.Publish(events.OfferEvent{
			RideID:   s.req.ID,
			DriverID: driverID,
			Result:   result,
			Err:      err,
			Latency:  latency,
		})
	}
}

// finalize applies the terminal transition: ride state first, then the
// registry release, then notifications. Ordering matters so no observer sees
// a freed driver while the ride still looks active.
func (s *session) finalize(res resolution) {
	s.state = res.state

	var rideState model.RideState
	var outcomeEvent string
	switch res.state {
	case StateAccepted:
		rideState = model.RideAccepted
		outcomeEvent = gateway.OutcomeAccepted
		if err := s.coord.store.Accept(s.req.ID, res.driverID); err != nil {
			s.coord.log.Errorf("ride %s: accept: %v", s.req.ID, err)
		}
	case StateExhausted:
		rideState = model.RideRejectedByAll
		outcomeEvent = gateway.OutcomeRejected
	case StateExpired:
		rideState = model.RideExpired
		outcomeEvent = gateway.OutcomeExpired
	case StateCancelled:
		rideState = model.RideCancelled
		outcomeEvent = gateway.OutcomeCancelled
	}
	if res.state != StateAccepted {
		if err := s.coord.store.SetState(s.req.ID, rideState); err != nil {
			s.coord.log.Errorf("ride %s: set state %s: %v", s.req.ID, rideState, err)
		}
	}
	if res.freeDriver != "" {
		s.coord.registry.MarkFree(res.freeDriver)
	}

	outcome := gateway.Outcome{RideID: s.req.ID, Event: outcomeEvent, DriverID: res.driverID}
	if err := s.coord.gateway.SendOutcome(s.req.RiderID, outcome); err != nil {
		s.coord.log.Warnf("ride %s: rider %s unreachable for outcome: %v", s.req.ID, s.req.RiderID, err)
	}

	duration := time.Since(s.startedAt)
	sessionsEnded.WithLabelValues(rideState.String()).Inc()
	if s.coord.bus != nil {
		s.coord.bus.Publish(events.SessionEvent{
			RideID:     s.req.ID,
			RiderID:    s.req.RiderID,
			Outcome:    rideState.String(),
			DriverID:   res.driverID,
			Candidates: len(s.candidates),
			Duration:   duration,
		})
	}
	s.coord.appendLog(logging.LogRecord{
		Timestamp:  time.Now(),
		RideID:     s.req.ID,
		RiderID:    s.req.RiderID,
		Candidates: s.candidates,
		Offers:     s.offers,
		Outcome:    rideState.String(),
		DriverID:   res.driverID,
		DurationMS: duration.Milliseconds(),
	})
	s.coord.log.Infof("ride %s resolved: %s after %d offers", s.req.ID, rideState, len(s.offers))

	s.coord.finish(s)
}
