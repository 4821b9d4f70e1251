package metrics

import "time"

// SessionResult represents a finished dispatch session to be recorded.
type SessionResult struct {
	RideID     string
	RiderID    string
	Outcome    string
	DriverID   string
	Candidates int
	Duration   time.Duration
	Time       time.Time
}

// MetricsSink records dispatch results for observability purposes.
type MetricsSink interface {
	RecordSessionResult(res SessionResult) error
}

// OfferResult captures the resolution of one offer to one driver.
type OfferResult struct {
	RideID   string
	DriverID string
	Result   string
	Latency  time.Duration
	Time     time.Time
}

// OfferRecorder is implemented by sinks able to record per-offer results.
type OfferRecorder interface {
	RecordOfferResult(res OfferResult) error
}

// FleetSizeRecorder records the number of drivers known to the registry.
type FleetSizeRecorder interface {
	RecordFleetSize(size int) error
}

// NopSink implements all recorder interfaces with no-op methods.
type NopSink struct{}

func (NopSink) RecordSessionResult(SessionResult) error { return nil }
func (NopSink) RecordOfferResult(OfferResult) error     { return nil }
func (NopSink) RecordFleetSize(int) error               { return nil }
