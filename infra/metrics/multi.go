package metrics

import coremetrics "github.com/unirides/dispatch/core/metrics"

// MultiSink fans dispatch records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSessionResult forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSessionResult(res coremetrics.SessionResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordSessionResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordOfferResult forwards offer results to sinks that support them.
func (m *MultiSink) RecordOfferResult(res coremetrics.OfferResult) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.OfferRecorder); ok {
			if err := rec.RecordOfferResult(res); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSize forwards registry size snapshots to sinks that support them.
func (m *MultiSink) RecordFleetSize(size int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FleetSizeRecorder); ok {
			if err := rec.RecordFleetSize(size); err != nil {
				return err
			}
		}
	}
	return nil
}
