package logging

import (
	"context"
	"time"
)

// OfferLog captures the resolution of one offer within a session.
type OfferLog struct {
	DriverID  string `json:"driver_id"`
	Result    string `json:"result"`
	LatencyMS int64  `json:"latency_ms"`
}

// LogRecord captures one completed dispatch session.
type LogRecord struct {
	Timestamp  time.Time  `json:"timestamp"`
	RideID     string     `json:"ride_id"`
	RiderID    string     `json:"rider_id"`
	Candidates []string   `json:"candidates"`
	Offers     []OfferLog `json:"offers"`
	Outcome    string     `json:"outcome"`
	DriverID   string     `json:"driver_id,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// LogQuery defines filters for retrieving records.
type LogQuery struct {
	Start    time.Time
	End      time.Time
	RideID   string
	DriverID string
}

// Matches reports whether the record passes the query filters.
func (q LogQuery) Matches(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RideID != "" && r.RideID != q.RideID {
		return false
	}
	if q.DriverID != "" {
		found := false
		for _, id := range r.Candidates {
			if id == q.DriverID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
