package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(rideID, driverID string, ts time.Time) LogRecord {
	return LogRecord{
		Timestamp:  ts,
		RideID:     rideID,
		RiderID:    "rider-1",
		Candidates: []string{driverID, "other"},
		Offers:     []OfferLog{{DriverID: driverID, Result: "accepted", LatencyMS: 1200}},
		Outcome:    "ACCEPTED",
		DriverID:   driverID,
	}
}

func TestJSONLStoreAppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.log")
	store, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	if err := store.Append(ctx, sampleRecord("r1", "d1", now)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, sampleRecord("r2", "d2", now.Add(time.Minute))); err != nil {
		t.Fatalf("append: %v", err)
	}

	recs, err := store.Query(ctx, LogQuery{RideID: "r1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].RideID != "r1" {
		t.Fatalf("unexpected result: %+v", recs)
	}

	recs, err = store.Query(ctx, LogQuery{DriverID: "d2"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].DriverID != "d2" {
		t.Fatalf("unexpected result: %+v", recs)
	}

	recs, err = store.Query(ctx, LogQuery{Start: now.Add(30 * time.Second)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 || recs[0].RideID != "r2" {
		t.Fatalf("time filter failed: %+v", recs)
	}
}

func TestRotatingJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dispatch.log")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		if err := store.Append(ctx, sampleRecord("r1", "d1", time.Now())); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	recs, err := store.Query(ctx, LogQuery{RideID: "r1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 10 {
		t.Fatalf("expected 10 records got %d", len(recs))
	}
}
