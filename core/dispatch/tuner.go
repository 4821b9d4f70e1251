package dispatch

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// TimeoutTuner adjusts the effective offer deadline from observed driver
// response latencies.
type TimeoutTuner interface {
	// Observe records one offer resolution. responded is false on timeout.
	Observe(latency time.Duration, responded bool)
	// Timeout returns the deadline to use for the next offer.
	Timeout(base time.Duration) time.Duration
}

// NoopTuner keeps the configured deadline unchanged.
type NoopTuner struct{}

func (NoopTuner) Observe(time.Duration, bool)             {}
func (NoopTuner) Timeout(base time.Duration) time.Duration { return base }

// minSamples is the number of observed responses required before the tuner
// starts overriding the configured deadline.
const minSamples = 20

// QuantileTuner derives the deadline from a high quantile of the response
// latency distribution, with a safety margin, clamped to [min, max]. Drivers
// that never respond do not contribute samples; the clamp keeps a run of
// timeouts from inflating the deadline.
type QuantileTuner struct {
	min      time.Duration
	max      time.Duration
	quantile float64
	margin   float64

	mu      sync.Mutex
	samples []float64 // response latencies in seconds, ring-buffered
	next    int
	full    bool
}

// NewQuantileTuner creates a tuner bounded by min and max. It returns nil if
// the bounds are inconsistent.
func NewQuantileTuner(min, max time.Duration) *QuantileTuner {
	if min <= 0 || max < min {
		return nil
	}
	return &QuantileTuner{
		min:      min,
		max:      max,
		quantile: 0.95,
		margin:   1.25,
		samples:  make([]float64, 256),
	}
}

// Observe records a response latency. Timeouts are ignored.
func (t *QuantileTuner) Observe(latency time.Duration, responded bool) {
	if !responded {
		return
	}
	t.mu.Lock()
	t.samples[t.next] = latency.Seconds()
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.full = true
	}
	t.mu.Unlock()
}

// Timeout returns the tuned deadline, or base while too few samples exist.
func (t *QuantileTuner) Timeout(base time.Duration) time.Duration {
	t.mu.Lock()
	n := t.next
	if t.full {
		n = len(t.samples)
	}
	if n < minSamples {
		t.mu.Unlock()
		return clamp(base, t.min, t.max)
	}
	xs := make([]float64, n)
	copy(xs, t.samples[:n])
	t.mu.Unlock()

	sort.Float64s(xs)
	q := stat.Quantile(t.quantile, stat.Empirical, xs, nil)
	d := time.Duration(q * t.margin * float64(time.Second))
	return clamp(d, t.min, t.max)
}

func clamp(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}
