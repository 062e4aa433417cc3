// Package profiler tracks per-operation timing statistics across many runs.
package profiler

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Options configures the tracker.
type Options struct {
	// MaxSamples specifies maximum number of durations kept per operation (default: 600)
	MaxSamples int
}

// Tracker records operation durations. It is safe for concurrent use, so one
// tracker can be shared by every worker of a batch run.
type Tracker struct {
	mu         sync.RWMutex
	maxSamples int
	operations map[string]*TimeTracker
	order      []string
}

// TimeTracker tracks timing statistics for one operation.
type TimeTracker struct {
	name      string
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a snapshot of one operation's timings.
type OperationStats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Mean  time.Duration `json:"mean"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

// NewTracker creates a tracker with the specified options.
//
// Arguments:
// - opts: Configuration options for the tracker
//
// Returns:
// - A configured Tracker instance
func NewTracker(opts Options) *Tracker {
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = 600
	}
	return &Tracker{
		maxSamples: opts.MaxSamples,
		operations: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes; it returns the elapsed time
func (t *Tracker) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		t.Record(name, d)
		return d
	}
}

// Record adds one duration for the named operation.
func (t *Tracker) Record(name string, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tracker, exists := t.operations[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		t.operations[name] = tracker
		t.order = append(t.order, name)
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > t.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Stats returns a snapshot of every operation in first-recorded order. Mean is
// taken over the retained window of samples; Count covers all of them.
func (t *Tracker) Stats() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := make([]OperationStats, 0, len(t.order))
	for _, name := range t.order {
		tracker := t.operations[name]
		s := OperationStats{
			Name:  name,
			Count: tracker.count,
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
		}
		if n := len(tracker.durations); n > 0 {
			s.Mean = tracker.totalTime / time.Duration(n)
		}
		stats = append(stats, s)
	}
	return stats
}

// Report writes the operation timings table to w.
func (t *Tracker) Report(w io.Writer) error {
	stats := t.Stats()
	if len(stats) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "OPERATION TIMINGS:\n"); err != nil {
		return err
	}
	for _, s := range stats {
		_, err := fmt.Fprintf(w, "  %s: avg=%v, min=%v, max=%v, count=%d\n",
			s.Name, s.Mean.Truncate(time.Microsecond),
			s.Min.Truncate(time.Microsecond),
			s.Max.Truncate(time.Microsecond),
			s.Count)
		if err != nil {
			return err
		}
	}
	return nil
}
