package profiler

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsStatistics(t *testing.T) {
	tr := NewTracker(Options{})
	tr.Record("dark_channel", 3*time.Millisecond)
	tr.Record("dark_channel", 1*time.Millisecond)
	tr.Record("transmission", 5*time.Millisecond)

	stats := tr.Stats()
	require.Len(t, stats, 2)

	assert.Equal(t, "dark_channel", stats[0].Name)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.Equal(t, 2*time.Millisecond, stats[0].Mean)
	assert.Equal(t, 1*time.Millisecond, stats[0].Min)
	assert.Equal(t, 3*time.Millisecond, stats[0].Max)

	assert.Equal(t, "transmission", stats[1].Name)
}

func TestTrackerKeepsBoundedWindow(t *testing.T) {
	tr := NewTracker(Options{MaxSamples: 2})
	tr.Record("op", 10*time.Millisecond)
	tr.Record("op", 2*time.Millisecond)
	tr.Record("op", 4*time.Millisecond)

	stats := tr.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].Count)
	assert.Equal(t, 3*time.Millisecond, stats[0].Mean)
	assert.Equal(t, 10*time.Millisecond, stats[0].Max)
}

func TestStartOperation(t *testing.T) {
	tr := NewTracker(Options{})
	done := tr.StartOperation("op")
	d := done()
	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.Len(t, tr.Stats(), 1)
}

func TestTrackerConcurrentRecord(t *testing.T) {
	tr := NewTracker(Options{MaxSamples: 10})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Record("op", time.Microsecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), tr.Stats()[0].Count)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTracker(Options{})
	require.NoError(t, tr.Report(&buf))
	assert.Empty(t, buf.String())

	tr.Record("radiance", 1500*time.Microsecond)
	require.NoError(t, tr.Report(&buf))
	assert.Contains(t, buf.String(), "OPERATION TIMINGS:")
	assert.Contains(t, buf.String(), "radiance: avg=1.5ms, min=1.5ms, max=1.5ms, count=1")
}
