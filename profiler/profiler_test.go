package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationProfilerRecord(t *testing.T) {
	p := NewOperationProfiler()
	p.Record("match", 2*time.Millisecond)
	p.Record("match", 4*time.Millisecond)
	p.Record("curve", time.Millisecond)

	stats := p.Snapshot()
	require.Len(t, stats, 2)

	assert.Equal(t, "curve", stats[0].Name)
	assert.Equal(t, "match", stats[1].Name)
	assert.Equal(t, int64(2), stats[1].Count)
	assert.Equal(t, 2*time.Millisecond, stats[1].Min)
	assert.Equal(t, 4*time.Millisecond, stats[1].Max)
	assert.Equal(t, 3*time.Millisecond, stats[1].Average)
}

func TestOperationProfilerConcurrent(t *testing.T) {
	p := NewOperationProfiler()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done := p.StartOperation("class")
			assert.GreaterOrEqual(t, done(), time.Duration(0))
		}()
	}
	wg.Wait()

	stats := p.Snapshot()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(16), stats[0].Count)
}

func TestTimer(t *testing.T) {
	var timer Timer
	assert.Equal(t, time.Duration(0), timer.Average())

	timer.Tic()
	time.Sleep(time.Millisecond)
	last := timer.Toc(false)
	assert.GreaterOrEqual(t, last, time.Millisecond)

	timer.Tic()
	avg := timer.Toc(true)
	assert.Equal(t, 2, timer.Calls())
	assert.Equal(t, timer.Total()/2, avg)
}
