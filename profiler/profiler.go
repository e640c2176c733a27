// Package profiler - Timing utilities for evaluation runs.
package profiler

import (
	"sort"
	"sync"
	"time"
)

// TimeTracker tracks timing statistics for one named operation.
type TimeTracker struct {
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a snapshot of a TimeTracker.
type OperationStats struct {
	Name    string        `json:"name"`
	Count   int64         `json:"count"`
	Total   time.Duration `json:"total"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	Average time.Duration `json:"average"`
}

// OperationProfiler records operation durations. It is safe for concurrent use.
type OperationProfiler struct {
	mu             sync.RWMutex
	operationTimes map[string]*TimeTracker
}

// NewOperationProfiler creates an empty profiler.
func NewOperationProfiler() *OperationProfiler {
	return &OperationProfiler{
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *OperationProfiler) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		duration := time.Since(start)
		p.Record(name, duration)
		return duration
	}
}

// Record adds one duration sample for the named operation.
func (p *OperationProfiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			name:    name,
			minTime: duration,
			maxTime: duration,
		}
		p.operationTimes[name] = tracker
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

// Snapshot returns the statistics of every operation, sorted by name.
func (p *OperationProfiler) Snapshot() []OperationStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := make([]OperationStats, 0, len(p.operationTimes))
	for _, t := range p.operationTimes {
		s := OperationStats{
			Name:  t.name,
			Count: t.count,
			Total: t.totalTime,
			Min:   t.minTime,
			Max:   t.maxTime,
		}
		if t.count > 0 {
			s.Average = t.totalTime / time.Duration(t.count)
		}
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Name < stats[j].Name
	})

	return stats
}
