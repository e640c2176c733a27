package profiler

import "time"

// Timer is a tic/toc stopwatch that keeps a running average.
//
// A Timer is not safe for concurrent use; give each goroutine its own.
type Timer struct {
	start time.Time
	diff  time.Duration
	total time.Duration
	calls int
}

// Tic starts a measurement.
func (t *Timer) Tic() {
	t.start = time.Now()
}

// Toc ends a measurement started by Tic.
//
// Arguments:
// - average: Whether to return the running average instead of the last measurement.
//
// Returns:
// - The average duration over all calls, or the duration since the last Tic.
func (t *Timer) Toc(average bool) time.Duration {
	t.diff = time.Since(t.start)
	t.total += t.diff
	t.calls++
	if average {
		return t.Average()
	}
	return t.diff
}

// Average returns the mean duration of all completed measurements.
func (t *Timer) Average() time.Duration {
	if t.calls == 0 {
		return 0
	}
	return t.total / time.Duration(t.calls)
}

// Calls returns the number of completed measurements.
func (t *Timer) Calls() int {
	return t.calls
}

// Total returns the accumulated duration.
func (t *Timer) Total() time.Duration {
	return t.total
}
