// Package utils holds test support shared across fetch packages.
package utils

import (
	"runtime"
	"testing"
	"time"
)

// GoroutineLeakDetector fails a test when goroutines started during it are
// still running after it finishes. Transports own background work such as
// idle connections and metrics servers; the detector checks that closing
// them releases it.
type GoroutineLeakDetector struct {
	tb            testing.TB
	baseline      int
	allowedGrowth int
	timeout       time.Duration
	poll          time.Duration
}

// NewGoroutineLeakDetector creates a detector reporting to tb
func NewGoroutineLeakDetector(tb testing.TB) *GoroutineLeakDetector {
	return &GoroutineLeakDetector{
		tb:      tb,
		timeout: 2 * time.Second,
		poll:    25 * time.Millisecond,
	}
}

// SetAllowedGrowth sets the number of goroutines allowed to outlive the test
func (d *GoroutineLeakDetector) SetAllowedGrowth(n int) *GoroutineLeakDetector {
	d.allowedGrowth = n
	return d
}

// SetTimeout bounds how long Check waits for goroutines to exit
func (d *GoroutineLeakDetector) SetTimeout(timeout time.Duration) *GoroutineLeakDetector {
	d.timeout = timeout
	return d
}

// Start records the baseline goroutine count
func (d *GoroutineLeakDetector) Start() *GoroutineLeakDetector {
	d.baseline = runtime.NumGoroutine()
	return d
}

// CheckOnCleanup runs Check when the test finishes
func (d *GoroutineLeakDetector) CheckOnCleanup() {
	d.tb.Cleanup(d.Check)
}

// Check waits up to the timeout for the goroutine count to return to the
// baseline and fails the test with a full stack dump if it does not.
func (d *GoroutineLeakDetector) Check() {
	d.tb.Helper()

	deadline := time.Now().Add(d.timeout)
	current := runtime.NumGoroutine()
	for current-d.baseline > d.allowedGrowth && time.Now().Before(deadline) {
		time.Sleep(d.poll)
		current = runtime.NumGoroutine()
	}

	if leaked := current - d.baseline; leaked > d.allowedGrowth {
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		d.tb.Errorf("goroutine leak: baseline %d, now %d (leaked %d, allowed %d)\n%s",
			d.baseline, current, leaked, d.allowedGrowth, buf[:n])
	}
}
