package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordingTB captures failures without failing the enclosing test
type recordingTB struct {
	testing.TB
	failures []string
	cleanups []func()
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func (r *recordingTB) Cleanup(fn func()) { r.cleanups = append(r.cleanups, fn) }

func TestGoroutineLeakDetector(t *testing.T) {
	t.Run("NoLeak", func(t *testing.T) {
		rec := &recordingTB{TB: t}
		detector := NewGoroutineLeakDetector(rec).Start()

		done := make(chan struct{})
		go func() { close(done) }()
		<-done

		detector.Check()
		assert.Empty(t, rec.failures)
	})

	t.Run("DetectsLeak", func(t *testing.T) {
		rec := &recordingTB{TB: t}
		detector := NewGoroutineLeakDetector(rec).SetTimeout(100 * time.Millisecond).Start()

		stop := make(chan struct{})
		defer close(stop)
		go func() { <-stop }()

		detector.Check()
		assert.Len(t, rec.failures, 1)
		assert.Contains(t, rec.failures[0], "goroutine leak")
	})

	t.Run("AllowedGrowth", func(t *testing.T) {
		rec := &recordingTB{TB: t}
		detector := NewGoroutineLeakDetector(rec).SetAllowedGrowth(1).SetTimeout(50 * time.Millisecond).Start()

		stop := make(chan struct{})
		defer close(stop)
		go func() { <-stop }()

		detector.Check()
		assert.Empty(t, rec.failures)
	})

	t.Run("CheckOnCleanup", func(t *testing.T) {
		rec := &recordingTB{TB: t}
		NewGoroutineLeakDetector(rec).Start().CheckOnCleanup()
		assert.Len(t, rec.cleanups, 1)
		rec.cleanups[0]()
		assert.Empty(t, rec.failures)
	})
}
