package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
)

var errNilStream = errors.New("transport returned no stream")

// FallbackObserver is notified of circuit and fallback events
type FallbackObserver interface {
	PrimaryTripped(primary string)
	FallbackUsed(primary, secondary string)
}

// FallbackStats is a snapshot of a FallbackTransport's counters
type FallbackStats struct {
	Attempts         int
	Failures         int
	Tripped          bool
	ReportedProblems int
}

// FallbackTransport serves streams from a primary transport and falls back
// to a secondary one when the primary fails. Once the primary has failed on
// more than TripRatio of over MinAttempts requests it is bypassed for the
// rest of the wrapper's life. Every stream handed out has been read ahead
// by PeekSize bytes, so failures that only show once bytes flow also
// trigger the fallback.
//
// A FallbackTransport is immutable in its delegates; pairing a new primary
// or secondary means building a new wrapper (see Binding).
type FallbackTransport struct {
	primary   Transport
	secondary Transport
	config    FallbackConfig
	logger    logging.Logger
	observer  FallbackObserver

	mu       sync.Mutex
	attempts int
	failures int
	tripped  bool
	reported map[string]struct{}
}

// FallbackOption configures a FallbackTransport
type FallbackOption func(*FallbackTransport)

// WithFallbackConfig overrides the default tuning
func WithFallbackConfig(config FallbackConfig) FallbackOption {
	return func(f *FallbackTransport) {
		f.config = config
	}
}

// WithFallbackLogger sets the logger for trip and fallback notices
func WithFallbackLogger(logger logging.Logger) FallbackOption {
	return func(f *FallbackTransport) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithFallbackObserver registers an observer for trip and fallback events
func WithFallbackObserver(observer FallbackObserver) FallbackOption {
	return func(f *FallbackTransport) {
		f.observer = observer
	}
}

// WithCustomTrust starts the wrapper tripped when a custom trust context is
// active, so the primary is never used.
func WithCustomTrust(active bool) FallbackOption {
	return func(f *FallbackTransport) {
		f.tripped = f.tripped || active
	}
}

// NewFallbackTransport wraps primary with secondary as fallback. Either may be nil.
func NewFallbackTransport(primary, secondary Transport, opts ...FallbackOption) *FallbackTransport {
	f := &FallbackTransport{
		primary:   primary,
		secondary: secondary,
		config:    DefaultFallbackConfig(),
		logger:    logging.NewNop(),
		reported:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.config.PeekSize < 1 {
		f.config.PeekSize = 1
	}
	f.logger = f.logger.WithFields(logging.String("component", "fallback"))

	if f.tripped && primary != nil {
		f.logger.Info("Primary transport disabled by custom trust configuration",
			logging.String("primary", Name(primary)))
	}
	return f
}

// Name implements Named
func (f *FallbackTransport) Name() string {
	return fmt.Sprintf("fallback(%s,%s)", Name(f.primary), Name(f.secondary))
}

// Primary returns the wrapped primary transport
func (f *FallbackTransport) Primary() Transport { return f.primary }

// Secondary returns the wrapped secondary transport
func (f *FallbackTransport) Secondary() Transport { return f.secondary }

// Stream implements Transport
func (f *FallbackTransport) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	if !f.admitPrimary() {
		if f.secondary == nil {
			return nil, fetcherrors.ServiceUnavailable(f.Name(), location, "no usable transport configured")
		}
		return f.secondary.Stream(ctx, location, progress)
	}

	rc, primaryErr := f.open(ctx, f.primary, location, progress)
	if primaryErr == nil {
		return rc, nil
	}

	f.recordFailure()
	if f.secondary == nil {
		return nil, primaryErr
	}

	rc, secondaryErr := f.open(ctx, f.secondary, location, progress)
	if secondaryErr != nil {
		// Both paths failed; most likely the location itself is bad.
		if f.config.CompensateDoubleFailure {
			f.forgiveFailure()
		}
		return nil, primaryErr.WithSuppressed(secondaryErr)
	}

	f.reportFallback(ctx, primaryErr)
	return rc, nil
}

// admitPrimary counts the attempt, trips the circuit when the primary has
// become unreliable, and reports whether the primary should be used.
func (f *FallbackTransport) admitPrimary() bool {
	f.mu.Lock()
	f.attempts++
	justTripped := false
	if !f.tripped && f.attempts > f.config.MinAttempts &&
		float64(f.failures)/float64(f.attempts) > f.config.TripRatio {
		f.tripped = true
		justTripped = true
	}
	attempts, failures, tripped := f.attempts, f.failures, f.tripped
	f.mu.Unlock()

	if justTripped {
		f.logger.Info("Primary transport disabled after repeated failures",
			logging.String("primary", Name(f.primary)),
			logging.Int("attempts", attempts),
			logging.Int("failures", failures))
		if f.observer != nil {
			f.observer.PrimaryTripped(Name(f.primary))
		}
	}
	return !tripped && f.primary != nil
}

func (f *FallbackTransport) recordFailure() {
	f.mu.Lock()
	f.failures++
	f.mu.Unlock()
}

func (f *FallbackTransport) forgiveFailure() {
	f.mu.Lock()
	f.failures--
	f.mu.Unlock()
}

// open streams location from t and verifies the result. Every failure,
// including a nil stream or a panic inside t, comes back as a FetchError.
func (f *FallbackTransport) open(ctx context.Context, t Transport, location string, progress Progress) (rc io.ReadCloser, ferr fetcherrors.FetchError) {
	name := Name(t)
	defer func() {
		if r := recover(); r != nil {
			rc = nil
			ferr = fetcherrors.TransportFailure(name, "stream", fmt.Errorf("unexpected runtime failure: %v", r))
		}
	}()

	raw, err := t.Stream(ctx, location, progress)
	if err != nil {
		if fe, ok := fetcherrors.AsFetchError(err); ok {
			return nil, fe
		}
		return nil, fetcherrors.TransportFailure(name, "stream", err)
	}
	if raw == nil {
		return nil, fetcherrors.TransportFailure(name, "stream", errNilStream)
	}

	verified, err := verifyStream(raw, f.config.PeekSize)
	if err != nil {
		return nil, fetcherrors.ConnectionLost(name, location, err)
	}
	return verified, nil
}

// reportFallback logs a successful fallback once per distinct problem
func (f *FallbackTransport) reportFallback(ctx context.Context, primaryErr fetcherrors.FetchError) {
	if f.observer != nil {
		f.observer.FallbackUsed(Name(f.primary), Name(f.secondary))
	}

	signature := problemSignature(primaryErr)
	f.mu.Lock()
	_, seen := f.reported[signature]
	if !seen {
		f.reported[signature] = struct{}{}
	}
	f.mu.Unlock()
	if seen {
		return
	}

	f.logger.WithContext(ctx).WithError(primaryErr).Info("Primary transport failed, served from fallback",
		logging.String("primary", Name(f.primary)),
		logging.String("secondary", Name(f.secondary)))
}

// problemSignature identifies a failure by kind and origin. Locations and
// free-form messages are left out so one condition hitting many locations
// maps to one signature.
func problemSignature(err fetcherrors.FetchError) string {
	origin := ""
	if c := err.Context(); c != nil {
		origin = c.Component + "/" + c.Operation
	}
	cause := ""
	if u := err.Unwrap(); u != nil {
		cause = fmt.Sprintf("%T", u)
	}
	detail := ""
	if d, ok := err.Data().(*fetcherrors.TransportErrorData); ok && d != nil {
		detail = fmt.Sprintf("%s|%d|%s", d.Transport, d.StatusCode, d.Reason)
	}
	return fmt.Sprintf("%d|%s|%s|%s|%s", err.Code(), err.Category(), detail, cause, origin)
}

// Tripped reports whether the primary has been disabled
func (f *FallbackTransport) Tripped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tripped
}

// Stats returns a snapshot of the wrapper's counters
func (f *FallbackTransport) Stats() FallbackStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FallbackStats{
		Attempts:         f.attempts,
		Failures:         f.failures,
		Tripped:          f.tripped,
		ReportedProblems: len(f.reported),
	}
}
