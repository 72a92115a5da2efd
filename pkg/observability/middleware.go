package observability

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/transport"
)

// Middleware records a span and metrics for every Stream call
type Middleware struct {
	tracer  *TracingProvider
	metrics MetricsProvider
}

// NewMiddleware creates an observability middleware. Either argument may be nil.
func NewMiddleware(metrics MetricsProvider, tracer *TracingProvider) transport.Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
	}
}

// Wrap implements the transport.Middleware interface
func (m *Middleware) Wrap(next transport.Transport) transport.Transport {
	return &observedTransport{
		middleware: m,
		next:       next,
	}
}

type observedTransport struct {
	middleware *Middleware
	next       transport.Transport
}

// Name reports the wrapped transport's name
func (ot *observedTransport) Name() string {
	return transport.Name(ot.next)
}

// Stream opens a stream with a span covering the call and metrics for its outcome
func (ot *observedTransport) Stream(ctx context.Context, location string, progress transport.Progress) (io.ReadCloser, error) {
	name := transport.Name(ot.next)

	var span trace.Span
	if ot.middleware.tracer != nil {
		ctx, span = ot.middleware.tracer.StartStreamSpan(ctx, name, location)
		defer span.End()
		ctx = transport.WithHeaderDecorator(ctx, ot.middleware.tracer.injectHeaders)
	}

	start := time.Now()
	rc, err := ot.next.Stream(ctx, location, progress)
	duration := time.Since(start)
	status := StreamStatus(err)

	if span != nil {
		span.SetAttributes(AttrStatus.String(status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	if ot.middleware.metrics != nil {
		ot.middleware.metrics.RecordStream(ctx, name, status, duration)
		if rc != nil {
			rc = &countingStream{
				ReadCloser: rc,
				done: func(n int64) {
					ot.middleware.metrics.RecordBytes(context.Background(), name, n)
				},
			}
		}
	}

	return rc, err
}

// countingStream counts bytes read and reports the total once on Close
type countingStream struct {
	io.ReadCloser
	n    int64
	once sync.Once
	done func(n int64)
}

func (c *countingStream) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingStream) Close() error {
	err := c.ReadCloser.Close()
	c.once.Do(func() { c.done(c.n) })
	return err
}

// SelectionHook returns a transport.Selector hook that counts selections
func SelectionHook(metrics MetricsProvider) func(provider string) {
	return func(provider string) {
		metrics.RecordSelection(context.Background(), provider)
	}
}

// RecordAvailabilityResults publishes registry availability outcomes as availability gauges
func RecordAvailabilityResults(ctx context.Context, metrics MetricsProvider, results []transport.AvailabilityResult) {
	for _, r := range results {
		metrics.RecordAvailability(ctx, r.Entry.Name, r.Available)
	}
}
