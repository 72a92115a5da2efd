package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
)

// stubTransport is a transport whose behavior is set per test
type stubTransport struct {
	name   string
	stream func(ctx context.Context, location string) (io.ReadCloser, error)
	calls  atomic.Int64
}

func newStub(name string, stream func(ctx context.Context, location string) (io.ReadCloser, error)) *stubTransport {
	return &stubTransport{name: name, stream: stream}
}

func (s *stubTransport) Name() string { return s.name }

func (s *stubTransport) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	s.calls.Add(1)
	return s.stream(ctx, location)
}

func (s *stubTransport) Calls() int { return int(s.calls.Load()) }

// serving returns a stream function that always yields body
func serving(body string) func(context.Context, string) (io.ReadCloser, error) {
	return func(context.Context, string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
}

// failing returns a stream function that always fails with err
func failing(err error) func(context.Context, string) (io.ReadCloser, error) {
	return func(context.Context, string) (io.ReadCloser, error) {
		return nil, err
	}
}

// brokenBody yields an error on the first read, like a reset connection
type brokenBody struct {
	closed atomic.Bool
}

func (b *brokenBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func (b *brokenBody) Close() error {
	b.closed.Store(true)
	return nil
}

// stubProvider is a candidate provider with scripted behavior
type stubProvider struct {
	name         string
	available    bool
	legacy       bool
	panicOnCheck bool
	transport    Transport
	err          error
	checks       atomic.Int64
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Legacy() bool { return p.legacy }

func (p *stubProvider) IsAvailable(ctx context.Context) bool {
	p.checks.Add(1)
	if p.panicOnCheck {
		panic("availability check exploded")
	}
	return p.available
}

func (p *stubProvider) NewTransport() (Transport, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.transport == nil {
		return newStub(p.name, serving(p.name)), nil
	}
	return p.transport, nil
}

// syncBuffer is a bytes.Buffer safe for concurrent writers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestLogger returns a logger writing plain text into a buffer
func newTestLogger() (logging.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return logging.New(buf, &logging.TextFormatter{DisableColors: true, DisableTimestamp: true}), buf
}

// recordingObserver counts FallbackObserver events
type recordingObserver struct {
	mu        sync.Mutex
	trips     []string
	fallbacks int
}

func (o *recordingObserver) PrimaryTripped(primary string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trips = append(o.trips, primary)
}

func (o *recordingObserver) FallbackUsed(primary, secondary string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks++
}

var errBoom = errors.New("boom")

func readAll(rc io.ReadCloser) string {
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	return string(data)
}
