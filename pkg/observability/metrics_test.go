package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/transport"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*PrometheusMetricsProvider, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewMetricsProvider(MetricsConfig{
		ServiceName: "fetch-test",
		Registerer:  reg,
		Gatherer:    reg,
	})
	require.NoError(t, err)
	return m, reg
}

func TestStreamStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusSuccess},
		{fetcherrors.NotFound("x"), StatusNotFound},
		{fetcherrors.ServiceUnavailable("http2", "x", ""), StatusUnavailable},
		{fetcherrors.OperationCancelled("stream"), StatusCancelled},
		{context.Canceled, StatusCancelled},
		{fetcherrors.TransportFailure("http2", "stream", io.ErrUnexpectedEOF), StatusError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StreamStatus(tt.err), "%v", tt.err)
	}
}

func TestMetricsRecording(t *testing.T) {
	m, reg := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStream(ctx, "http2", StatusSuccess, 20*time.Millisecond)
	m.RecordStream(ctx, "http2", StatusSuccess, 30*time.Millisecond)
	m.RecordStream(ctx, "http2", StatusNotFound, time.Millisecond)
	m.RecordBytes(ctx, "http2", 512)
	m.RecordBytes(ctx, "http2", 0)
	m.RecordSelection(ctx, "http2")
	m.RecordAvailability(ctx, "file", false)
	m.RecordAvailability(ctx, "http1", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.streamTotal.WithLabelValues("http2", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.streamTotal.WithLabelValues("http2", StatusNotFound)))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.streamBytes.WithLabelValues("http2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.selectionTotal.WithLabelValues("http2")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.available.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.available.WithLabelValues("http1")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.streamDuration))

	count, err := testutil.GatherAndCount(reg, "fetch_stream_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetricsAsFallbackObserver(t *testing.T) {
	m, _ := newTestMetrics(t)
	var observer transport.FallbackObserver = m

	observer.FallbackUsed("http2", "file")
	observer.FallbackUsed("http2", "file")
	observer.PrimaryTripped("http2")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fallbackTotal.WithLabelValues("http2", "file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tripTotal.WithLabelValues("http2")))
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetricsProvider(MetricsConfig{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)
	second, err := NewMetricsProvider(MetricsConfig{Registerer: reg, Gatherer: reg})
	require.NoError(t, err)

	first.RecordSelection(context.Background(), "http2")
	second.RecordSelection(context.Background(), "http2")
	assert.Equal(t, 2.0, testutil.ToFloat64(first.selectionTotal.WithLabelValues("http2")))
}

func TestMetricsHandler(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.RecordSelection(context.Background(), "http1")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fetch_selection_total{provider="http1",service="fetch-test"} 1`)
}

func TestMetricsServer(t *testing.T) {
	utils.NewGoroutineLeakDetector(t).Start().CheckOnCleanup()

	reg := prometheus.NewRegistry()
	m, err := NewMetricsProvider(MetricsConfig{Addr: "127.0.0.1:0", Registerer: reg, Gatherer: reg})
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Start(context.Background()), "second start is a no-op")
	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))

	bad, err := NewMetricsProvider(MetricsConfig{Addr: "not-an-address", Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	err = bad.Start(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "metrics listen"))
}
