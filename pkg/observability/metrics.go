package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	fetcherrors "github.com/ajitpratap0/fetch-sdk-go/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stream outcome labels
const (
	StatusSuccess     = "success"
	StatusNotFound    = "not_found"
	StatusUnavailable = "unavailable"
	StatusCancelled   = "cancelled"
	StatusError       = "error"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Prometheus configuration
	MetricsPath string // HTTP path for metrics endpoint (default: /metrics)
	Addr        string // Listen address for the metrics server (default: :9090)

	// Metric options
	Namespace        string    // Prometheus namespace (default: fetch)
	Subsystem        string    // Prometheus subsystem
	HistogramBuckets []float64 // Custom histogram buckets for latency

	// Labels to add to all metrics
	ConstLabels prometheus.Labels

	// Registerer and Gatherer default to the prometheus globals
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// MetricsProvider records transport metrics
type MetricsProvider interface {
	// Record transport operations
	RecordStream(ctx context.Context, transport, status string, duration time.Duration)
	RecordBytes(ctx context.Context, transport string, n int64)

	// Record resilience and selection events
	RecordFallback(ctx context.Context, primary, secondary string)
	RecordPrimaryTrip(ctx context.Context, primary string)
	RecordSelection(ctx context.Context, provider string)
	RecordAvailability(ctx context.Context, provider string, available bool)

	// Management
	Handler() http.Handler
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// PrometheusMetricsProvider implements MetricsProvider using Prometheus. It
// also satisfies transport.FallbackObserver so it can be handed straight to
// a FallbackTransport.
type PrometheusMetricsProvider struct {
	config MetricsConfig

	streamDuration *prometheus.HistogramVec
	streamTotal    *prometheus.CounterVec
	streamBytes    *prometheus.CounterVec
	fallbackTotal  *prometheus.CounterVec
	tripTotal      *prometheus.CounterVec
	selectionTotal *prometheus.CounterVec
	available      *prometheus.GaugeVec

	mu     sync.Mutex
	server *http.Server
}

// NewMetricsProvider creates a new Prometheus metrics provider
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	// Set defaults
	if config.Namespace == "" {
		config.Namespace = "fetch"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.Addr == "" {
		config.Addr = ":9090"
	}
	if config.HistogramBuckets == nil {
		// Default buckets for milliseconds
		config.HistogramBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	constLabels := prometheus.Labels{}
	for k, v := range config.ConstLabels {
		constLabels[k] = v
	}
	if config.ServiceName != "" {
		constLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		constLabels["version"] = config.ServiceVersion
	}
	if config.Environment != "" {
		constLabels["environment"] = config.Environment
	}
	config.ConstLabels = constLabels

	provider := &PrometheusMetricsProvider{config: config}
	provider.initializeMetrics()

	if err := provider.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return provider, nil
}

// initializeMetrics creates all metric collectors
func (p *PrometheusMetricsProvider) initializeMetrics() {
	p.streamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "stream_duration_milliseconds",
			Help:        "Time to open a verified stream in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"transport", "status"},
	)

	p.streamTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "stream_total",
			Help:        "Total number of stream requests",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"transport", "status"},
	)

	p.streamBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "stream_bytes_total",
			Help:        "Total bytes read from streams",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"transport"},
	)

	p.fallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "fallback_total",
			Help:        "Requests served by the secondary after the primary failed",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"primary", "secondary"},
	)

	p.tripTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "primary_trip_total",
			Help:        "Primaries disabled after repeated failures",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"primary"},
	)

	p.selectionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "selection_total",
			Help:        "Default transport selections by provider",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"provider"},
	)

	p.available = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "provider_available",
			Help:        "Last checked availability of a provider (1=available, 0=unavailable)",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"provider"},
	)
}

// registerMetrics registers all metrics, reusing collectors that are
// already registered under the same description.
func (p *PrometheusMetricsProvider) registerMetrics() error {
	var err error
	if p.streamDuration, err = register(p.config.Registerer, p.streamDuration); err != nil {
		return err
	}
	if p.streamTotal, err = register(p.config.Registerer, p.streamTotal); err != nil {
		return err
	}
	if p.streamBytes, err = register(p.config.Registerer, p.streamBytes); err != nil {
		return err
	}
	if p.fallbackTotal, err = register(p.config.Registerer, p.fallbackTotal); err != nil {
		return err
	}
	if p.tripTotal, err = register(p.config.Registerer, p.tripTotal); err != nil {
		return err
	}
	if p.selectionTotal, err = register(p.config.Registerer, p.selectionTotal); err != nil {
		return err
	}
	if p.available, err = register(p.config.Registerer, p.available); err != nil {
		return err
	}
	return nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// StreamStatus maps a Stream error to a status label
func StreamStatus(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case fetcherrors.IsNotFound(err):
		return StatusNotFound
	case fetcherrors.IsServiceUnavailable(err):
		return StatusUnavailable
	case fetcherrors.IsCategory(err, fetcherrors.CategoryCancelled),
		errors.Is(err, context.Canceled):
		return StatusCancelled
	default:
		return StatusError
	}
}

// RecordStream records one Stream call
func (p *PrometheusMetricsProvider) RecordStream(ctx context.Context, transport, status string, duration time.Duration) {
	ms := float64(duration.Milliseconds())
	p.streamDuration.WithLabelValues(transport, status).Observe(ms)
	p.streamTotal.WithLabelValues(transport, status).Inc()
}

// RecordBytes records bytes read from a stream
func (p *PrometheusMetricsProvider) RecordBytes(ctx context.Context, transport string, n int64) {
	if n > 0 {
		p.streamBytes.WithLabelValues(transport).Add(float64(n))
	}
}

// RecordFallback records a request served by the secondary
func (p *PrometheusMetricsProvider) RecordFallback(ctx context.Context, primary, secondary string) {
	p.fallbackTotal.WithLabelValues(primary, secondary).Inc()
}

// RecordPrimaryTrip records a primary being disabled
func (p *PrometheusMetricsProvider) RecordPrimaryTrip(ctx context.Context, primary string) {
	p.tripTotal.WithLabelValues(primary).Inc()
}

// RecordSelection records a default transport selection
func (p *PrometheusMetricsProvider) RecordSelection(ctx context.Context, provider string) {
	p.selectionTotal.WithLabelValues(provider).Inc()
}

// RecordAvailability records the outcome of an availability check
func (p *PrometheusMetricsProvider) RecordAvailability(ctx context.Context, provider string, available bool) {
	v := 0.0
	if available {
		v = 1
	}
	p.available.WithLabelValues(provider).Set(v)
}

// PrimaryTripped implements transport.FallbackObserver
func (p *PrometheusMetricsProvider) PrimaryTripped(primary string) {
	p.RecordPrimaryTrip(context.Background(), primary)
}

// FallbackUsed implements transport.FallbackObserver
func (p *PrometheusMetricsProvider) FallbackUsed(primary, secondary string) {
	p.RecordFallback(context.Background(), primary, secondary)
}

// Handler returns the HTTP handler exposing the gathered metrics
func (p *PrometheusMetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.config.Gatherer, promhttp.HandlerOpts{})
}

// Start starts the metrics HTTP server. Bind errors are returned; the
// server itself runs in the background until Shutdown.
func (p *PrometheusMetricsProvider) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.server != nil {
		return nil
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", p.config.Addr)
	if err != nil {
		return fmt.Errorf("metrics listen on %s: %w", p.config.Addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(p.config.MetricsPath, p.Handler())

	p.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		_ = srv.Serve(ln)
	}(p.server)

	return nil
}

// Shutdown gracefully shuts down the metrics server
func (p *PrometheusMetricsProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv := p.server
	p.server = nil
	p.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}
