package transport

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Transport produces a readable byte stream for a location.
// Implementations must be safe for concurrent use.
type Transport interface {
	// Stream opens location for reading. The caller owns the returned
	// stream and must close it. progress is passed through untouched by
	// wrappers and may be nil.
	Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error)
}

// TransportFunc is an adapter to allow the use of ordinary functions as transports
type TransportFunc func(ctx context.Context, location string, progress Progress) (io.ReadCloser, error)

// Stream implements the Transport interface
func (f TransportFunc) Stream(ctx context.Context, location string, progress Progress) (io.ReadCloser, error) {
	return f(ctx, location, progress)
}

// Progress receives byte counts from concrete transports while a stream is
// read. total is -1 when unknown.
type Progress interface {
	Update(read, total int64)
}

// ProgressFunc adapts a function to Progress
type ProgressFunc func(read, total int64)

// Update implements Progress
func (f ProgressFunc) Update(read, total int64) { f(read, total) }

// Named is implemented by transports that can describe themselves in logs
type Named interface {
	Name() string
}

// Name returns a printable name for t
func Name(t Transport) string {
	if t == nil {
		return "<none>"
	}
	if n, ok := t.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", t)
}

// TransportConfig is the unified configuration for the transport layer
type TransportConfig struct {
	Features   FeatureConfig    `json:"features" mapstructure:"features"`
	Connection ConnectionConfig `json:"connection" mapstructure:"connection"`
	Fallback   FallbackConfig   `json:"fallback" mapstructure:"fallback"`
	Security   SecurityConfig   `json:"security" mapstructure:"security"`
	File       FileConfig       `json:"file" mapstructure:"file"`
	UserAgent  string           `json:"user_agent" mapstructure:"user_agent"`
}

// FeatureConfig controls which candidates and wrappers are enabled
type FeatureConfig struct {
	EnableHTTP2         bool `json:"enable_http2" mapstructure:"enable_http2"`
	EnableFile          bool `json:"enable_file" mapstructure:"enable_file"`
	EnableFallback      bool `json:"enable_fallback" mapstructure:"enable_fallback"`
	EnableObservability bool `json:"enable_observability" mapstructure:"enable_observability"`
}

// ConnectionConfig for HTTP connection management
type ConnectionConfig struct {
	Timeout         time.Duration `json:"timeout" mapstructure:"timeout"`
	KeepAlive       time.Duration `json:"keep_alive" mapstructure:"keep_alive"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	IdleConnTimeout time.Duration `json:"idle_conn_timeout" mapstructure:"idle_conn_timeout"`
}

// FallbackConfig tunes FallbackTransport
type FallbackConfig struct {
	// MinAttempts is the number of attempts that must be exceeded before
	// the failure ratio is considered.
	MinAttempts int `json:"min_attempts" mapstructure:"min_attempts"`
	// TripRatio is the failures/attempts ratio above which the primary is disabled.
	TripRatio float64 `json:"trip_ratio" mapstructure:"trip_ratio"`
	// PeekSize is the number of bytes read ahead to verify a stream.
	PeekSize int `json:"peek_size" mapstructure:"peek_size"`
	// CompensateDoubleFailure un-counts a primary failure when the secondary
	// failed for the same request.
	CompensateDoubleFailure bool `json:"compensate_double_failure" mapstructure:"compensate_double_failure"`
}

// SecurityConfig configures TLS
type SecurityConfig struct {
	TLS TLSConfig `json:"tls" mapstructure:"tls"`
}

// TLSConfig configures TLS settings
type TLSConfig struct {
	CAFile             string `json:"ca_file,omitempty" mapstructure:"ca_file"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	MinVersion         string `json:"min_version,omitempty" mapstructure:"min_version"`
	// CustomTrust marks a process-wide custom trust context. Fallback
	// wrappers built while it is set never use their primary.
	CustomTrust bool `json:"custom_trust" mapstructure:"custom_trust"`
}

// FileConfig configures the local mirror transport
type FileConfig struct {
	Root string `json:"root,omitempty" mapstructure:"root"`
}

// DefaultFallbackConfig returns the fallback tuning used when none is given
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		MinAttempts:             10,
		TripRatio:               0.75,
		PeekSize:                1,
		CompensateDoubleFailure: true,
	}
}

// DefaultTransportConfig returns a transport configuration with sensible defaults
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Features: FeatureConfig{
			EnableHTTP2:         true,
			EnableFile:          true,
			EnableFallback:      true,
			EnableObservability: true,
		},
		Connection: ConnectionConfig{
			Timeout:         30 * time.Second,
			KeepAlive:       30 * time.Second,
			MaxIdleConns:    100,
			IdleConnTimeout: 90 * time.Second,
		},
		Fallback:  DefaultFallbackConfig(),
		UserAgent: "fetch-sdk-go",
	}
}
