// Package config loads fetch configuration from flags, environment and
// config files using viper.
package config

import (
	"github.com/ajitpratap0/fetch-sdk-go/pkg/observability"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/transport"
)

// EnvPrefix is the environment variable prefix (FETCH_LOG_LEVEL, ...)
const EnvPrefix = "FETCH"

// Config is the complete process configuration
type Config struct {
	Transport transport.TransportConfig `mapstructure:"transport"`
	Log       LogConfig                 `mapstructure:"log"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Tracing   TracingConfig             `mapstructure:"tracing"`
}

// LogConfig selects log verbosity and output format
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr      string `mapstructure:"addr"`
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig configures span export
type TracingConfig struct {
	Exporter   string  `mapstructure:"exporter"`
	Endpoint   string  `mapstructure:"endpoint"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Defaults contains the values applied by SetDefaults
var Defaults = struct {
	LogLevel         string
	LogFormat        string
	MetricsNamespace string
	TracingExporter  string
	SampleRate       float64
}{
	LogLevel:         "info",
	LogFormat:        "text",
	MetricsNamespace: "fetch",
	TracingExporter:  string(observability.ExporterTypeNoop),
	SampleRate:       1.0,
}

// MetricsProviderConfig converts the metrics section for observability
func (c Config) MetricsProviderConfig(service string) observability.MetricsConfig {
	return observability.MetricsConfig{
		ServiceName: service,
		Addr:        c.Metrics.Addr,
		Namespace:   c.Metrics.Namespace,
	}
}

// TracingProviderConfig converts the tracing section for observability
func (c Config) TracingProviderConfig(service string) observability.TracingConfig {
	return observability.TracingConfig{
		ServiceName:  service,
		ExporterType: observability.ExporterType(c.Tracing.Exporter),
		Endpoint:     c.Tracing.Endpoint,
		Insecure:     c.Tracing.Insecure,
		SampleRate:   c.Tracing.SampleRate,
	}
}
