package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/transport"
)

// SetDefaults registers every known key with its default value. Keys must be
// known to viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	t := transport.DefaultTransportConfig()

	v.SetDefault("transport.features.enable_http2", t.Features.EnableHTTP2)
	v.SetDefault("transport.features.enable_file", t.Features.EnableFile)
	v.SetDefault("transport.features.enable_fallback", t.Features.EnableFallback)
	v.SetDefault("transport.features.enable_observability", t.Features.EnableObservability)

	v.SetDefault("transport.connection.timeout", t.Connection.Timeout)
	v.SetDefault("transport.connection.keep_alive", t.Connection.KeepAlive)
	v.SetDefault("transport.connection.max_idle_conns", t.Connection.MaxIdleConns)
	v.SetDefault("transport.connection.idle_conn_timeout", t.Connection.IdleConnTimeout)

	v.SetDefault("transport.fallback.min_attempts", t.Fallback.MinAttempts)
	v.SetDefault("transport.fallback.trip_ratio", t.Fallback.TripRatio)
	v.SetDefault("transport.fallback.peek_size", t.Fallback.PeekSize)
	v.SetDefault("transport.fallback.compensate_double_failure", t.Fallback.CompensateDoubleFailure)

	v.SetDefault("transport.security.tls.ca_file", "")
	v.SetDefault("transport.security.tls.insecure_skip_verify", false)
	v.SetDefault("transport.security.tls.min_version", "")
	v.SetDefault("transport.security.tls.custom_trust", false)

	v.SetDefault("transport.file.root", "")
	v.SetDefault("transport.user_agent", t.UserAgent)

	v.SetDefault("log.level", Defaults.LogLevel)
	v.SetDefault("log.format", Defaults.LogFormat)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.namespace", Defaults.MetricsNamespace)
	v.SetDefault("tracing.exporter", Defaults.TracingExporter)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.sample_rate", Defaults.SampleRate)
}

// BindFlags registers the common CLI flags on cmd and binds them to v.
// --config is not bound; read it with cmd.Flags().GetString("config").
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.PersistentFlags()

	f.String("config", "", "config file path")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (json, text)")
	f.String("file-root", "", "local mirror directory for the file transport")
	f.Bool("http2", true, "enable the HTTP/2 transport")
	f.Bool("custom-trust", false, "never use the primary transport (custom trust context)")
	f.String("metrics-addr", "", "metrics HTTP listen address")

	_ = v.BindPFlag("log.level", f.Lookup("log-level"))
	_ = v.BindPFlag("log.format", f.Lookup("log-format"))
	_ = v.BindPFlag("transport.file.root", f.Lookup("file-root"))
	_ = v.BindPFlag("transport.features.enable_http2", f.Lookup("http2"))
	_ = v.BindPFlag("transport.security.tls.custom_trust", f.Lookup("custom-trust"))
	_ = v.BindPFlag("metrics.addr", f.Lookup("metrics-addr"))
}

// Load reads config from flags, env, and file.
// The envPrefix is used for environment variable lookups (e.g., "FETCH").
// The configPaths are directories searched for config.yaml when configFile is empty.
func Load(v *viper.Viper, envPrefix string, configFile string, configPaths ...string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, p := range configPaths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && configFile == "" {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

// LoadInto applies defaults, loads config from flags/env/file, and
// unmarshals the result into a Config.
func LoadInto(v *viper.Viper, envPrefix, configFile string, paths ...string) (Config, error) {
	SetDefaults(v)
	if err := Load(v, envPrefix, configFile, paths...); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
