package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	fetch "github.com/ajitpratap0/fetch-sdk-go"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/config"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/logging"
	"github.com/ajitpratap0/fetch-sdk-go/pkg/observability"
)

// runtime holds the process-wide components shared by commands
type runtime struct {
	cfg     config.Config
	logger  logging.Logger
	metrics *observability.PrometheusMetricsProvider
	tracer  *observability.TracingProvider
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	logger := logging.New(os.Stderr, logging.NewFormatter(cfg.Log.Format))
	logger.SetLevel(logging.ParseLevel(cfg.Log.Level))

	metricsCfg := cfg.MetricsProviderConfig(serviceName)
	reg := prometheus.NewRegistry()
	metricsCfg.Registerer = reg
	metricsCfg.Gatherer = reg
	metrics, err := observability.NewMetricsProvider(metricsCfg)
	if err != nil {
		return nil, err
	}

	tracer, err := observability.NewTracingProvider(cfg.TracingProviderConfig(serviceName))
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  logger.WithFields(logging.String("service", serviceName)),
		metrics: metrics,
		tracer:  tracer,
	}

	if cfg.Metrics.Addr != "" {
		if err := metrics.Start(ctx); err != nil {
			_ = tracer.Shutdown(ctx)
			return nil, err
		}
		rt.logger.Info("Metrics server started", logging.String("addr", cfg.Metrics.Addr))
	}

	return rt, nil
}

// stack composes the default transport stack with metrics and tracing attached
func (rt *runtime) stack(ctx context.Context) (*fetch.Stack, error) {
	return fetch.NewDefaultStack(ctx, rt.cfg.Transport,
		fetch.WithLogger(rt.logger),
		fetch.WithObserver(rt.metrics),
		fetch.WithSelectionHook(observability.SelectionHook(rt.metrics)),
		fetch.WithMiddleware(observability.NewMiddleware(rt.metrics, rt.tracer)),
	)
}

func (rt *runtime) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return errors.Join(
		rt.tracer.Shutdown(ctx),
		rt.metrics.Shutdown(ctx),
	)
}
