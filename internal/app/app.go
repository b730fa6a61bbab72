// Package app assembles the calculation service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"calcburst/internal/calculator"
	"calcburst/internal/config"
	"calcburst/internal/observability"
	"calcburst/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
)

// App is the wired calculation service.
type App struct {
	Handler  *calculator.Handler
	Registry *prometheus.Registry

	shutdown []func(context.Context) error
}

// New initialises telemetry, metric recorders and the store selected by cfg.
// observability.InitLogger must have been called first.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Registry: prometheus.NewRegistry()}

	if err := a.initTelemetry(ctx, cfg.Telemetry); err != nil {
		a.Shutdown(ctx)
		return nil, err
	}

	recorder, err := a.initRecorders()
	if err != nil {
		a.Shutdown(ctx)
		return nil, err
	}

	backend, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		a.Shutdown(ctx)
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	a.shutdown = append(a.shutdown, func(context.Context) error { return closeStore() })

	a.Handler = calculator.NewHandler(store.New(backend, recorder), recorder)
	return a, nil
}

func (a *App) initTelemetry(ctx context.Context, cfg config.TelemetryConfig) error {
	if cfg.Tracing {
		shutdown, err := observability.InitTracing(ctx, cfg.SampleRatio)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		a.shutdown = append(a.shutdown, shutdown)
	}

	if cfg.OTLPLogs {
		shutdown, err := observability.InitLogging(ctx)
		if err != nil {
			return fmt.Errorf("init log export: %w", err)
		}
		a.shutdown = append(a.shutdown, shutdown)
	}

	if cfg.Metrics {
		shutdown, err := observability.InitMetrics(ctx, cfg.MetricsInterval)
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		a.shutdown = append(a.shutdown, shutdown)
	}
	return nil
}

// initRecorders registers the calculator instruments with both the OTel
// meter provider and the Prometheus registry served at /metrics.
func (a *App) initRecorders() (calculator.Recorder, error) {
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prom, err := calculator.NewPromRecorder(a.Registry)
	if err != nil {
		return nil, fmt.Errorf("register prometheus metrics: %w", err)
	}

	otelRecorder, err := calculator.NewOTelRecorder(otel.Meter("calculator"))
	if err != nil {
		return nil, err
	}

	return calculator.MultiRecorder{prom, otelRecorder}, nil
}

// Shutdown flushes telemetry and closes the store, most recently started first.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdown = nil
	return errors.Join(errs...)
}
