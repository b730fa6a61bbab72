package bridge

import (
	"context"
	"fmt"
	"time"

	"calcburst/internal/observability"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultJob is the job label the gauges are pushed under.
const DefaultJob = "calcburst-metrics"

type gaugeSpec struct {
	name string
	help string
}

var gaugeSpecs = map[string]gaugeSpec{
	SeriesInvocations: {name: "calcburst_lambda_invocations", help: "Lambda invocations"},
	SeriesErrors:      {name: "calcburst_lambda_errors", help: "Lambda errors"},
	SeriesDuration:    {name: "calcburst_lambda_duration_ms", help: "Lambda duration"},
	SeriesAPIRequests: {name: "calcburst_api_requests", help: "API Gateway requests"},
}

// Bridge copies a Source snapshot into gauges and pushes them. Gauges live
// as long as the Bridge, so a series missing from one run keeps the value
// set by an earlier run.
type Bridge struct {
	source   Source
	pusher   Pusher
	window   time.Duration
	registry *prometheus.Registry
	gauges   map[string]prometheus.Gauge
}

func New(source Source, pusher Pusher, window time.Duration) *Bridge {
	b := &Bridge{
		source:   source,
		pusher:   pusher,
		window:   window,
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]prometheus.Gauge, len(gaugeSpecs)),
	}

	for key, spec := range gaugeSpecs {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: spec.name, Help: spec.help})
		b.registry.MustRegister(g)
		b.gauges[key] = g
	}
	return b
}

// Gatherer exposes the bridge's gauges.
func (b *Bridge) Gatherer() prometheus.Gatherer {
	return b.registry
}

// Run performs one export. A source failure is logged and whatever was read
// is still pushed; a push failure is returned.
func (b *Bridge) Run(ctx context.Context) (Snapshot, error) {
	logger := observability.LoggerWithTrace(ctx)

	snap, err := b.source.Snapshot(ctx, b.window)
	if err != nil {
		logger.Error("fetch source metrics failed",
			zap.Error(err),
			zap.Int("series_read", len(snap)),
		)
	}
	if snap == nil {
		snap = Snapshot{}
	}

	for key, value := range snap {
		if g, ok := b.gauges[key]; ok {
			g.Set(value)
		}
	}

	if err := b.pusher.Push(ctx, b.registry); err != nil {
		logger.Error("push metrics failed", zap.Error(err))
		return snap, fmt.Errorf("push metrics: %w", err)
	}

	logger.Info("metrics exported successfully",
		zap.Any("metrics", map[string]float64(snap)),
	)
	return snap, nil
}

// Start runs an export immediately and then every interval until ctx is
// cancelled. Failed runs are logged and retried on the next tick.
func (b *Bridge) Start(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	observability.Logger.Info("metrics bridge started",
		zap.Duration("interval", interval),
		zap.Duration("window", b.window),
	)

	b.Run(ctx)

	for {
		select {
		case <-ticker.C:
			b.Run(ctx)
		case <-ctx.Done():
			observability.Logger.Info("metrics bridge stopped")
			return nil
		}
	}
}
