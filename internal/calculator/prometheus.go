package calculator

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder records handler metrics as Prometheus collectors so they can
// be scraped from /metrics.
type PromRecorder struct {
	requests prometheus.Counter
	errors   *prometheus.CounterVec
	latency  prometheus.Histogram
	inFlight prometheus.Gauge
}

// NewPromRecorder creates the calcburst_* collectors and registers them on reg.
func NewPromRecorder(reg prometheus.Registerer) (*PromRecorder, error) {
	r := &PromRecorder{
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calcburst_requests_total",
			Help: "Total calculation requests",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calcburst_errors_total",
			Help: "Total calculation errors",
		}, []string{"kind"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "calcburst_request_latency_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "calcburst_active_requests",
			Help: "Currently active requests",
		}),
	}

	for _, c := range []prometheus.Collector{r.requests, r.errors, r.latency, r.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PromRecorder) IncRequests(context.Context) { r.requests.Inc() }

func (r *PromRecorder) IncErrors(_ context.Context, kind ErrorKind) {
	r.errors.WithLabelValues(kind.String()).Inc()
}

func (r *PromRecorder) ObserveLatency(_ context.Context, d time.Duration) {
	r.latency.Observe(d.Seconds())
}

func (r *PromRecorder) AddInFlight(_ context.Context, delta int64) {
	r.inFlight.Add(float64(delta))
}
