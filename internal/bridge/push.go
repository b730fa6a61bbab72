package bridge

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher delivers a set of collected metrics to the sink.
type Pusher interface {
	Push(ctx context.Context, g prometheus.Gatherer) error
}

// Pushgateway pushes to a Prometheus Pushgateway, replacing every metric
// previously pushed under the same job.
type Pushgateway struct {
	url string
	job string
}

// NewPushgateway targets the gateway at url; a bare host:port is treated as http.
func NewPushgateway(url, job string) *Pushgateway {
	return &Pushgateway{url: url, job: job}
}

func (p *Pushgateway) Push(ctx context.Context, g prometheus.Gatherer) error {
	return push.New(p.url, p.job).Gatherer(g).PushContext(ctx)
}
