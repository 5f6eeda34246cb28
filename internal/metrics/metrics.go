// Package metrics records addon deployments as Prometheus metrics and pushes
// them to a Pushgateway at the end of a CLI run.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/testruction/cilium-addon/internal/addons/helm"
	"github.com/testruction/cilium-addon/internal/util/retry"
)

// pushRetry bounds the attempts to reach the Pushgateway.
var pushRetry = []retry.Option{
	retry.WithAttempts(3),
	retry.WithInitialDelay(100 * time.Millisecond),
}

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder implements addons.Observer on a private registry.
type Recorder struct {
	cluster  string
	registry *prometheus.Registry

	deploymentsTotal   *prometheus.CounterVec
	deployDuration     *prometheus.HistogramVec
	deploymentsActive  prometheus.Gauge
	releaseRevision    *prometheus.GaugeVec
	lastSuccessSeconds prometheus.Gauge
}

// NewRecorder creates a Recorder. cluster becomes the Pushgateway grouping key.
func NewRecorder(cluster string) *Recorder {
	r := &Recorder{
		cluster:  cluster,
		registry: prometheus.NewRegistry(),
		deploymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cilium_addon",
				Subsystem: "deploy",
				Name:      "total",
				Help:      "Total number of addon deployments by result",
			},
			[]string{"addon", "result"},
		),
		deployDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cilium_addon",
				Subsystem: "deploy",
				Name:      "duration_seconds",
				Help:      "Duration of addon deployments in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4min
			},
			[]string{"addon"},
		),
		deploymentsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cilium_addon",
			Subsystem: "deploy",
			Name:      "in_progress",
			Help:      "Number of addon deployments in progress",
		}),
		releaseRevision: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cilium_addon",
				Subsystem: "release",
				Name:      "revision",
				Help:      "Helm release revision after the last deployment",
			},
			[]string{"addon", "release", "namespace"},
		),
		lastSuccessSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cilium_addon",
			Subsystem: "deploy",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful addon deployment",
		}),
	}

	r.registry.MustRegister(
		r.deploymentsTotal,
		r.deployDuration,
		r.deploymentsActive,
		r.releaseRevision,
		r.lastSuccessSeconds,
	)
	return r
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// AddonStarted implements addons.Observer.
func (r *Recorder) AddonStarted(string) {
	r.deploymentsActive.Inc()
}

// AddonFinished implements addons.Observer.
func (r *Recorder) AddonFinished(name string, result *helm.InstallResult, duration time.Duration, err error) {
	r.deploymentsActive.Dec()
	r.deployDuration.WithLabelValues(name).Observe(duration.Seconds())

	if err != nil {
		r.deploymentsTotal.WithLabelValues(name, ResultError).Inc()
		return
	}

	r.deploymentsTotal.WithLabelValues(name, ResultSuccess).Inc()
	r.lastSuccessSeconds.SetToCurrentTime()
	if result != nil {
		r.releaseRevision.WithLabelValues(name, result.Release, result.Namespace).Set(float64(result.Revision))
	}
}

// Push sends the recorder's metrics to the Pushgateway at url, replacing
// the metrics of the same job and cluster. Failed uploads are retried.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	pusher := push.New(url, job).
		Gatherer(r.registry).
		Grouping("cluster", r.cluster)
	if err := retry.Do(ctx, pusher.PushContext, pushRetry...); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
