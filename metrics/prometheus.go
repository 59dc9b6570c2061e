// Package metrics provides batch.StatsCollector implementations that export
// what a Debouncer records to Prometheus or OpenTelemetry.
//
// Both collectors also keep the in-memory statistics of
// batch.BasicStatsCollector, so GetStats keeps working.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MasterOfBinary/debounce/batch"
)

// DefaultNamespace prefixes every metric name unless another namespace is
// given.
const DefaultNamespace = "debounce"

// Prometheus is a batch.StatsCollector backed by Prometheus metrics.
type Prometheus struct {
	*batch.BasicStatsCollector

	itemsPulled      prometheus.Counter
	batchesDelivered prometheus.Counter
	timerFlushes     prometheus.Counter
	sourceErrors     prometheus.Counter
	batchSize        prometheus.Histogram
	batchAge         prometheus.Histogram
	requestWait      prometheus.Histogram
}

// NewPrometheus registers the debouncer metrics with reg under namespace.
// A nil reg uses prometheus.DefaultRegisterer and an empty namespace uses
// DefaultNamespace. Registering the same namespace twice with one registry
// panics.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Prometheus{
		BasicStatsCollector: batch.NewBasicStatsCollector(),
		itemsPulled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_pulled_total",
			Help:      "Total number of items pulled from the source.",
		}),
		batchesDelivered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_delivered_total",
			Help:      "Total number of batches handed to consumers.",
		}),
		timerFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timer_flushes_total",
			Help:      "Number of times the source stalled longer than the delay.",
		}),
		sourceErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Total number of source failures.",
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of items in delivered batches.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		batchAge: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_age_seconds",
			Help:      "Time between the first item of a batch being pulled and the batch being delivered.",
			Buckets:   prometheus.DefBuckets,
		}),
		requestWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_wait_seconds",
			Help:      "Time consumers waited for a request to complete.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// RecordItemsPulled implements the batch.StatsCollector interface.
func (p *Prometheus) RecordItemsPulled(n int) {
	p.BasicStatsCollector.RecordItemsPulled(n)
	p.itemsPulled.Add(float64(n))
}

// RecordBatchDelivered implements the batch.StatsCollector interface.
func (p *Prometheus) RecordBatchDelivered(size int, age time.Duration) {
	p.BasicStatsCollector.RecordBatchDelivered(size, age)
	p.batchesDelivered.Inc()
	p.batchSize.Observe(float64(size))
	p.batchAge.Observe(age.Seconds())
}

// RecordTimerFlush implements the batch.StatsCollector interface.
func (p *Prometheus) RecordTimerFlush() {
	p.BasicStatsCollector.RecordTimerFlush()
	p.timerFlushes.Inc()
}

// RecordSourceError implements the batch.StatsCollector interface.
func (p *Prometheus) RecordSourceError() {
	p.BasicStatsCollector.RecordSourceError()
	p.sourceErrors.Inc()
}

// RecordRequestWait implements the batch.StatsCollector interface.
func (p *Prometheus) RecordRequestWait(wait time.Duration) {
	p.BasicStatsCollector.RecordRequestWait(wait)
	p.requestWait.Observe(wait.Seconds())
}
