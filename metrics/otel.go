package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/MasterOfBinary/debounce/batch"
)

// OTel is a batch.StatsCollector backed by OpenTelemetry instruments.
type OTel struct {
	*batch.BasicStatsCollector

	itemsPulled      metric.Int64Counter
	batchesDelivered metric.Int64Counter
	timerFlushes     metric.Int64Counter
	sourceErrors     metric.Int64Counter
	batchSize        metric.Int64Histogram
	batchAge         metric.Float64Histogram
	requestWait      metric.Float64Histogram
}

// NewOTel creates the debouncer instruments on meter.
func NewOTel(meter metric.Meter) (o *OTel, err error) {
	o = &OTel{BasicStatsCollector: batch.NewBasicStatsCollector()}

	o.itemsPulled, err = meter.Int64Counter("debounce_items_pulled_total",
		metric.WithDescription("Total number of items pulled from the source"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register items pulled counter: %w", err)
	}

	o.batchesDelivered, err = meter.Int64Counter("debounce_batches_delivered_total",
		metric.WithDescription("Total number of batches handed to consumers"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register batches delivered counter: %w", err)
	}

	o.timerFlushes, err = meter.Int64Counter("debounce_timer_flushes_total",
		metric.WithDescription("Number of times the source stalled longer than the delay"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register timer flushes counter: %w", err)
	}

	o.sourceErrors, err = meter.Int64Counter("debounce_source_errors_total",
		metric.WithDescription("Total number of source failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register source errors counter: %w", err)
	}

	o.batchSize, err = meter.Int64Histogram("debounce_batch_size",
		metric.WithDescription("Number of items in delivered batches"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register batch size histogram: %w", err)
	}

	o.batchAge, err = meter.Float64Histogram("debounce_batch_age_seconds",
		metric.WithDescription("Time between the first item of a batch being pulled and the batch being delivered"),
		metric.WithUnit("seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register batch age histogram: %w", err)
	}

	o.requestWait, err = meter.Float64Histogram("debounce_request_wait_seconds",
		metric.WithDescription("Time consumers waited for a request to complete"),
		metric.WithUnit("seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register request wait histogram: %w", err)
	}

	return o, nil
}

// RecordItemsPulled implements the batch.StatsCollector interface.
func (o *OTel) RecordItemsPulled(n int) {
	o.BasicStatsCollector.RecordItemsPulled(n)
	o.itemsPulled.Add(context.Background(), int64(n))
}

// RecordBatchDelivered implements the batch.StatsCollector interface.
func (o *OTel) RecordBatchDelivered(size int, age time.Duration) {
	ctx := context.Background()
	o.BasicStatsCollector.RecordBatchDelivered(size, age)
	o.batchesDelivered.Add(ctx, 1)
	o.batchSize.Record(ctx, int64(size))
	o.batchAge.Record(ctx, age.Seconds())
}

// RecordTimerFlush implements the batch.StatsCollector interface.
func (o *OTel) RecordTimerFlush() {
	o.BasicStatsCollector.RecordTimerFlush()
	o.timerFlushes.Add(context.Background(), 1)
}

// RecordSourceError implements the batch.StatsCollector interface.
func (o *OTel) RecordSourceError() {
	o.BasicStatsCollector.RecordSourceError()
	o.sourceErrors.Add(context.Background(), 1)
}

// RecordRequestWait implements the batch.StatsCollector interface.
func (o *OTel) RecordRequestWait(wait time.Duration) {
	o.BasicStatsCollector.RecordRequestWait(wait)
	o.requestWait.Record(context.Background(), wait.Seconds())
}
