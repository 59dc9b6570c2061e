package batch

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatsCollector defines the interface for collecting metrics from a Debouncer.
// Implementations can keep metrics in memory or export them; the metrics
// package has Prometheus and OpenTelemetry versions. The StatsCollector is
// optional - if not provided, no statistics are collected.
//
// Methods are called while the Debouncer holds its internal lock, so they
// must not block.
type StatsCollector interface {
	// RecordItemsPulled is called after each successful pull with the
	// number of items it added to the pending batch.
	RecordItemsPulled(n int)

	// RecordBatchDelivered is called when a batch is handed to a waiting
	// request. age is the time since the first item of the batch was pulled.
	RecordBatchDelivered(size int, age time.Duration)

	// RecordTimerFlush is called when the flush timer fires before the
	// source produced its next item.
	RecordTimerFlush()

	// RecordSourceError is called when the source fails.
	RecordSourceError()

	// RecordRequestWait is called when a request completes, with the time
	// between the request being made and it being completed.
	RecordRequestWait(wait time.Duration)

	// GetStats returns a snapshot of the current statistics.
	GetStats() Stats
}

// Stats holds aggregated statistics about a Debouncer.
type Stats struct {
	// ItemsPulled is the total number of items pulled from the source.
	ItemsPulled uint64

	// BatchesDelivered is the total number of batches handed to requests.
	BatchesDelivered uint64

	// ItemsDelivered is the total number of items in delivered batches.
	ItemsDelivered uint64

	// TimerFlushes is the number of times the flush timer fired.
	TimerFlushes uint64

	// SourceErrors is the total number of errors from sources.
	SourceErrors uint64

	// RequestsCompleted is the number of requests that completed, whether
	// with a batch, ErrDone or an error.
	RequestsCompleted uint64

	// MinBatchSize is the smallest batch delivered.
	MinBatchSize int

	// MaxBatchSize is the largest batch delivered.
	MaxBatchSize int

	// TotalBatchAge is the sum of the ages of all delivered batches.
	TotalBatchAge time.Duration

	// MaxBatchAge is the oldest batch delivered.
	MaxBatchAge time.Duration

	// TotalRequestWait is the sum of the wait times of all completed requests.
	TotalRequestWait time.Duration

	// StartTime is when statistics collection began.
	StartTime time.Time

	// LastUpdateTime is when statistics were last updated.
	LastUpdateTime time.Time
}

// NoOpStatsCollector is a stats collector that discards all metrics.
// This is the default stats collector when none is specified.
type NoOpStatsCollector struct{}

// RecordItemsPulled implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordItemsPulled(int) {}

// RecordBatchDelivered implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordBatchDelivered(int, time.Duration) {}

// RecordTimerFlush implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordTimerFlush() {}

// RecordSourceError implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordSourceError() {}

// RecordRequestWait implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordRequestWait(time.Duration) {}

// GetStats implements the StatsCollector interface.
func (n *NoOpStatsCollector) GetStats() Stats {
	return Stats{}
}

// BasicStatsCollector is a simple in-memory implementation of StatsCollector.
// All operations are thread-safe.
type BasicStatsCollector struct {
	mu    sync.RWMutex
	stats Stats

	// Atomic counters for lock-free updates
	itemsPulled       uint64
	timerFlushes      uint64
	sourceErrors      uint64
	requestsCompleted uint64
}

// NewBasicStatsCollector creates a new BasicStatsCollector.
func NewBasicStatsCollector() *BasicStatsCollector {
	now := time.Now()
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      now,
			LastUpdateTime: now,
		},
	}
}

// RecordItemsPulled implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordItemsPulled(n int) {
	atomic.AddUint64(&b.itemsPulled, uint64(n))
}

// RecordBatchDelivered implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordBatchDelivered(size int, age time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	b.stats.BatchesDelivered++
	b.stats.ItemsDelivered += uint64(size)
	b.stats.TotalBatchAge += age

	if size < b.stats.MinBatchSize || b.stats.MinBatchSize == 0 {
		b.stats.MinBatchSize = size
	}
	if size > b.stats.MaxBatchSize {
		b.stats.MaxBatchSize = size
	}
	if age > b.stats.MaxBatchAge {
		b.stats.MaxBatchAge = age
	}
}

// RecordTimerFlush implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordTimerFlush() {
	atomic.AddUint64(&b.timerFlushes, 1)
}

// RecordSourceError implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordSourceError() {
	atomic.AddUint64(&b.sourceErrors, 1)
}

// RecordRequestWait implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordRequestWait(wait time.Duration) {
	atomic.AddUint64(&b.requestsCompleted, 1)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.LastUpdateTime = time.Now()
	b.stats.TotalRequestWait += wait
}

// GetStats implements the StatsCollector interface.
// It returns a snapshot of the current statistics.
func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.ItemsPulled = atomic.LoadUint64(&b.itemsPulled)
	stats.TimerFlushes = atomic.LoadUint64(&b.timerFlushes)
	stats.SourceErrors = atomic.LoadUint64(&b.sourceErrors)
	stats.RequestsCompleted = atomic.LoadUint64(&b.requestsCompleted)
	return stats
}

// AverageBatchSize returns the average size of delivered batches.
// Returns 0 if no batches have been delivered.
func (s *Stats) AverageBatchSize() float64 {
	if s.BatchesDelivered == 0 {
		return 0
	}
	return float64(s.ItemsDelivered) / float64(s.BatchesDelivered)
}

// AverageBatchAge returns the average age of delivered batches.
func (s *Stats) AverageBatchAge() time.Duration {
	if s.BatchesDelivered == 0 {
		return 0
	}
	return s.TotalBatchAge / time.Duration(s.BatchesDelivered)
}

// AverageRequestWait returns the average time a request waited to complete.
func (s *Stats) AverageRequestWait() time.Duration {
	if s.RequestsCompleted == 0 {
		return 0
	}
	return s.TotalRequestWait / time.Duration(s.RequestsCompleted)
}

// Duration returns the total duration since statistics collection started.
func (s *Stats) Duration() time.Duration {
	return s.LastUpdateTime.Sub(s.StartTime)
}
