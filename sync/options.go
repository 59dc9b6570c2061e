package sync

import (
	"github.com/MasterOfBinary/debounce/batch"
)

// Option configures a BatchReader or BatchWriter.
type Option func(*options)

type options struct {
	logger     batch.Logger
	stats      batch.StatsCollector
	bufferSize int
}

func defaultOptions() *options {
	return &options{
		logger:     &batch.NoOpLogger{},
		stats:      &batch.NoOpStatsCollector{},
		bufferSize: 100,
	}
}

// WithLogger sets the logger of the underlying Debouncer.
func WithLogger(logger batch.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStats sets the stats collector of the underlying Debouncer.
func WithStats(stats batch.StatsCollector) Option {
	return func(o *options) {
		if stats != nil {
			o.stats = stats
		}
	}
}

// WithBufferSize sets how many requests may be queued before Get or Set
// blocks. Default: 100. Panics if size is negative.
func WithBufferSize(size int) Option {
	if size < 0 {
		panic("sync: buffer size cannot be negative")
	}
	return func(o *options) {
		o.bufferSize = size
	}
}
