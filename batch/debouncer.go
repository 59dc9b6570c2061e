package batch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Debouncer turns a Source of items into a sequence of batches. Items that
// the source produces less than the configured delay apart are grouped into
// the same batch; when the source stalls for longer than the delay, the
// items buffered so far are handed out without waiting for more.
//
// To create a new Debouncer, call New or NewFlatten.
//
// The source is only pulled while at least one Next call is waiting, by a
// single background goroutine that is started on demand and exits when no
// request is left. Requests are served strictly in the order they were
// made, and every delivered batch holds at least one item.
//
// A simple consumer loop:
//
//	d, err := batch.New(ctx, src, batch.NewConstantConfig(&batch.ConfigValues{
//		Delay: 50 * time.Millisecond,
//	}))
//	if err != nil {
//		return err
//	}
//	defer d.Close()
//
//	for {
//		items, err := d.Next(ctx)
//		if errors.Is(err, batch.ErrDone) {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		process(items)
//	}
//
// Once the source fails, or Fail is called, the first error is sticky: every
// pending and future Next call returns it. Batches that were delivered
// before the failure stand.
type Debouncer[T any] struct {
	id     uuid.UUID
	config Config
	clock  clockwork.Clock
	logger Logger
	stats  StatsCollector
	src    producer[T]

	// ctx is passed to every pull. It is cancelled once the Debouncer is
	// retired, which unblocks a pull that is still waiting.
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	started   bool
	lastDelay time.Duration
	batch     accumulator[T]
	queue     requestQueue[T]
	timer     flushTimer
	delivered uint64

	// doneProducing is set once the source completed or failed.
	doneProducing bool
	// doneConsuming is set once no more batches will ever be delivered.
	doneConsuming bool
	// driving is set while the driver goroutine exists.
	driving bool
	// closeSource is set when Close ran during a pull; the driver closes
	// the source once the pull has returned.
	closeSource bool
	err         error
}

// New creates a Debouncer that pulls items from src and groups them into
// batches according to config. Each successful pull adds one item.
//
// If config is nil, DefaultDelay is used. An invalid config returns an error
// wrapping ErrInvalidConfig.
//
// ctx bounds the lifetime of the Debouncer: once it is done, an in-progress
// pull is expected to fail with ctx.Err(), which becomes the sticky error.
func New[T any](ctx context.Context, src Source[T], config Config) (*Debouncer[T], error) {
	if src == nil {
		return nil, ErrNilSource
	}
	return newDebouncer[T](ctx, itemProducer[T]{src: src}, config)
}

// NewFlatten is like New, but every pull yields a collection of items that
// is spread into the current batch. A pull that yields an empty collection
// adds nothing.
func NewFlatten[T any](ctx context.Context, src Source[[]T], config Config) (*Debouncer[T], error) {
	if src == nil {
		return nil, ErrNilSource
	}
	return newDebouncer[T](ctx, flattenProducer[T]{src: src}, config)
}

func newDebouncer[T any](ctx context.Context, src producer[T], config Config) (*Debouncer[T], error) {
	values, err := validateConfig(config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = NewConstantConfig(&values)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	clock := clockwork.NewRealClock()
	d := &Debouncer[T]{
		id:        uuid.New(),
		config:    config,
		clock:     clock,
		logger:    &NoOpLogger{},
		stats:     &NoOpStatsCollector{},
		src:       src,
		lastDelay: values.Delay,
		timer:     flushTimer{clock: clock},
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.batch.reset()

	return d, nil
}

// WithLogger sets a custom logger for the Debouncer.
// If not set, no logging occurs.
//
// Panics if called after the first call to Next or NextAsync.
func (d *Debouncer[T]) WithLogger(logger Logger) *Debouncer[T] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		panic("batch: WithLogger cannot be called after Next has been called")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	d.logger = logger
	return d
}

// WithStats sets a custom stats collector for the Debouncer.
// If not set, no statistics are collected.
//
// Example:
//
//	stats := batch.NewBasicStatsCollector()
//	d = d.WithStats(stats)
//
//	// Later, retrieve statistics
//	currentStats := stats.GetStats()
//
// Panics if called after the first call to Next or NextAsync.
func (d *Debouncer[T]) WithStats(stats StatsCollector) *Debouncer[T] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		panic("batch: WithStats cannot be called after Next has been called")
	}
	if stats == nil {
		stats = &NoOpStatsCollector{}
	}

	d.stats = stats
	return d
}

// WithClock sets the clock used for the flush timer and for timestamps.
// Tests can pass a clockwork.FakeClock to control time.
//
// Panics if called after the first call to Next or NextAsync.
func (d *Debouncer[T]) WithClock(clock clockwork.Clock) *Debouncer[T] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		panic("batch: WithClock cannot be called after Next has been called")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	d.clock = clock
	d.timer.clock = clock
	return d
}

// ID returns the identifier the Debouncer uses in its log messages.
func (d *Debouncer[T]) ID() uuid.UUID {
	return d.id
}

// NextAsync requests the next batch and returns a channel that receives
// exactly one Result once the request completes. Requests complete in the
// order they were made.
//
// After the Debouncer is done, the returned channel already holds ErrDone or
// the sticky error.
func (d *Debouncer[T]) NextAsync() <-chan Result[T] {
	return d.enqueue().result
}

// Next blocks until the next batch is available and returns it. It returns
// ErrDone once the source is exhausted or the Debouncer was closed, and the
// sticky error once the source or Fail failed it.
//
// If ctx is done first, Next returns ctx.Err(). The request then gives up its
// place: a batch is never handed to a request that is no longer waiting.
func (d *Debouncer[T]) Next(ctx context.Context) ([]T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req := d.enqueue()
	select {
	case res := <-req.result:
		return res.Items, res.Err
	case <-ctx.Done():
	}

	d.mu.Lock()
	req.abandoned = true
	d.mu.Unlock()

	// The request may have completed before it was marked.
	select {
	case res := <-req.result:
		return res.Items, res.Err
	default:
		return nil, ctx.Err()
	}
}

// Close stops the Debouncer. Buffered items that were not delivered yet are
// discarded, every pending request completes with ErrDone, and if the
// source has not finished it is closed, provided it implements io.Closer.
//
// A pull that is in progress is not interrupted beyond cancelling its
// context; the source is closed once it returns. Close is idempotent and the
// error it returns is the source's Close error, if any.
func (d *Debouncer[T]) Close() error {
	d.mu.Lock()
	if d.doneConsuming {
		d.mu.Unlock()
		return nil
	}

	d.retireLocked("closed")
	d.batch.reset()
	d.flushLocked()

	closeNow := false
	if !d.doneProducing {
		if d.driving {
			d.closeSource = true
		} else {
			closeNow = true
		}
	}
	d.mu.Unlock()

	if closeNow {
		return d.closeUnderlying()
	}
	return nil
}

// Fail stops the Debouncer with err. Unless an error was already recorded,
// err becomes the sticky error returned by every pending and future Next
// call. Fail otherwise behaves like Close.
//
// Fail returns ErrNilFailure if err is nil.
func (d *Debouncer[T]) Fail(err error) error {
	if err == nil {
		return ErrNilFailure
	}

	d.mu.Lock()
	if d.err == nil {
		d.err = err
		d.logger.Warn("debouncer %s: failed: %v", d.id, err)
	}
	d.mu.Unlock()

	return d.Close()
}

// enqueue registers a new request and makes sure the driver is running.
func (d *Debouncer[T]) enqueue() *request[T] {
	d.mu.Lock()
	d.started = true

	req := newRequest[T](d.clock.Now())
	if d.doneConsuming {
		d.completeLocked(req, d.finalResultLocked())
		d.mu.Unlock()
		return req
	}

	d.queue.enqueue(req)
	start := !d.driving
	d.driving = true
	d.mu.Unlock()

	if start {
		go d.drive()
	}
	return req
}

// drive is the driver loop. It pulls from the source while requests are
// waiting, racing every pull against the flush timer. Only one drive
// goroutine exists at a time.
func (d *Debouncer[T]) drive() {
	d.mu.Lock()
	d.logger.Debug("debouncer %s: driver started with %d waiting request(s)", d.id, d.queue.len())

	for d.shouldPullLocked() {
		values := fixConfig(d.config.Get(), d.lastDelay)
		d.lastDelay = values.Delay
		if err := d.timer.arm(values.Delay, d.onTimer); err != nil {
			d.logger.Warn("debouncer %s: %v", d.id, err)
		}
		d.mu.Unlock()

		items, ok, err := d.src.next(d.ctx)

		d.mu.Lock()
		d.timer.cancel()
		switch {
		case d.doneConsuming:
			// Retired during the pull. Whatever the pull returned is dropped,
			// including errors caused by cancelling ctx.
			if err != nil || !ok {
				d.doneProducing = true
			}
		case err != nil:
			d.doneProducing = true
			d.stats.RecordSourceError()
			if d.err == nil {
				d.err = &SourceError{Err: err}
			}
			d.logger.Error("debouncer %s: source failed: %v", d.id, err)
		case !ok:
			d.doneProducing = true
			d.logger.Debug("debouncer %s: source exhausted", d.id)
		default:
			d.batch.append(d.clock.Now(), items...)
			d.stats.RecordItemsPulled(len(items))
		}
	}

	d.flushLocked()
	d.driving = false
	closeSrc := d.closeSource
	d.closeSource = false
	d.logger.Debug("debouncer %s: driver stopped", d.id)
	d.mu.Unlock()

	if closeSrc {
		_ = d.closeUnderlying()
	}
}

func (d *Debouncer[T]) shouldPullLocked() bool {
	d.queue.dropAbandoned()
	return !d.doneProducing && !d.doneConsuming && !d.queue.isEmpty()
}

// onTimer runs when a flush timer fires.
func (d *Debouncer[T]) onTimer(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.timer.fired(gen) {
		return
	}
	d.stats.RecordTimerFlush()
	d.flushLocked()
}

// flushLocked hands the current batch to the oldest waiting request, retires
// the Debouncer once nothing more can be produced, and completes the whole
// queue after retirement. It is safe to call any number of times.
func (d *Debouncer[T]) flushLocked() {
	d.timer.cancel()

	if !d.doneConsuming {
		d.queue.dropAbandoned()
		if !d.queue.isEmpty() {
			if items, started, ok := d.batch.drain(); ok {
				age := d.clock.Since(started)
				d.delivered++
				d.stats.RecordBatchDelivered(len(items), age)
				d.logger.Debug("debouncer %s: delivering batch %d with %d item(s), age %v",
					d.id, d.delivered, len(items), age)
				d.completeLocked(d.queue.dequeue(), Result[T]{Items: items})
			}
		}
		if d.doneProducing && d.batch.isEmpty() {
			d.retireLocked("source finished")
		}
	}

	for d.doneConsuming && !d.queue.isEmpty() {
		d.completeLocked(d.queue.dequeue(), d.finalResultLocked())
	}
}

func (d *Debouncer[T]) retireLocked(reason string) {
	d.doneConsuming = true
	d.cancel()
	d.logger.Info("debouncer %s: done (%s) after %d batch(es)", d.id, reason, d.delivered)
}

func (d *Debouncer[T]) completeLocked(req *request[T], res Result[T]) {
	d.stats.RecordRequestWait(d.clock.Since(req.created))
	req.complete(res)
}

func (d *Debouncer[T]) finalResultLocked() Result[T] {
	if d.err != nil {
		return Result[T]{Err: d.err}
	}
	return Result[T]{Err: ErrDone}
}

func (d *Debouncer[T]) closeUnderlying() error {
	err := d.src.close()
	if err != nil {
		d.logger.Warn("debouncer %s: %v", d.id, err)
	}
	return err
}
