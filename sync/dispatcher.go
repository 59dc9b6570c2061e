package sync

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/debounce/batch"
	"github.com/MasterOfBinary/debounce/source"
)

// ErrClosed is returned by Get and Set once the reader or writer is closed.
var ErrClosed = errors.New("sync: closed")

// dispatcher feeds requests through a Debouncer and hands every debounced
// batch of them to process. It is shared by BatchReader and BatchWriter.
type dispatcher[R request] struct {
	mu     sync.RWMutex
	closed bool
	input  chan R

	debouncer *batch.Debouncer[R]
	process   func(ctx context.Context, reqs []R)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newDispatcher[R request](config batch.Config, process func(context.Context, []R), opts []Option) (*dispatcher[R], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	input := make(chan R, o.bufferSize)
	src, err := source.NewChannel(source.ChannelConfig[R]{Input: input})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	d, err := batch.New[R](ctx, src, config)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "sync: create debouncer")
	}
	d.WithLogger(o.logger).WithStats(o.stats)

	p := &dispatcher[R]{
		input:     input,
		debouncer: d,
		process:   process,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go p.run()

	return p, nil
}

func (p *dispatcher[R]) run() {
	defer close(p.done)

	for {
		reqs, err := p.debouncer.Next(context.Background())
		if err != nil {
			if !errors.Is(err, batch.ErrDone) {
				p.failPending(err)
			}
			return
		}
		if active := activeRequests(reqs); len(active) > 0 {
			p.process(p.ctx, active)
		}
	}
}

// failPending answers every request still queued once the Debouncer has
// failed. It returns after Close closes the input.
func (p *dispatcher[R]) failPending(err error) {
	for req := range p.input {
		req.sendError(err)
	}
}

// submit queues req. It blocks while the input buffer is full.
func (p *dispatcher[R]) submit(ctx context.Context, req R) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.input <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting requests and waits until every queued request has
// been processed.
func (p *dispatcher[R]) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.input)
	}
	p.mu.Unlock()

	<-p.done
	p.cancel()
	_ = p.debouncer.Close()
}

// activeRequests answers requests whose context is already done and returns
// the rest.
func activeRequests[R request](reqs []R) []R {
	active := reqs[:0]
	for _, req := range reqs {
		if err := req.getContext().Err(); err != nil {
			req.sendError(err)
			continue
		}
		active = append(active, req)
	}
	return active
}
