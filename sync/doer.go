package sync

import (
	"context"

	"github.com/MasterOfBinary/debounce/batch"
)

// DoerElem is one Do call inside a batch. The DoerFunc reads Input and fills
// in Output, and may set Err to fail this call alone.
type DoerElem[In, Out any] struct {
	Input  In
	Output Out
	Err    error

	ctx  context.Context
	done chan error
}

func (e *DoerElem[In, Out]) getContext() context.Context { return e.ctx }

func (e *DoerElem[In, Out]) sendError(err error) {
	select {
	case e.done <- err:
	default:
	}
}

// DoerFunc handles a batch of Do calls. A returned error fails every call in
// the batch.
type DoerFunc[In, Out any] func(ctx context.Context, elems []*DoerElem[In, Out]) error

// Doer is the general form of BatchReader and BatchWriter: every Do call
// becomes one element of a batch handed to a DoerFunc.
type Doer[In, Out any] struct {
	doerFunc DoerFunc[In, Out]
	p        *dispatcher[*DoerElem[In, Out]]
}

// NewDoer creates a Doer. A nil f gives a Doer whose calls all succeed with
// the zero Output.
func NewDoer[In, Out any](config batch.Config, f DoerFunc[In, Out], opts ...Option) (*Doer[In, Out], error) {
	if f == nil {
		f = func(context.Context, []*DoerElem[In, Out]) error { return nil }
	}

	d := &Doer[In, Out]{doerFunc: f}
	p, err := newDispatcher(config, d.process, opts)
	if err != nil {
		return nil, err
	}
	d.p = p

	return d, nil
}

// Do adds val to the next batch and blocks until the batch was handled. If
// ctx is done first, ctx.Err() is returned.
func (d *Doer[In, Out]) Do(ctx context.Context, val In) (Out, error) {
	var zero Out

	if ctx == nil {
		ctx = context.Background()
	}

	elem := &DoerElem[In, Out]{
		Input: val,
		ctx:   ctx,
		done:  make(chan error, 1),
	}
	if err := d.p.submit(ctx, elem); err != nil {
		return zero, err
	}

	select {
	case err := <-elem.done:
		if err != nil {
			return zero, err
		}
		return elem.Output, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close can be called multiple times with no problems.
func (d *Doer[In, Out]) Close() {
	d.p.close()
}

func (d *Doer[In, Out]) process(ctx context.Context, elems []*DoerElem[In, Out]) {
	err := d.doerFunc(ctx, elems)

	for _, e := range elems {
		if err != nil {
			e.sendError(err)
			continue
		}
		e.sendError(e.Err)
	}
}
