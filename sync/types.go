package sync

import (
	"context"
)

// ReadFunc performs a batched read. It receives the distinct keys of one
// debounced batch of Get calls and returns the values it found. Keys missing
// from the result fail their Get with ErrKeyNotFound.
type ReadFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// WriteFunc performs a batched write of one debounced batch of Set calls.
// Its error is returned by every Set in the batch. If the same key was set
// more than once, only the last value is passed.
type WriteFunc[K comparable, V any] func(ctx context.Context, data map[K]V) error

// request is a single queued Get or Set.
type request interface {
	getContext() context.Context
	sendError(err error)
}

type readRequest[K comparable, V any] struct {
	ctx      context.Context
	key      K
	response chan readResponse[V]
}

type readResponse[V any] struct {
	value V
	err   error
}

func (r *readRequest[K, V]) getContext() context.Context { return r.ctx }

func (r *readRequest[K, V]) sendError(err error) {
	r.sendResponse(*new(V), err)
}

// sendResponse never blocks: the response channel holds one value and each
// request is answered once.
func (r *readRequest[K, V]) sendResponse(value V, err error) {
	select {
	case r.response <- readResponse[V]{value: value, err: err}:
	default:
	}
}

type writeRequest[K comparable, V any] struct {
	ctx      context.Context
	key      K
	value    V
	response chan error
}

func (w *writeRequest[K, V]) getContext() context.Context { return w.ctx }

func (w *writeRequest[K, V]) sendError(err error) {
	select {
	case w.response <- err:
	default:
	}
}
