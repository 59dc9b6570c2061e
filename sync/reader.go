package sync

import (
	"context"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/debounce/batch"
)

// ErrKeyNotFound is returned by Get when the ReadFunc result has no entry
// for the key.
var ErrKeyNotFound = errors.New("key not found")

// BatchReader provides synchronous read operations that are batched behind the scenes.
// It uses generics to provide type safety for keys and values.
type BatchReader[K comparable, V any] struct {
	readFunc ReadFunc[K, V]
	p        *dispatcher[*readRequest[K, V]]
}

// NewBatchReader creates a new BatchReader with the specified configuration and read function.
// Get calls that arrive less than the configured delay apart are passed to
// readFunc together.
func NewBatchReader[K comparable, V any](config batch.Config, readFunc ReadFunc[K, V], opts ...Option) (*BatchReader[K, V], error) {
	if readFunc == nil {
		return nil, errors.New("sync: read function cannot be nil")
	}

	r := &BatchReader[K, V]{readFunc: readFunc}
	p, err := newDispatcher(config, r.process, opts)
	if err != nil {
		return nil, err
	}
	r.p = p

	return r, nil
}

// Get retrieves a value by key. It blocks until the batched operation completes
// or the context is cancelled. Multiple concurrent Get calls will be batched
// together according to the batch configuration.
func (r *BatchReader[K, V]) Get(ctx context.Context, key K) (V, error) {
	var zero V

	if ctx == nil {
		ctx = context.Background()
	}

	req := &readRequest[K, V]{
		ctx:      ctx,
		key:      key,
		response: make(chan readResponse[V], 1),
	}
	if err := r.p.submit(ctx, req); err != nil {
		return zero, err
	}

	select {
	case resp := <-req.response:
		return resp.value, resp.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Close stops accepting Get calls and waits for pending ones to complete.
// It is safe to call Close more than once.
func (r *BatchReader[K, V]) Close() {
	r.p.close()
}

func (r *BatchReader[K, V]) process(ctx context.Context, reqs []*readRequest[K, V]) {
	keys := make([]K, 0, len(reqs))
	seen := make(map[K]struct{}, len(reqs))
	for _, req := range reqs {
		if _, ok := seen[req.key]; ok {
			continue
		}
		seen[req.key] = struct{}{}
		keys = append(keys, req.key)
	}

	values, err := r.readFunc(ctx, keys)
	if err != nil {
		// Global error affects all requests
		for _, req := range reqs {
			req.sendError(err)
		}
		return
	}

	for _, req := range reqs {
		value, found := values[req.key]
		if !found {
			req.sendError(ErrKeyNotFound)
			continue
		}
		req.sendResponse(value, nil)
	}
}
