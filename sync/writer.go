package sync

import (
	"context"

	"github.com/pkg/errors"

	"github.com/MasterOfBinary/debounce/batch"
)

// BatchWriter provides synchronous write operations that are batched behind the scenes.
// It uses generics to provide type safety for keys and values.
type BatchWriter[K comparable, V any] struct {
	writeFunc WriteFunc[K, V]
	p         *dispatcher[*writeRequest[K, V]]
}

// NewBatchWriter creates a new BatchWriter with the specified configuration and write function.
// The writeFunc will be called with batches of key-value pairs to write.
func NewBatchWriter[K comparable, V any](config batch.Config, writeFunc WriteFunc[K, V], opts ...Option) (*BatchWriter[K, V], error) {
	if writeFunc == nil {
		return nil, errors.New("sync: write function cannot be nil")
	}

	w := &BatchWriter[K, V]{writeFunc: writeFunc}
	p, err := newDispatcher(config, w.process, opts)
	if err != nil {
		return nil, err
	}
	w.p = p

	return w, nil
}

// Set writes a key-value pair. It blocks until the batched operation completes
// or the context is cancelled. Multiple concurrent Set calls will be batched
// together according to the batch configuration.
func (w *BatchWriter[K, V]) Set(ctx context.Context, key K, value V) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req := &writeRequest[K, V]{
		ctx:      ctx,
		key:      key,
		value:    value,
		response: make(chan error, 1),
	}
	if err := w.p.submit(ctx, req); err != nil {
		return err
	}

	select {
	case err := <-req.response:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting Set calls and waits for pending ones to complete.
// It is safe to call Close more than once.
func (w *BatchWriter[K, V]) Close() {
	w.p.close()
}

func (w *BatchWriter[K, V]) process(ctx context.Context, reqs []*writeRequest[K, V]) {
	data := make(map[K]V, len(reqs))
	for _, req := range reqs {
		// Last write wins for duplicate keys
		data[req.key] = req.value
	}

	err := w.writeFunc(ctx, data)

	// Same result for all requests in the batch
	for _, req := range reqs {
		req.sendError(err)
	}
}
