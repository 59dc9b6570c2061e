package batch

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// Source is a pull-based sequential source of items. The source package
// contains implementations for channels, iterators and functions.
//
// A Debouncer calls Pull from a single goroutine at a time. Pull returns:
//   - (item, true, nil) when an item was produced;
//   - (zero, false, nil) when the source is exhausted;
//   - (zero, false, err) when the source failed.
//
// Pull may block until the next item is available, but it should return
// ctx.Err() once ctx is done.
//
// If the source can be stopped early it should also implement io.Closer.
// Close is called at most once, and never while a Pull is in progress.
//
// Example:
//
//	type lineSource struct{ r *bufio.Scanner }
//
//	func (s *lineSource) Pull(ctx context.Context) (string, bool, error) {
//		if !s.r.Scan() {
//			return "", false, s.r.Err()
//		}
//		return s.r.Text(), true, nil
//	}
type Source[T any] interface {
	Pull(ctx context.Context) (item T, ok bool, err error)
}

// producer is the single pull operation the driver loop works with. It
// returns the items of one pull, which is always one item for New and zero
// or more for NewFlatten.
type producer[T any] interface {
	next(ctx context.Context) (items []T, ok bool, err error)
	close() error
}

// itemProducer appends every pulled value to the batch as one item.
type itemProducer[T any] struct {
	src Source[T]
}

func (p itemProducer[T]) next(ctx context.Context) ([]T, bool, error) {
	item, ok, err := p.src.Pull(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return []T{item}, true, nil
}

func (p itemProducer[T]) close() error {
	return closeSource(p.src)
}

// flattenProducer spreads every pulled collection into the batch.
type flattenProducer[T any] struct {
	src Source[[]T]
}

func (p flattenProducer[T]) next(ctx context.Context) ([]T, bool, error) {
	items, ok, err := p.src.Pull(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return items, true, nil
}

func (p flattenProducer[T]) close() error {
	return closeSource(p.src)
}

func closeSource(src interface{}) error {
	c, ok := src.(io.Closer)
	if !ok {
		return nil
	}
	return errors.Wrap(c.Close(), "batch: close source")
}
