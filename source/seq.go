package source

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// Seq is a synchronous Source backed by an iterator. Items are produced by
// advancing the iterator on demand, so a slow iterator blocks Pull.
//
// Close stops the iterator early. It must not be called while Pull is
// running; batch.Debouncer guarantees this.
type Seq[T any] struct {
	next func() (T, bool)
	stop func()
	once sync.Once
}

// NewSeq creates a Seq source from seq.
func NewSeq[T any](seq iter.Seq[T]) *Seq[T] {
	next, stop := iter.Pull(seq)
	return &Seq[T]{
		next: next,
		stop: stop,
	}
}

// NewSlice creates a Seq source that produces items in order.
func NewSlice[T any](items ...T) *Seq[T] {
	return NewSeq(slices.Values(items))
}

// Pull implements the batch.Source interface.
func (s *Seq[T]) Pull(ctx context.Context) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	item, ok := s.next()
	return item, ok, nil
}

// Close implements io.Closer.
func (s *Seq[T]) Close() error {
	s.once.Do(s.stop)
	return nil
}

// Seq2 is a synchronous Source backed by an iterator of items and errors.
// The first non-nil error fails the source.
type Seq2[T any] struct {
	next func() (T, error, bool)
	stop func()
	once sync.Once
}

// NewSeq2 creates a Seq2 source from seq.
//
// Example reading lines from a file:
//
//	lines := func(yield func(string, error) bool) {
//		scanner := bufio.NewScanner(f)
//		for scanner.Scan() {
//			if !yield(scanner.Text(), nil) {
//				return
//			}
//		}
//		if err := scanner.Err(); err != nil {
//			yield("", err)
//		}
//	}
//	src := source.NewSeq2(lines)
func NewSeq2[T any](seq iter.Seq2[T, error]) *Seq2[T] {
	next, stop := iter.Pull2(seq)
	return &Seq2[T]{
		next: next,
		stop: stop,
	}
}

// Pull implements the batch.Source interface.
func (s *Seq2[T]) Pull(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	item, err, ok := s.next()
	if !ok {
		return zero, false, nil
	}
	if err != nil {
		s.Close()
		return zero, false, err
	}
	return item, true, nil
}

// Close implements io.Closer.
func (s *Seq2[T]) Close() error {
	s.once.Do(s.stop)
	return nil
}
