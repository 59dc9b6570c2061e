package source

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Error is a Source that produces no items and fails with Err once Delay has
// passed. It is useful for testing error handling.
type Error[T any] struct {
	// Err is the error Pull fails with.
	Err error

	// Delay is how long Pull blocks before failing.
	Delay time.Duration
}

// NewError creates an Error source, checking that err is not nil.
func NewError[T any](err error, delay time.Duration) (*Error[T], error) {
	if err == nil {
		return nil, errors.New("invalid error config: error cannot be nil")
	}
	if delay < 0 {
		return nil, errors.Errorf("invalid error config: negative delay %v", delay)
	}
	return &Error[T]{Err: err, Delay: delay}, nil
}

// Pull implements the batch.Source interface.
func (s *Error[T]) Pull(ctx context.Context) (T, bool, error) {
	var zero T
	if err := wait(ctx, s.Delay); err != nil {
		return zero, false, err
	}
	return zero, false, s.Err
}

// Nil is a Source that doesn't produce any items. Pull reports exhaustion
// once Duration has passed. It can be used as a mock Source.
type Nil[T any] struct {
	Duration time.Duration
}

// Pull implements the batch.Source interface.
func (s *Nil[T]) Pull(ctx context.Context) (T, bool, error) {
	var zero T
	return zero, false, wait(ctx, s.Duration)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
