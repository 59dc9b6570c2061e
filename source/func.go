package source

import "context"

// Func is a Source backed by a function with the same contract as Pull.
type Func[T any] func(ctx context.Context) (T, bool, error)

// Pull implements the batch.Source interface.
func (f Func[T]) Pull(ctx context.Context) (T, bool, error) {
	return f(ctx)
}
