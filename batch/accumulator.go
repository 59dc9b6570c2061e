package batch

import "time"

// accumulator holds the items pulled since the last flush. It is owned by
// the Debouncer and only touched with the Debouncer's lock held.
type accumulator[T any] struct {
	items []T
	// started is when the first item of the current batch was pulled.
	started time.Time
}

func (a *accumulator[T]) append(now time.Time, items ...T) {
	if len(items) == 0 {
		return
	}
	if len(a.items) == 0 {
		a.started = now
	}
	a.items = append(a.items, items...)
}

// drain removes and returns the current batch. It returns false, leaving the
// accumulator untouched, if there is nothing to drain.
func (a *accumulator[T]) drain() ([]T, time.Time, bool) {
	if len(a.items) == 0 {
		return nil, time.Time{}, false
	}
	items, started := a.items, a.started
	a.reset()
	return items, started, true
}

func (a *accumulator[T]) reset() {
	a.items = make([]T, 0, defaultBatchCapacity)
	a.started = time.Time{}
}

func (a *accumulator[T]) isEmpty() bool {
	return len(a.items) == 0
}
