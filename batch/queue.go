package batch

import "time"

// Result is the outcome of one Next call. Exactly one of the following holds:
//   - Err is nil and Items holds a non-empty batch;
//   - Err is ErrDone: the source is exhausted or the Debouncer was closed;
//   - Err is any other error: the sticky failure of the Debouncer.
type Result[T any] struct {
	Items []T
	Err   error
}

// Done reports whether the result marks the end of the batches, either
// because the source was exhausted or because the Debouncer was closed.
func (r Result[T]) Done() bool {
	return r.Err == ErrDone
}

// request is one outstanding Next call.
type request[T any] struct {
	result    chan Result[T]
	created   time.Time
	abandoned bool
}

func newRequest[T any](now time.Time) *request[T] {
	return &request[T]{
		result:  make(chan Result[T], 1),
		created: now,
	}
}

// complete fills the result slot. It must be called at most once.
func (r *request[T]) complete(res Result[T]) {
	r.result <- res
}

// requestQueue is a FIFO queue of pending requests.
type requestQueue[T any] struct {
	items []*request[T]
}

func (q *requestQueue[T]) enqueue(r *request[T]) {
	q.items = append(q.items, r)
}

// dequeue removes and returns the head of the queue, or nil if the queue is
// empty.
func (q *requestQueue[T]) dequeue() *request[T] {
	if len(q.items) == 0 {
		return nil
	}
	r := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Let the backing array go instead of growing it forever.
		q.items = nil
	}
	return r
}

func (q *requestQueue[T]) isEmpty() bool {
	return len(q.items) == 0
}

func (q *requestQueue[T]) len() int {
	return len(q.items)
}

// dropAbandoned removes abandoned requests from the head of the queue and
// returns them. Requests behind a live one are left alone.
func (q *requestQueue[T]) dropAbandoned() []*request[T] {
	var dropped []*request[T]
	for len(q.items) > 0 && q.items[0].abandoned {
		dropped = append(dropped, q.dequeue())
	}
	return dropped
}
