package batch_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MasterOfBinary/debounce/batch"
)

// waitTimeout bounds how long tests wait in real time for something that
// should happen almost immediately.
const waitTimeout = 2 * time.Second

type step struct {
	item string
	done bool
	err  error
}

// scriptSource is a Source controlled step by step by the test. Every Pull
// announces itself on pulls before blocking, so once the test has seen a
// pull, the flush timer for it is already armed.
type scriptSource struct {
	pulls  chan struct{}
	steps  chan step
	closed atomic.Int32
}

func newScriptSource() *scriptSource {
	return &scriptSource{
		pulls: make(chan struct{}, 100),
		steps: make(chan step),
	}
}

func (s *scriptSource) Pull(ctx context.Context) (string, bool, error) {
	s.pulls <- struct{}{}
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case st := <-s.steps:
		if st.err != nil {
			return "", false, st.err
		}
		if st.done {
			return "", false, nil
		}
		return st.item, true, nil
	}
}

func (s *scriptSource) Close() error {
	s.closed.Add(1)
	return nil
}

func (s *scriptSource) waitPull(t *testing.T) {
	t.Helper()
	select {
	case <-s.pulls:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for the source to be pulled")
	}
}

func (s *scriptSource) send(t *testing.T, st step) {
	t.Helper()
	select {
	case s.steps <- st:
	case <-time.After(waitTimeout):
		t.Fatal("timed out handing a step to the source")
	}
}

func (s *scriptSource) item(t *testing.T, item string) {
	t.Helper()
	s.send(t, step{item: item})
}

func (s *scriptSource) finish(t *testing.T) {
	t.Helper()
	s.send(t, step{done: true})
}

func (s *scriptSource) fail(t *testing.T, err error) {
	t.Helper()
	s.send(t, step{err: err})
}

func delay(d time.Duration) batch.Config {
	return batch.NewConstantConfig(&batch.ConfigValues{Delay: d})
}

func receive[T any](t *testing.T, ch <-chan batch.Result[T]) batch.Result[T] {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a result")
		return batch.Result[T]{}
	}
}

func requireNoResult[T any](t *testing.T, ch <-chan batch.Result[T]) {
	t.Helper()
	select {
	case res := <-ch:
		t.Fatalf("unexpected result: %+v", res)
	case <-time.After(20 * time.Millisecond):
	}
}

func requireBatch[T any](t *testing.T, ch <-chan batch.Result[T], want ...T) {
	t.Helper()
	res := receive(t, ch)
	require.NoError(t, res.Err)
	require.Equal(t, want, res.Items)
}

func requireDone[T any](t *testing.T, ch <-chan batch.Result[T]) {
	t.Helper()
	res := receive(t, ch)
	require.True(t, res.Done(), "expected ErrDone, got %v", res.Err)
	require.Empty(t, res.Items)
}

var errTest = errors.New("test failure")
