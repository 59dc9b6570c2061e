package source_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MasterOfBinary/debounce/batch"
	"github.com/MasterOfBinary/debounce/source"
)

// pullAll pulls from src until it is exhausted or fails.
func pullAll[T any](t *testing.T, src batch.Source[T]) ([]T, error) {
	t.Helper()
	var items []T
	for {
		item, ok, err := src.Pull(context.Background())
		if err != nil || !ok {
			return items, err
		}
		items = append(items, item)
	}
}

func TestChannel(t *testing.T) {
	t.Run("reads until closed", func(t *testing.T) {
		input := make(chan int, 3)
		input <- 1
		input <- 2
		input <- 3
		close(input)

		src, err := source.NewChannel(source.ChannelConfig[int]{Input: input})
		require.NoError(t, err)

		items, err := pullAll[int](t, src)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, items)
	})

	t.Run("nil input", func(t *testing.T) {
		_, err := source.NewChannel(source.ChannelConfig[int]{})
		assert.Error(t, err)
	})

	t.Run("fails on error", func(t *testing.T) {
		input := make(chan int)
		errs := make(chan error, 2)
		errs <- nil // ignored
		errs <- errors.New("broken")

		src := &source.Channel[int]{Input: input, Errs: errs}
		_, ok, err := src.Pull(context.Background())
		assert.False(t, ok)
		assert.EqualError(t, err, "broken")
	})

	t.Run("closed error channel", func(t *testing.T) {
		input := make(chan int, 1)
		errs := make(chan error)
		close(errs)
		input <- 7

		src := &source.Channel[int]{Input: input, Errs: errs}
		item, ok, err := src.Pull(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 7, item)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		src := &source.Channel[int]{Input: make(chan int)}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, ok, err := src.Pull(ctx)
		assert.False(t, ok)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestSeq(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		items, err := pullAll[string](t, source.NewSlice("a", "b"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, items)
	})

	t.Run("close stops the iterator", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		stopped := false
		src := source.NewSeq(func(yield func(int) bool) {
			defer func() { stopped = true }()
			for i := 0; ; i++ {
				if !yield(i) {
					return
				}
			}
		})

		item, ok, err := src.Pull(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 0, item)

		require.NoError(t, src.Close())
		require.NoError(t, src.Close())
		assert.True(t, stopped)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		src := source.NewSlice(1)
		defer src.Close()
		_, ok, err := src.Pull(ctx)
		assert.False(t, ok)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSeq2(t *testing.T) {
	t.Run("stops at the first error", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		src := source.NewSeq2(func(yield func(int, error) bool) {
			if !yield(1, nil) {
				return
			}
			if !yield(0, errors.New("bad record")) {
				return
			}
			yield(2, nil)
		})

		items, err := pullAll[int](t, src)
		assert.Equal(t, []int{1}, items)
		assert.EqualError(t, err, "bad record")
	})

	t.Run("exhausted", func(t *testing.T) {
		src := source.NewSeq2(func(yield func(string, error) bool) {
			yield("x", nil)
		})

		items, err := pullAll[string](t, src)
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, items)
	})
}

func TestFunc(t *testing.T) {
	n := 0
	src := source.Func[int](func(context.Context) (int, bool, error) {
		n++
		return n, n <= 2, nil
	})

	items, err := pullAll[int](t, src)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, items)
}

func TestError(t *testing.T) {
	t.Run("fails after delay", func(t *testing.T) {
		srcErr := errors.New("boom")
		src, err := source.NewError[int](srcErr, 10*time.Millisecond)
		require.NoError(t, err)

		start := time.Now()
		_, ok, err := src.Pull(context.Background())
		assert.False(t, ok)
		assert.ErrorIs(t, err, srcErr)
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := source.NewError[int](nil, 0)
		assert.Error(t, err)

		_, err = source.NewError[int](errors.New("boom"), -time.Second)
		assert.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		src := &source.Error[int]{Err: errors.New("boom"), Delay: time.Hour}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := src.Pull(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNil(t *testing.T) {
	t.Run("exhausted after duration", func(t *testing.T) {
		src := &source.Nil[int]{Duration: 10 * time.Millisecond}

		start := time.Now()
		_, ok, err := src.Pull(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		src := &source.Nil[int]{Duration: time.Hour}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, _, err := src.Pull(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// A source that fails before producing anything fails the pending request
// and every later one.
func TestError_WithDebouncer(t *testing.T) {
	srcErr := errors.New("boom")
	src, err := source.NewError[string](srcErr, 5*time.Millisecond)
	require.NoError(t, err)

	d, err := batch.New[string](context.Background(), src, batch.NewConstantConfig(&batch.ConfigValues{
		Delay: 100 * time.Millisecond,
	}))
	require.NoError(t, err)

	_, err = d.Next(context.Background())
	require.ErrorIs(t, err, srcErr)

	start := time.Now()
	_, again := d.Next(context.Background())
	assert.Equal(t, err, again)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
