package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MasterOfBinary/debounce/batch"
)

func delayConfig(d time.Duration) batch.Config {
	return batch.NewConstantConfig(&batch.ConfigValues{Delay: d})
}

func echoRead(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, key := range keys {
		result[key] = "value-" + key
	}
	return result, nil
}

func TestNewBatchReader_Errors(t *testing.T) {
	_, err := NewBatchReader[string, string](delayConfig(time.Millisecond), nil)
	if err == nil {
		t.Error("expected error for nil read function")
	}

	_, err = NewBatchReader(delayConfig(-time.Second), echoRead)
	if !errors.Is(err, batch.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBatchReader_SingleGet(t *testing.T) {
	reader, err := NewBatchReader(delayConfig(10*time.Millisecond), echoRead)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	value, err := reader.Get(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "value-test" {
		t.Errorf("expected value-test, got %s", value)
	}
}

func TestBatchReader_ConcurrentGets(t *testing.T) {
	var (
		mu        sync.Mutex
		callCount int
		batchLen  int
	)

	readFunc := func(ctx context.Context, keys []string) (map[string]string, error) {
		mu.Lock()
		callCount++
		batchLen = len(keys)
		mu.Unlock()
		return echoRead(ctx, keys)
	}

	reader, err := NewBatchReader(delayConfig(100*time.Millisecond), readFunc)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	var wg sync.WaitGroup
	results := make([]string, 10)
	errs := make([]error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			key := string(rune('a' + idx))
			results[idx], errs[idx] = reader.Get(context.Background(), key)
		}(i)
	}

	wg.Wait()

	for i := 0; i < 10; i++ {
		if errs[i] != nil {
			t.Errorf("unexpected error for index %d: %v", i, errs[i])
		}
		expected := "value-" + string(rune('a'+i))
		if results[i] != expected {
			t.Errorf("expected %s, got %s", expected, results[i])
		}
	}

	// The calls arrive well within one delay of each other.
	mu.Lock()
	defer mu.Unlock()
	if callCount != 1 || batchLen != 10 {
		t.Errorf("expected 1 batch call with 10 keys, got %d call(s), last with %d key(s)", callCount, batchLen)
	}
}

func TestBatchReader_DuplicateKeys(t *testing.T) {
	keysSeen := make(chan []string, 1)
	readFunc := func(ctx context.Context, keys []string) (map[string]string, error) {
		keysSeen <- keys
		return echoRead(ctx, keys)
	}

	reader, err := NewBatchReader(delayConfig(100*time.Millisecond), readFunc)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := reader.Get(context.Background(), "same"); err != nil || v != "value-same" {
				t.Errorf("unexpected result %q, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if keys := <-keysSeen; len(keys) != 1 {
		t.Errorf("expected one distinct key, got %v", keys)
	}
}

func TestBatchReader_ContextCancellation(t *testing.T) {
	reader, err := NewBatchReader(delayConfig(100*time.Millisecond), echoRead)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err = reader.Get(ctx, "key")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got %v", err)
	}
}

func TestBatchReader_KeyNotFound(t *testing.T) {
	readFunc := func(ctx context.Context, keys []string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	reader, err := NewBatchReader(delayConfig(time.Millisecond), readFunc)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	_, err = reader.Get(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestBatchReader_BatchError(t *testing.T) {
	expectedErr := errors.New("database error")
	readFunc := func(ctx context.Context, keys []string) (map[string]string, error) {
		return nil, expectedErr
	}

	reader, err := NewBatchReader(delayConfig(time.Millisecond), readFunc)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	_, err = reader.Get(context.Background(), "key")
	if err != expectedErr {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}

	// A failed batch does not affect later ones.
	_, err = reader.Get(context.Background(), "key")
	if err != expectedErr {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
}

func TestBatchReader_NilContext(t *testing.T) {
	reader, err := NewBatchReader(delayConfig(time.Millisecond), echoRead)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	//nolint:staticcheck // nil context is accepted
	value, err := reader.Get(nil, "key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "value-key" {
		t.Errorf("expected value-key, got %s", value)
	}
}

func TestBatchReader_CloseWaitsForPending(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	readFunc := func(ctx context.Context, keys []string) (map[string]string, error) {
		close(started)
		<-release
		return echoRead(ctx, keys)
	}

	reader, err := NewBatchReader(delayConfig(time.Millisecond), readFunc)
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan error, 1)
	go func() {
		_, err := reader.Get(context.Background(), "key")
		got <- err
	}()
	<-started

	closed := make(chan struct{})
	go func() {
		reader.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a batch was in progress")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	if err := <-got; err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	<-closed

	if _, err := reader.Get(context.Background(), "key"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestBatchReader_MultipleClose(t *testing.T) {
	reader, err := NewBatchReader(delayConfig(time.Millisecond), echoRead)
	if err != nil {
		t.Fatal(err)
	}

	// Multiple closes should not panic
	reader.Close()
	reader.Close()
}

func BenchmarkBatchReader_SingleGet(b *testing.B) {
	reader, err := NewBatchReader(delayConfig(time.Millisecond), echoRead)
	if err != nil {
		b.Fatal(err)
	}
	defer reader.Close()

	ctx := context.Background()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = reader.Get(ctx, "key")
	}
}

func BenchmarkBatchReader_ConcurrentGets(b *testing.B) {
	reader, err := NewBatchReader(delayConfig(time.Millisecond), echoRead)
	if err != nil {
		b.Fatal(err)
	}
	defer reader.Close()

	ctx := context.Background()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = reader.Get(ctx, "key")
		}
	})
}
