// Package sync provides synchronous, blocking APIs whose calls are coalesced
// behind the scenes by a batch.Debouncer.
//
// The main types are BatchReader and BatchWriter. Their Get and Set methods
// block until the operation completes. Calls that arrive less than the
// configured delay apart are grouped, and each group is passed to a single
// ReadFunc or WriteFunc invocation.
//
// Basic usage for reading:
//
//	readFunc := func(ctx context.Context, keys []string) (map[string]string, error) {
//		return db.BatchGet(ctx, keys)
//	}
//
//	config := batch.NewConstantConfig(&batch.ConfigValues{
//		Delay: 5 * time.Millisecond,
//	})
//	reader, err := sync.NewBatchReader(config, readFunc)
//	if err != nil {
//		return err
//	}
//	defer reader.Close()
//
//	value, err := reader.Get(ctx, "key1")
//
// Basic usage for writing:
//
//	writeFunc := func(ctx context.Context, data map[string]string) error {
//		return db.BatchSet(ctx, data)
//	}
//
//	writer, err := sync.NewBatchWriter(config, writeFunc)
//	if err != nil {
//		return err
//	}
//	defer writer.Close()
//
//	err = writer.Set(ctx, "key1", "value1")
//
// A call whose context is done before its batch is processed is left out of
// the batch. Close stops accepting calls and waits until the ones already
// queued are answered.
package sync
