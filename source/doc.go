// Package source contains implementations of the batch.Source interface
// for common data source scenarios:
//
//   - Channel: a suspending source reading from existing channels
//   - Seq, Seq2, Slice: synchronous sources backed by iterators
//   - Func: a source backed by a plain function
//   - Error: a source that fails, for testing error handling
//   - Nil: a source that produces nothing, for testing timing behavior
//
// Each suspending source returns ctx.Err() when the context passed to Pull
// is done. Synchronous sources only check the context between items.
//
// Basic usage of the Slice source:
//
//	src := source.NewSlice("a", "b", "c")
//	d, err := batch.New(ctx, src, nil)
//	if err != nil {
//		return err
//	}
//	items, err := d.Next(ctx) // [a b c]
package source
