// Package debounce groups the items of a pull-based source into batches by
// time. The main type is batch.Debouncer, which can be created using
// batch.New. It pulls items from an implementation of the batch.Source
// interface only while a consumer is waiting, and hands out everything that
// arrived less than the configured delay apart as one batch.
//
// There is a single configuration parameter, Delay. While the source keeps
// producing items faster than Delay, they are added to the current batch.
// As soon as the source takes longer than Delay to produce the next item,
// the items read so far are delivered without waiting for it.
//
// A few examples, with Delay = 50ms:
//
// The source produces a at 0ms and b at 10ms, then stalls. [a b] is
// delivered at about 60ms.
//
// The source produces a, b and c synchronously and then ends. [a b c] is
// delivered right away, and the next request gets batch.ErrDone.
//
// The source fails at 5ms. The pending request and every later one get
// the failure.
//
// The subpackages are:
//
//   - batch: the Debouncer, the Source contract, configuration, errors,
//     logging and statistics hooks.
//   - source: Source implementations over iterators, slices, channels and
//     functions.
//   - sync: BatchReader, BatchWriter and Doer, which coalesce concurrent
//     blocking calls into batched ones.
//   - logging: zap and zerolog adapters for batch.Logger.
//   - metrics: Prometheus and OpenTelemetry stats collectors.
//
// The debounce command in cmd/debounce batches lines from standard input.
package debounce
