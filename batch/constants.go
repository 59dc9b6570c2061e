package batch

import "time"

// DefaultDelay is the debounce window used when a Debouncer is created with
// a nil Config.
const DefaultDelay = 100 * time.Millisecond

// defaultBatchCapacity is the initial capacity of a fresh batch.
const defaultBatchCapacity = 16
