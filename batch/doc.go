// Package batch contains the core debouncing functionality.
// The main type is Debouncer, which can be created using New. It pulls items
// from a Source implementation and hands them out in batches: every call to
// Next returns the items that arrived since the previous batch.
//
// Batches are formed by time, not by size. Each pull from the source races a
// flush timer of Config's Delay:
//
//   - If the source produces the next item first, the timer is cancelled and
//     the item joins the current batch.
//   - If the timer fires first, the current batch goes to the oldest waiting
//     Next call right away, even though the pull is still in progress.
//
// So a burst of items arriving less than Delay apart ends up in one batch,
// and no caller waits more than Delay past a stall once items are buffered.
//
// A few examples, with Delay = 50ms and one caller calling Next in a loop:
//
//   - Items at 0ms and 10ms, then nothing until 200ms: [a b] is returned at
//     about 60ms, when the timer armed after b fires.
//   - Item c at 200ms, then the source ends: [c] is returned as soon as the
//     end is seen, and the following Next returns ErrDone.
//   - The source fails at 5ms with nothing buffered: Next returns the
//     failure, and so does every later call.
//
// The source is only pulled while a Next call is waiting. Sources are in the
// source package, or you can write your own.
//
// The configuration is read each time the flush timer is armed. This allows
// dynamic Config implementations to change the delay while running.
package batch
