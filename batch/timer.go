package batch

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// flushTimer is a one-shot, cancellable delayed callback. It is only used
// with the Debouncer's lock held.
//
// Each arm gets a new generation. The callback receives its generation and
// must call fired with it before acting, which discards callbacks from
// timers that were cancelled after they had already started to fire.
type flushTimer struct {
	clock clockwork.Clock
	timer clockwork.Timer
	gen   uint64
}

func (f *flushTimer) armed() bool {
	return f.timer != nil
}

// arm schedules onFire to run after delay. It returns ErrTimerArmed if the
// timer has not been cancelled or fired since the last arm.
func (f *flushTimer) arm(delay time.Duration, onFire func(gen uint64)) error {
	if f.timer != nil {
		return ErrTimerArmed
	}

	f.gen++
	gen := f.gen
	f.timer = f.clock.AfterFunc(delay, func() {
		// The clock may call us while holding its own locks, and onFire
		// takes the Debouncer's lock, which is held around Stop.
		go onFire(gen)
	})
	return nil
}

// cancel stops the timer if it is armed. It is a no-op otherwise.
func (f *flushTimer) cancel() {
	if f.timer == nil {
		return
	}
	f.timer.Stop()
	f.timer = nil
}

// fired reports whether gen belongs to the armed timer, and if so returns
// the controller to the unarmed state.
func (f *flushTimer) fired(gen uint64) bool {
	if f.timer == nil || gen != f.gen {
		return false
	}
	f.timer = nil
	return true
}
