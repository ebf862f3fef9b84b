package audioengine

import (
	"sync"
	"time"
)

// debouncer coalesces a burst of events into a single delayed firing. Each new Trigger
// replaces any pending timer — "SetNotAlive + replace" in spec.md §5's terms — so a stale
// timer that fires after being replaced is simply not the one still referenced and never
// runs its callback.
type debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
}

func newDebouncer(d time.Duration) *debouncer {
	return &debouncer{duration: d}
}

// Trigger cancels any pending callback and schedules fn to run after the debounce duration.
func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Stop cancels any pending callback without scheduling a new one.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
