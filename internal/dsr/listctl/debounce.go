package listctl

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of triggers into a single callback fired after
// the input has been quiet for the settle duration. Each input stream owns
// one Debouncer; a new trigger replaces the pending one.
type Debouncer struct {
	mu     sync.Mutex
	settle time.Duration
	timer  *time.Timer
}

// NewDebouncer returns a debouncer with the given settle duration.
func NewDebouncer(settle time.Duration) *Debouncer {
	return &Debouncer{settle: settle}
}

// Trigger schedules fn to run after the settle duration, cancelling any
// previously scheduled call. The returned handle cancels this call; it is
// safe to invoke after the call has fired or been superseded.
func (d *Debouncer) Trigger(fn func()) (cancel func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	t := time.AfterFunc(d.settle, fn)
	d.timer = t

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		t.Stop()
		if d.timer == t {
			d.timer = nil
		}
	}
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
