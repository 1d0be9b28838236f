package autosave

import (
	"sync"
	"time"
)

// Debouncer runs the latest function scheduled for a key once the key has been
// quiet for the configured delay. Each Schedule for a key restarts its timer.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*entry
	stopped bool

	running sync.WaitGroup
}

type entry struct {
	timer *time.Timer
	fn    func()
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*entry),
	}
}

// Schedule replaces any pending function for key and restarts the delay.
// Calls after Stop are ignored.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
	}

	e := &entry{fn: fn}
	e.timer = time.AfterFunc(d.delay, func() { d.fire(key, e) })
	d.pending[key] = e
}

func (d *Debouncer) fire(key string, e *entry) {
	d.mu.Lock()
	if d.pending[key] != e {
		// superseded by a later Schedule or removed by Cancel/Flush
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	e.fn()
}

// Flush runs the pending function for key right away. It reports whether
// anything was pending.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	e, ok := d.pending[key]
	if ok {
		e.timer.Stop()
		delete(d.pending, key)
		d.running.Add(1)
	}
	d.mu.Unlock()

	if ok {
		defer d.running.Done()
		e.fn()
	}
	return ok
}

// Cancel drops the pending function for key without running it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports how many keys are waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels every pending function. Later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// Drain stops the debouncer like Stop, but runs every pending function instead
// of dropping it, then waits for functions already running to return.
func (d *Debouncer) Drain() {
	d.mu.Lock()
	d.stopped = true
	fns := make([]func(), 0, len(d.pending))
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
		fns = append(fns, e.fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	d.running.Wait()
}
