// Package watcher reloads settings when the settings file changes on disk.
package watcher

import (
	"slices"
	"sync"
	"time"
	"unique"

	"go.trai.ch/qcache/internal/core/ports"
)

// Debouncer coalesces bursts of watch events. Editors typically write a file in
// several steps; only the last operation seen for each path is delivered.
// Batches are delivered one at a time, in the order they were drained.
type Debouncer struct {
	mu       sync.Mutex
	deliver  sync.Mutex
	pending  map[unique.Handle[string]]ports.WatchOp
	timer    *time.Timer
	window   time.Duration
	callback func(events []ports.WatchEvent)
}

// NewDebouncer creates a new debouncer with the given time window and callback.
func NewDebouncer(window time.Duration, callback func(events []ports.WatchEvent)) *Debouncer {
	return &Debouncer{
		pending:  make(map[unique.Handle[string]]ports.WatchOp),
		window:   window,
		callback: callback,
	}
}

// Add records an event and restarts the window.
func (d *Debouncer) Add(event ports.WatchEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[unique.Make(event.Path)] = event.Operation

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// drainLocked empties the pending set, returning its events sorted by path.
func (d *Debouncer) drainLocked() []ports.WatchEvent {
	events := make([]ports.WatchEvent, 0, len(d.pending))
	for handle, op := range d.pending {
		events = append(events, ports.WatchEvent{Path: handle.Value(), Operation: op})
	}
	slices.SortFunc(events, func(a, b ports.WatchEvent) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	d.pending = make(map[unique.Handle[string]]ports.WatchOp)
	return events
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	d.run(d.drainLocked())
}

// run delivers events and releases d.mu. deliver is taken before d.mu is released,
// so a batch drained later cannot overtake this one.
func (d *Debouncer) run(events []ports.WatchEvent) {
	d.deliver.Lock()
	d.mu.Unlock()
	defer d.deliver.Unlock()

	if len(events) > 0 && d.callback != nil {
		d.callback(events)
	}
}

// Flush delivers pending events synchronously. It does nothing if the timer already fired.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		if !d.timer.Stop() {
			d.mu.Unlock()
			return
		}
		d.timer = nil
	}
	d.run(d.drainLocked())
}

// Stop discards pending events and waits for a delivery already in progress.
// No callback runs after Stop returns unless Add is called again.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[unique.Handle[string]]ports.WatchOp)
	d.mu.Unlock()

	d.deliver.Lock()
	defer d.deliver.Unlock()
}
