package watcher

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
)

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// Resetter accepts a new set of settings. *cache.Registry satisfies it.
type Resetter interface {
	Reset(settings *domain.Settings) error
}

// Reloader re-reads the settings file whenever it changes and hands the result to a Resetter.
// A file that fails to load is reported and the previous settings stay in effect.
type Reloader struct {
	mu      sync.Mutex
	watcher ports.Watcher
	loader  ports.SettingsLoader
	logger  ports.Logger
	target  Resetter
	window  time.Duration
}

// NewReloader creates a Reloader with the default debounce window.
func NewReloader(w ports.Watcher, loader ports.SettingsLoader, logger ports.Logger, target Resetter) *Reloader {
	return &Reloader{
		watcher: w,
		loader:  loader,
		logger:  logger,
		target:  target,
		window:  DefaultDebounceWindow,
	}
}

// Run watches path until ctx ends or the watcher stops. Events still waiting in the
// debounce window are applied before it returns, and no reload happens afterwards.
func (r *Reloader) Run(ctx context.Context, path string) error {
	if err := r.watcher.Start(ctx, path); err != nil {
		return err
	}

	d := NewDebouncer(r.window, r.Handle)
	for event := range r.watcher.Events() {
		d.Add(event)
	}
	d.Flush()
	d.Stop()
	return nil
}

// Handle applies a batch of debounced events. Concurrent calls are serialized.
func (r *Reloader) Handle(events []ports.WatchEvent) {
	if len(events) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	last := events[len(events)-1]

	var settings *domain.Settings
	switch last.Operation {
	case ports.OpRemove, ports.OpRename:
		r.logger.Warn(domain.SettingsFileName + " removed, falling back to defaults")
		defaults, err := r.loader.Defaults()
		if err != nil {
			r.logger.Error(err)
			return
		}
		settings = defaults
	default:
		loaded, err := r.loader.LoadFile(last.Path)
		if err != nil {
			r.logger.Error(err)
			return
		}
		settings = loaded
	}

	if err := r.target.Reset(settings); err != nil {
		r.logger.Error(err)
		return
	}
	r.logger.Info("reloaded settings from " + last.Path)
}
