package cache

import (
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
)

// Registry holds the calendar, instrument and feature caches of one process.
// The three caches share a size limit and policy taken from the settings.
type Registry struct {
	calendar   *BoundedCache
	instrument *BoundedCache
	feature    *BoundedCache
}

// NewRegistry builds the three caches eagerly. It fails with domain.ErrInvalidPolicy
// when the settings name an unknown policy.
func NewRegistry(settings *domain.Settings, observer ports.CacheObserver) (*Registry, error) {
	policy, err := settings.Policy()
	if err != nil {
		return nil, err
	}

	limit := settings.CacheSizeLimit
	return &Registry{
		calendar:   NewBoundedCache(domain.NamespaceCalendar, limit, policy, observer),
		instrument: NewBoundedCache(domain.NamespaceInstrument, limit, policy, observer),
		feature:    NewBoundedCache(domain.NamespaceFeature, limit, policy, observer),
	}, nil
}

// Namespace returns the cache registered under name.
func (r *Registry) Namespace(name string) (*BoundedCache, error) {
	ns, err := domain.ParseNamespace(name)
	if err != nil {
		return nil, err
	}
	return r.get(ns), nil
}

// Calendar returns the calendar cache.
func (r *Registry) Calendar() *BoundedCache { return r.calendar }

// Instrument returns the instrument cache.
func (r *Registry) Instrument() *BoundedCache { return r.instrument }

// Feature returns the feature cache.
func (r *Registry) Feature() *BoundedCache { return r.feature }

// ClearAll empties every namespace. All three locks are held together,
// so no caller observes one namespace cleared while another still holds entries.
func (r *Registry) ClearAll() {
	unlock := r.lockAll()
	defer unlock()

	for _, c := range r.all() {
		c.clearLocked()
	}
}

// Reset applies new settings to every namespace and clears them.
// The caches keep their identity, so references held by callers stay valid.
func (r *Registry) Reset(settings *domain.Settings) error {
	policy, err := settings.Policy()
	if err != nil {
		return err
	}

	unlock := r.lockAll()
	defer unlock()

	for _, c := range r.all() {
		c.reconfigureLocked(settings.CacheSizeLimit, policy)
	}
	return nil
}

// Stats returns the counters of every namespace.
func (r *Registry) Stats() map[domain.Namespace]Stats {
	stats := make(map[domain.Namespace]Stats, len(domain.Namespaces))
	for _, c := range r.all() {
		stats[c.ns] = c.Stats()
	}
	return stats
}

func (r *Registry) get(ns domain.Namespace) *BoundedCache {
	switch ns {
	case domain.NamespaceCalendar:
		return r.calendar
	case domain.NamespaceInstrument:
		return r.instrument
	default:
		return r.feature
	}
}

// all returns the caches in domain.Namespaces order, which is also the lock order.
func (r *Registry) all() []*BoundedCache {
	return []*BoundedCache{r.calendar, r.instrument, r.feature}
}

func (r *Registry) lockAll() func() {
	caches := r.all()
	for _, c := range caches {
		c.mu.Lock()
	}
	return func() {
		for i := len(caches) - 1; i >= 0; i-- {
			caches[i].mu.Unlock()
		}
	}
}
