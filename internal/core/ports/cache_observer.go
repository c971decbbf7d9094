package ports

import "go.trai.ch/qcache/internal/core/domain"

// CacheObserver receives cache activity for metrics.
// Calls happen while the cache lock is held, so implementations must not block.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache_observer.go -destination=mocks/mock_cache_observer.go -package=mocks
type CacheObserver interface {
	Hit(ns domain.Namespace)
	Miss(ns domain.Namespace)
	Evict(ns domain.Namespace)
	Resize(ns domain.Namespace, entries int, size int64)
}
