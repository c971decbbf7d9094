package domain

import (
	"runtime"

	"go.trai.ch/zerr"
)

// Setting keys accepted by Settings.Get.
const (
	KeyCacheSizeLimit = "cache_size_limit"
	KeyCachePolicy    = "cache_policy"
	KeyParallelism    = "parallelism"
	KeyBackend        = "storage.backend"
	KeyCatalog        = "storage.catalog"
	KeyDatasetPath    = "storage.dataset"
	KeyBadgerPath     = "storage.badger_path"
	KeyClickHouseDSN  = "storage.clickhouse_dsn"
	KeyPostgresDSN    = "storage.postgres_dsn"
)

// Storage backend names.
const (
	BackendMemory     = "memory"
	BackendBadger     = "badger"
	BackendClickHouse = "clickhouse"
	BackendPostgres   = "postgres"
)

// Per-namespace limits used when none is configured. DefaultCacheSizeLimit counts entries;
// DefaultByteSizeLimit applies under the bytesize policy.
const (
	DefaultCacheSizeLimit = 500
	DefaultByteSizeLimit  = 64 << 20
)

// DefaultLimit returns the unconfigured limit for p.
func DefaultLimit(p Policy) int {
	if p == PolicyByteSize {
		return DefaultByteSizeLimit
	}
	return DefaultCacheSizeLimit
}

// Settings holds the process-wide options consulted by the cache and the storage adapters.
type Settings struct {
	// CacheSizeLimit bounds each cache namespace, in entries or bytes depending on CachePolicy.
	// Non-positive means unbounded.
	CacheSizeLimit int
	// CachePolicy is "count" or "bytesize".
	CachePolicy string
	// Parallelism bounds concurrent sibling evaluations per operator.
	Parallelism int
	Storage     StorageSettings
}

// StorageSettings selects and configures the raw data adapters.
type StorageSettings struct {
	// Backend serves leaf features: memory, badger or clickhouse.
	Backend string
	// Catalog serves calendars and instrument listings: memory, badger or postgres.
	Catalog       string
	DatasetPath   string
	BadgerPath    string
	ClickHouseDSN string
	PostgresDSN   string
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() *Settings {
	return &Settings{
		CacheSizeLimit: DefaultCacheSizeLimit,
		CachePolicy:    PolicyCount.String(),
		Parallelism:    runtime.NumCPU(),
		Storage: StorageSettings{
			Backend:    BackendMemory,
			Catalog:    BackendMemory,
			BadgerPath: DefaultStorePath(),
		},
	}
}

// Policy parses CachePolicy.
func (s *Settings) Policy() (Policy, error) {
	return ParsePolicy(s.CachePolicy)
}

// Validate checks every enumerated field.
func (s *Settings) Validate() error {
	if _, err := s.Policy(); err != nil {
		return err
	}
	if s.Parallelism < 1 {
		return zerr.With(zerr.Wrap(ErrInvalidSetting, "parallelism must be at least 1"), KeyParallelism, s.Parallelism)
	}
	switch s.Storage.Backend {
	case BackendMemory, BackendBadger, BackendClickHouse:
	default:
		return zerr.With(zerr.Wrap(ErrUnknownBackend, "feature backend rejected"), KeyBackend, s.Storage.Backend)
	}
	switch s.Storage.Catalog {
	case BackendMemory, BackendBadger, BackendPostgres:
	default:
		return zerr.With(zerr.Wrap(ErrUnknownBackend, "catalog backend rejected"), KeyCatalog, s.Storage.Catalog)
	}
	return nil
}

// Get returns the value stored under key, or def when the key is unknown or unset.
func (s *Settings) Get(key string, def any) any {
	var v any
	switch key {
	case KeyCacheSizeLimit:
		v = s.CacheSizeLimit
	case KeyCachePolicy:
		v = s.CachePolicy
	case KeyParallelism:
		v = s.Parallelism
	case KeyBackend:
		v = s.Storage.Backend
	case KeyCatalog:
		v = s.Storage.Catalog
	case KeyDatasetPath:
		v = s.Storage.DatasetPath
	case KeyBadgerPath:
		v = s.Storage.BadgerPath
	case KeyClickHouseDSN:
		v = s.Storage.ClickHouseDSN
	case KeyPostgresDSN:
		v = s.Storage.PostgresDSN
	default:
		return def
	}
	if str, ok := v.(string); ok && str == "" {
		return def
	}
	return v
}
