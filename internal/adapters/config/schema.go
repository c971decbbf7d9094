package config

// SettingsFile is the structure of qcache.yaml.
type SettingsFile struct {
	Version string `yaml:"version"`
	// CacheSizeLimit is per namespace: entries under "count", bytes under "bytesize".
	// When omitted it defaults to 500 entries or 64 MiB. 0 disables the bound.
	CacheSizeLimit *int `yaml:"cache_size_limit"`
	// CachePolicy is "count" (alias "length") or "bytesize" (alias "sizeof").
	CachePolicy string      `yaml:"cache_policy"`
	Parallelism *int        `yaml:"parallelism"`
	Storage     *StorageDTO `yaml:"storage"`
}

// StorageDTO selects and configures the storage adapters.
type StorageDTO struct {
	Backend       string `yaml:"backend"`
	Catalog       string `yaml:"catalog"`
	Dataset       string `yaml:"dataset"`
	BadgerPath    string `yaml:"badger_path"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	PostgresDSN   string `yaml:"postgres_dsn"`
}
