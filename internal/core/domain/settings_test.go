package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestDefaultSettings(t *testing.T) {
	s := domain.DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, domain.DefaultCacheSizeLimit, s.CacheSizeLimit)

	p, err := s.Policy()
	require.NoError(t, err)
	assert.Equal(t, domain.PolicyCount, p)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Settings)
		want   error
	}{
		{"policy", func(s *domain.Settings) { s.CachePolicy = "fifo" }, domain.ErrInvalidPolicy},
		{"parallelism", func(s *domain.Settings) { s.Parallelism = 0 }, domain.ErrInvalidSetting},
		{"backend", func(s *domain.Settings) { s.Storage.Backend = domain.BackendPostgres }, domain.ErrUnknownBackend},
		{"catalog", func(s *domain.Settings) { s.Storage.Catalog = domain.BackendClickHouse }, domain.ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings()
			tt.mutate(s)
			require.ErrorIs(t, s.Validate(), tt.want)
		})
	}
}

func TestSettings_ValidateMetadata(t *testing.T) {
	s := domain.DefaultSettings()
	s.Storage.Backend = "redis"

	var zErr *zerr.Error
	require.ErrorAs(t, s.Validate(), &zErr)
	assert.Equal(t, "redis", zErr.Metadata()[domain.KeyBackend])
}

func TestSettings_Get(t *testing.T) {
	s := domain.DefaultSettings()
	s.Storage.ClickHouseDSN = "clickhouse://localhost"

	assert.Equal(t, domain.DefaultCacheSizeLimit, s.Get(domain.KeyCacheSizeLimit, 0))
	assert.Equal(t, "count", s.Get(domain.KeyCachePolicy, ""))
	assert.Equal(t, "clickhouse://localhost", s.Get(domain.KeyClickHouseDSN, ""))
	assert.Equal(t, "fallback", s.Get(domain.KeyPostgresDSN, "fallback"))
	assert.Equal(t, 42, s.Get("no.such.key", 42))
}
