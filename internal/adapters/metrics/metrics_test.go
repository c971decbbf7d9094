package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/adapters/metrics"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/engine/cache"
)

func TestCollector_CountsCacheActivity(t *testing.T) {
	c := metrics.NewCollector()
	settings := domain.DefaultSettings()
	settings.CacheSizeLimit = 2

	registry, err := cache.NewRegistry(settings, c)
	require.NoError(t, err)

	feature := registry.Feature()
	a := domain.FeatureKey("SH600000", "$close", 0, 4, domain.Day)
	b := domain.FeatureKey("SH600000", "$open", 0, 4, domain.Day)
	d := domain.FeatureKey("SH600000", "$high", 0, 4, domain.Day)

	_, _ = feature.Get(a)
	feature.Put(a, domain.Series{1})
	_, _ = feature.Get(a)
	feature.Put(b, domain.Series{2})
	feature.Put(d, domain.Series{3})

	ns := string(domain.NamespaceFeature)
	assert.InDelta(t, 1, testutil.ToFloat64(c.HitsTotal.WithLabelValues(ns)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.MissesTotal.WithLabelValues(ns)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.EvictionsTotal.WithLabelValues(ns)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.Entries.WithLabelValues(ns)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.SizeBytes.WithLabelValues(ns)), 0)

	registry.ClearAll()
	assert.InDelta(t, 0, testutil.ToFloat64(c.Entries.WithLabelValues(ns)), 0)
}

func TestCollector_NamespacesAreLabelled(t *testing.T) {
	c := metrics.NewCollector()
	c.Hit(domain.NamespaceCalendar)
	c.Hit(domain.NamespaceCalendar)
	c.Hit(domain.NamespaceInstrument)

	assert.InDelta(t, 2, testutil.ToFloat64(c.HitsTotal.WithLabelValues("calendar")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.HitsTotal.WithLabelValues("instrument")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.HitsTotal))
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.NewCollector()
	c.Miss(domain.NamespaceFeature)
	c.Resize(domain.NamespaceFeature, 3, 96)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `qcache_cache_misses_total{namespace="feature"} 1`)
	assert.Contains(t, string(body), `qcache_cache_entries{namespace="feature"} 3`)
	assert.Contains(t, string(body), `qcache_cache_size{namespace="feature"} 96`)
	assert.Contains(t, string(body), "go_goroutines")
}
