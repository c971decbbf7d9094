package server_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/adapters/metrics"
	"go.trai.ch/qcache/internal/adapters/server"
	"go.trai.ch/qcache/internal/adapters/storage/memory"
	"go.trai.ch/qcache/internal/adapters/telemetry"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports/mocks"
	"go.trai.ch/qcache/internal/engine/cache"
	"go.trai.ch/qcache/internal/engine/calendar"
	"go.trai.ch/qcache/internal/engine/evaluator"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	srv    *server.Server
	logger *mocks.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := memory.Open("../storage/dataset/testdata/market.yaml")
	require.NoError(t, err)

	collector := metrics.NewCollector()
	registry, err := cache.NewRegistry(domain.DefaultSettings(), collector)
	require.NoError(t, err)

	tracer := telemetry.NewNoOpTracer()
	index := calendar.NewIndex(store, registry, tracer)
	driver := evaluator.NewDriver(registry, store, index, store, tracer, 2)

	logger := mocks.NewMockLogger(gomock.NewController(t))
	return &fixture{
		srv:    server.New(driver, collector.Handler(), logger, nil),
		logger: logger,
	}
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func ptr(v float64) *float64 { return &v }

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestEval_Instrument(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/eval?expr=Sub($close,$open)&instrument=SH600000")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[server.EvalResponse](t, w)
	assert.Equal(t, "Sub($close,$open)", resp.Expression)
	assert.Equal(t, "day", resp.Freq)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "SH600000", resp.Results[0].Instrument)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-08"}, resp.Results[0].Times)
	assert.Equal(t, []*float64{ptr(1), ptr(1), ptr(1), ptr(1), ptr(1)}, resp.Results[0].Values)
}

func TestEval_RangeAndNaN(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/eval?expr=$$roe&instrument=SH600000&start=2024-01-03&end=2024-01-05")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[server.EvalResponse](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"2024-01-03", "2024-01-04", "2024-01-05"}, resp.Results[0].Times)
	assert.Equal(t, []*float64{nil, ptr(0.1), nil}, resp.Results[0].Values)
}

func TestEval_Market(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/eval?expr=$close&market=csi300&start=2024-01-02&end=2024-01-08")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[server.EvalResponse](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "SH600000", resp.Results[0].Instrument)
	assert.Equal(t, []*float64{ptr(2), ptr(3), ptr(4), ptr(5), ptr(6)}, resp.Results[0].Values)
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"unknown operator", "/v1/eval?expr=Foo($close)&instrument=SH600000", http.StatusBadRequest},
		{"missing expression", "/v1/eval?instrument=SH600000", http.StatusBadRequest},
		{"bad frequency", "/v1/eval?expr=$close&instrument=SH600000&freq=fortnight", http.StatusBadRequest},
		{"bad timestamp", "/v1/eval?expr=$close&instrument=SH600000&start=yesterday", http.StatusBadRequest},
		{"missing field", "/v1/eval?expr=$volume&instrument=SH600000", http.StatusNotFound},
		{"unknown market", "/v1/eval?expr=$close&market=nasdaq", http.StatusNotFound},
		{"future start", "/v1/eval?expr=$close&instrument=SH600000&start=2030-01-01", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(t, http.MethodGet, tt.target)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.NotEmpty(t, decode[server.ErrorResponse](t, w).Error)
		})
	}
}

func TestCalendar(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/calendar?start=2024-01-03&end=2024-01-05")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[server.CalendarResponse](t, w)
	assert.Equal(t, []string{"2024-01-03", "2024-01-04", "2024-01-05"}, resp.Times)

	w = f.do(t, http.MethodGet, "/v1/calendar?future=true")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[server.CalendarResponse](t, w).Times, 7)

	w = f.do(t, http.MethodGet, "/v1/calendar?future=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstruments(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/instruments?market=csi300")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[server.InstrumentsResponse](t, w)
	assert.Equal(t, "csi300", resp.Market)
	assert.Equal(t, []string{"SH600000", "SH600001"}, resp.Instruments)

	w = f.do(t, http.MethodGet, "/v1/instruments?market=csi300&start=2024-01-01")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"SH600000"}, decode[server.InstrumentsResponse](t, w).Instruments)
}

func TestStatusAndClear(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/eval?expr=$close&instrument=SH600000").Code)

	status := decode[server.StatusResponse](t, f.do(t, http.MethodGet, "/v1/status"))
	assert.Positive(t, status.Caches[string(domain.NamespaceFeature)].Entries)
	assert.Positive(t, status.Caches[string(domain.NamespaceCalendar)].Entries)

	w := f.do(t, http.MethodPost, "/v1/cache/clear")
	assert.Equal(t, http.StatusNoContent, w.Code)

	status = decode[server.StatusResponse](t, f.do(t, http.MethodGet, "/v1/status"))
	for ns, st := range status.Caches {
		assert.Zero(t, st.Entries, ns)
	}
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/eval?expr=$close&instrument=SH600000").Code)

	w := f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "qcache_cache_misses_total")
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	f := newFixture(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.Serve(ctx, lis) }()

	resp, err := http.Get("http://" + lis.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_StopsOnIdle(t *testing.T) {
	lc := server.NewLifecycle(50 * time.Millisecond)
	srv := server.New(nil, nil, nil, lc)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), lis) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("idle server did not stop")
	}
}
