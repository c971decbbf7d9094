package memory_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/adapters/storage/memory"
	"go.trai.ch/qcache/internal/core/domain"
)

func testStore(t *testing.T) *memory.Store {
	t.Helper()
	ds := domain.NewDataset()
	ds.Calendars["day"] = []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	ds.FutureCalendars["day"] = []time.Time{time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)}
	ds.Instruments["csi300"] = []domain.InstrumentSpan{{Code: "SH600000"}}
	ds.Columns[domain.ColumnID{Instrument: "SH600000", Field: "close", Freq: "day"}] = domain.Column{
		Start:  1,
		Values: domain.Series{10, 11, 12},
	}
	ds.Columns[domain.ColumnID{Instrument: "SH600000", Field: "$roe", Freq: "day"}] = domain.Column{
		Values: domain.Series{0.5},
	}
	return memory.NewStore(ds)
}

func TestStore_LoadLeaf(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	got, err := s.LoadLeaf(ctx, "SH600000", "$close", 0, 4, domain.Day)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, domain.Series{10, 11, 12}, got[1:4])
	assert.True(t, math.IsNaN(got[4]))

	roe, err := s.LoadLeaf(ctx, "SH600000", "$$roe", 0, 0, domain.Day)
	require.NoError(t, err)
	assert.Equal(t, domain.Series{0.5}, roe)
}

func TestStore_LoadLeaf_NotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.LoadLeaf(ctx, "SH600000", "$volume", 0, 1, domain.Day)
	require.ErrorIs(t, err, domain.ErrDataNotFound)

	_, err = s.LoadLeaf(ctx, "SH600000", "$close", 0, 1, domain.MustParseFreq("5min"))
	require.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestStore_LoadCalendar(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	past, err := s.LoadCalendar(ctx, domain.Day, false)
	require.NoError(t, err)
	assert.Len(t, past, 2)

	future, err := s.LoadCalendar(ctx, domain.Day, true)
	require.NoError(t, err)
	assert.Len(t, future, 3)

	_, err = s.LoadCalendar(ctx, domain.MustParseFreq("week"), false)
	require.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestStore_ListInstruments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	spans, err := s.ListInstruments(ctx, "csi300")
	require.NoError(t, err)
	assert.Equal(t, []domain.InstrumentSpan{{Code: "SH600000"}}, spans)

	_, err = s.ListInstruments(ctx, "sp500")
	require.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestOpen(t *testing.T) {
	s, err := memory.Open("")
	require.NoError(t, err)
	_, err = s.ListInstruments(context.Background(), "all")
	require.ErrorIs(t, err, domain.ErrDataNotFound)

	s, err = memory.Open(filepath.Join("..", "dataset", "testdata", "market.yaml"))
	require.NoError(t, err)
	got, err := s.LoadLeaf(context.Background(), "SH000300", "$close", 1, 2, domain.Day)
	require.NoError(t, err)
	assert.Equal(t, domain.Series{20, 30}, got)

	_, err = memory.Open(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, domain.ErrStorageOpenFailed)
}

func TestStore_LoadLeaf_OutsideColumn(t *testing.T) {
	s := testStore(t)
	_, err := s.LoadLeaf(context.Background(), "SH600000", "$close", 5, 9, domain.Day)
	require.ErrorIs(t, err, domain.ErrDataNotFound)
}
