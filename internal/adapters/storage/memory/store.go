// Package memory serves raw market data from a dataset held in memory.
package memory

import (
	"context"
	"slices"
	"time"

	"go.trai.ch/qcache/internal/adapters/storage/dataset"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.FeatureBackend   = (*Store)(nil)
	_ ports.CalendarSource   = (*Store)(nil)
	_ ports.InstrumentSource = (*Store)(nil)
)

// Store implements the three raw data ports over a Dataset. The dataset must not be modified afterwards.
type Store struct {
	ds *domain.Dataset
}

// NewStore wraps ds.
func NewStore(ds *domain.Dataset) *Store {
	if ds == nil {
		ds = domain.NewDataset()
	}
	return &Store{ds: ds}
}

// Open reads the dataset file at path. An empty path yields an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		return NewStore(nil), nil
	}
	ds, err := dataset.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStore(ds), nil
}

// LoadLeaf implements ports.FeatureBackend.
func (s *Store) LoadLeaf(_ context.Context, instrument, field string, start, end int, freq domain.Freq) (domain.Series, error) {
	id := domain.ColumnID{Instrument: instrument, Field: domain.FieldName(field), Freq: freq.String()}
	col, ok := s.ds.Columns[id]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrDataNotFound, "no such column"), "freq", id.Freq)
	}
	if !col.Overlaps(start, end) {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrDataNotFound, "no values in range"), "start", start), "end", end)
	}
	return col.Slice(start, end), nil
}

// LoadCalendar implements ports.CalendarSource.
func (s *Store) LoadCalendar(_ context.Context, freq domain.Freq, future bool) ([]time.Time, error) {
	times, ok := s.ds.Calendar(freq.String(), future)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrDataNotFound, "no calendar"), "freq", freq.String())
	}
	return slices.Clone(times), nil
}

// ListInstruments implements ports.InstrumentSource.
func (s *Store) ListInstruments(_ context.Context, market string) ([]domain.InstrumentSpan, error) {
	spans, ok := s.ds.Instruments[market]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrDataNotFound, "no such market"), "market", market)
	}
	return slices.Clone(spans), nil
}

// Close implements io.Closer.
func (s *Store) Close() error {
	return nil
}
