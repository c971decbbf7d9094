// Package storage opens the raw data backends selected by the settings.
package storage

import (
	"context"
	"errors"
	"io"

	"go.trai.ch/qcache/internal/adapters/storage/badger"
	"go.trai.ch/qcache/internal/adapters/storage/clickhouse"
	"go.trai.ch/qcache/internal/adapters/storage/memory"
	"go.trai.ch/qcache/internal/adapters/storage/postgres"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Importer loads a dataset into a persistent backend.
type Importer interface {
	Import(ctx context.Context, ds *domain.Dataset) error
}

// Backends holds the opened raw data ports.
type Backends struct {
	Features    ports.FeatureBackend
	Calendars   ports.CalendarSource
	Instruments ports.InstrumentSource
	// Importers lists each persistent store once, in the order it was opened.
	Importers []Importer

	closers []io.Closer
}

// Close closes every opened store.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i].Close())
	}
	return errors.Join(errs...)
}

// Opener opens backends on demand.
type Opener struct {
	Logger ports.Logger
}

// NewOpener creates an Opener. logger receives the embedded store's warnings.
func NewOpener(logger ports.Logger) *Opener {
	return &Opener{Logger: logger}
}

// Open connects the feature backend and the catalog named by st.
// A backend and catalog of the same kind share one connection.
func (o *Opener) Open(ctx context.Context, st domain.StorageSettings) (*Backends, error) {
	b := &Backends{}
	var (
		mem *memory.Store
		bdg *badger.Store
	)

	openMemory := func() (*memory.Store, error) {
		if mem != nil {
			return mem, nil
		}
		s, err := memory.Open(st.DatasetPath)
		if err != nil {
			return nil, err
		}
		mem = s
		b.closers = append(b.closers, s)
		return s, nil
	}
	openBadger := func() (*badger.Store, error) {
		if bdg != nil {
			return bdg, nil
		}
		cfg := badger.DefaultConfig(st.BadgerPath)
		cfg.Logger = o.Logger
		s, err := badger.Open(cfg)
		if err != nil {
			return nil, err
		}
		bdg = s
		b.closers = append(b.closers, s)
		b.Importers = append(b.Importers, s)
		return s, nil
	}

	fail := func(err error) (*Backends, error) {
		_ = b.Close()
		return nil, err
	}

	switch st.Backend {
	case domain.BackendMemory:
		s, err := openMemory()
		if err != nil {
			return fail(err)
		}
		b.Features = s
	case domain.BackendBadger:
		s, err := openBadger()
		if err != nil {
			return fail(err)
		}
		b.Features = s
	case domain.BackendClickHouse:
		s, err := clickhouse.Open(ctx, st.ClickHouseDSN)
		if err != nil {
			return fail(err)
		}
		b.closers = append(b.closers, s)
		b.Importers = append(b.Importers, s)
		b.Features = s
	default:
		return fail(zerr.With(zerr.Wrap(domain.ErrUnknownBackend, "feature backend rejected"), domain.KeyBackend, st.Backend))
	}

	switch st.Catalog {
	case domain.BackendMemory:
		s, err := openMemory()
		if err != nil {
			return fail(err)
		}
		b.Calendars, b.Instruments = s, s
	case domain.BackendBadger:
		s, err := openBadger()
		if err != nil {
			return fail(err)
		}
		b.Calendars, b.Instruments = s, s
	case domain.BackendPostgres:
		s, err := postgres.Open(ctx, st.PostgresDSN)
		if err != nil {
			return fail(err)
		}
		b.closers = append(b.closers, s)
		b.Importers = append(b.Importers, s)
		b.Calendars, b.Instruments = s, s
	default:
		return fail(zerr.With(zerr.Wrap(domain.ErrUnknownBackend, "catalog backend rejected"), domain.KeyCatalog, st.Catalog))
	}

	return b, nil
}
