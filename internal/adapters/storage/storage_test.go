package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/adapters/storage"
	"go.trai.ch/qcache/internal/adapters/storage/dataset"
	"go.trai.ch/qcache/internal/core/domain"
)

var marketFile = filepath.Join("dataset", "testdata", "market.yaml")

func TestOpener_Memory(t *testing.T) {
	b, err := storage.NewOpener(nil).Open(context.Background(), domain.StorageSettings{
		Backend:     domain.BackendMemory,
		Catalog:     domain.BackendMemory,
		DatasetPath: marketFile,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.Same(t, b.Features, b.Calendars)
	assert.Empty(t, b.Importers)

	cal, err := b.Calendars.LoadCalendar(context.Background(), domain.Day, false)
	require.NoError(t, err)
	assert.Len(t, cal, 5)
}

func TestOpener_BadgerImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := domain.StorageSettings{
		Backend:    domain.BackendBadger,
		Catalog:    domain.BackendBadger,
		BadgerPath: filepath.Join(t.TempDir(), "store"),
	}

	b, err := storage.NewOpener(nil).Open(ctx, st)
	require.NoError(t, err)
	require.Len(t, b.Importers, 1)

	ds, err := dataset.ReadFile(marketFile)
	require.NoError(t, err)
	require.NoError(t, b.Importers[0].Import(ctx, ds))
	require.NoError(t, b.Close())

	b, err = storage.NewOpener(nil).Open(ctx, st)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	got, err := b.Features.LoadLeaf(ctx, "SH600000", "$close", 0, 4, domain.Day)
	require.NoError(t, err)
	assert.Equal(t, domain.Series{2, 3, 4, 5, 6}, got)

	spans, err := b.Instruments.ListInstruments(ctx, "csi300")
	require.NoError(t, err)
	assert.Len(t, spans, 2)
}

func TestOpener_Errors(t *testing.T) {
	tests := []struct {
		name string
		st   domain.StorageSettings
		want error
	}{
		{
			name: "unknown backend",
			st:   domain.StorageSettings{Backend: "redis", Catalog: domain.BackendMemory},
			want: domain.ErrUnknownBackend,
		},
		{
			name: "unknown catalog",
			st:   domain.StorageSettings{Backend: domain.BackendMemory, Catalog: "mysql"},
			want: domain.ErrUnknownBackend,
		},
		{
			name: "missing dataset",
			st: domain.StorageSettings{
				Backend:     domain.BackendMemory,
				Catalog:     domain.BackendMemory,
				DatasetPath: "does-not-exist.yaml",
			},
			want: domain.ErrStorageOpenFailed,
		},
		{
			name: "malformed clickhouse dsn",
			st:   domain.StorageSettings{Backend: domain.BackendClickHouse, Catalog: domain.BackendMemory},
			want: domain.ErrInvalidSetting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storage.NewOpener(nil).Open(context.Background(), tt.st)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
