// Package postgres serves trading calendars and instrument listings from PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.CalendarSource   = (*Store)(nil)
	_ ports.InstrumentSource = (*Store)(nil)
)

// Schema creates the catalog tables.
const Schema = `
	CREATE TABLE IF NOT EXISTS qcache_calendar (
		freq   TEXT        NOT NULL,
		future BOOLEAN     NOT NULL,
		ts     TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (freq, future, ts)
	);
	CREATE TABLE IF NOT EXISTS qcache_instruments (
		market     TEXT NOT NULL,
		code       TEXT NOT NULL,
		start_time TIMESTAMPTZ,
		end_time   TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS qcache_instruments_market ON qcache_instruments (market);
`

// Store implements ports.CalendarSource and ports.InstrumentSource over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrInvalidSetting, "malformed postgres dsn")
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrStorageOpenFailed, err.Error())
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, zerr.With(zerr.Wrap(domain.ErrStorageOpenFailed, err.Error()), "host", config.ConnConfig.Host)
	}
	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, zerr.Wrap(domain.ErrStorageOpenFailed, err.Error())
	}
	return &Store{pool: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// LoadCalendar implements ports.CalendarSource. Future days are included when future is set.
func (s *Store) LoadCalendar(ctx context.Context, freq domain.Freq, future bool) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ts
		FROM qcache_calendar
		WHERE freq = $1 AND (NOT future OR $2)
		ORDER BY ts ASC
	`, freq.String(), future)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStorageQueryFailed, err.Error()), "freq", freq.String())
	}

	times, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (time.Time, error) {
		var ts time.Time
		err := row.Scan(&ts)
		return ts.UTC(), err
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStorageQueryFailed, err.Error()), "freq", freq.String())
	}
	if len(times) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrDataNotFound, "no calendar"), "freq", freq.String())
	}
	return times, nil
}

// ListInstruments implements ports.InstrumentSource.
func (s *Store) ListInstruments(ctx context.Context, market string) ([]domain.InstrumentSpan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT code, start_time, end_time
		FROM qcache_instruments
		WHERE market = $1
		ORDER BY code ASC, start_time ASC NULLS FIRST
	`, market)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStorageQueryFailed, err.Error()), "market", market)
	}

	spans, err := pgx.CollectRows(rows, scanSpan)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStorageQueryFailed, err.Error()), "market", market)
	}
	if len(spans) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrDataNotFound, "no such market"), "market", market)
	}
	return spans, nil
}

func scanSpan(row pgx.CollectableRow) (domain.InstrumentSpan, error) {
	var (
		span       domain.InstrumentSpan
		start, end pgtype.Timestamptz
	)
	if err := row.Scan(&span.Code, &start, &end); err != nil {
		return domain.InstrumentSpan{}, err
	}
	if start.Valid {
		span.Start = start.Time.UTC()
	}
	if end.Valid {
		span.End = end.Time.UTC()
	}
	return span, nil
}

// Import replaces the calendars and listings named in ds inside one transaction.
// Feature columns are ignored.
func (s *Store) Import(ctx context.Context, ds *domain.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return zerr.Wrap(domain.ErrStorageWriteFailed, err.Error())
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := copyCalendars(ctx, tx, ds.Calendars, false); err != nil {
		return err
	}
	if err := copyCalendars(ctx, tx, ds.FutureCalendars, true); err != nil {
		return err
	}

	for market, spans := range ds.Instruments {
		if _, err := tx.Exec(ctx, `DELETE FROM qcache_instruments WHERE market = $1`, market); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrStorageWriteFailed, err.Error()), "market", market)
		}
		rows := make([][]any, 0, len(spans))
		for _, span := range spans {
			rows = append(rows, []any{market, span.Code, nullableTime(span.Start), nullableTime(span.End)})
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"qcache_instruments"},
			[]string{"market", "code", "start_time", "end_time"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrStorageWriteFailed, err.Error()), "market", market)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return zerr.Wrap(domain.ErrStorageWriteFailed, err.Error())
	}
	return nil
}

func copyCalendars(ctx context.Context, tx pgx.Tx, calendars map[string][]time.Time, future bool) error {
	for freq, times := range calendars {
		if _, err := tx.Exec(ctx, `DELETE FROM qcache_calendar WHERE freq = $1 AND future = $2`, freq, future); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrStorageWriteFailed, err.Error()), "freq", freq)
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"qcache_calendar"},
			[]string{"freq", "future", "ts"},
			pgx.CopyFromSlice(len(times), func(i int) ([]any, error) {
				return []any{freq, future, times[i]}, nil
			}),
		)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrStorageWriteFailed, err.Error()), "freq", freq)
		}
	}
	return nil
}

func nullableTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
