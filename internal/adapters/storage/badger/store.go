// Package badger persists raw market data in an embedded BadgerDB.
package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.FeatureBackend   = (*Store)(nil)
	_ ports.CalendarSource   = (*Store)(nil)
	_ ports.InstrumentSource = (*Store)(nil)
)

// Key prefixes.
const (
	calendarPrefix   = "cal/"
	futurePrefix     = "calf/"
	instrumentPrefix = "inst/"
	featurePrefix    = "feat/"
)

// Config configures the embedded store.
type Config struct {
	// Path is the directory holding the database files. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in memory. Used by tests.
	InMemory bool
	// SyncWrites flushes every write to disk before acknowledging it.
	SyncWrites bool
	// Logger receives BadgerDB's warnings and errors. Nil disables its logging.
	Logger ports.Logger
}

// DefaultConfig returns the configuration for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns the configuration for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	logger ports.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(errors.New(strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(string, ...any) {}

func (l *badgerLogger) Debugf(string, ...any) {}

// Store implements the three raw data ports over BadgerDB.
type Store struct {
	db *badger.DB
}

// Open opens or creates the store described by cfg.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, zerr.Wrap(domain.ErrStorageOpenFailed, "badger path is required")
		}
		if err := os.MkdirAll(cfg.Path, domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrStorageOpenFailed, err.Error()), "path", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStorageOpenFailed, err.Error()), "path", cfg.Path)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadLeaf implements ports.FeatureBackend.
func (s *Store) LoadLeaf(_ context.Context, instrument, field string, start, end int, freq domain.Freq) (domain.Series, error) {
	key := featureKey(domain.ColumnID{Instrument: instrument, Field: domain.FieldName(field), Freq: freq.String()})

	var col domain.Column
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			col, err = decodeColumn(val)
			return err
		})
	})
	if err != nil {
		return nil, s.readError(err, string(key))
	}
	if !col.Overlaps(start, end) {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrDataNotFound, "no values in range"), "start", start), "end", end)
	}
	return col.Slice(start, end), nil
}

// LoadCalendar implements ports.CalendarSource.
func (s *Store) LoadCalendar(_ context.Context, freq domain.Freq, future bool) ([]time.Time, error) {
	past, err := s.getTimes(calendarPrefix + freq.String())
	if err != nil && (!errors.Is(err, domain.ErrDataNotFound) || !future) {
		return nil, err
	}
	if !future {
		return past, nil
	}

	extra, ferr := s.getTimes(futurePrefix + freq.String())
	switch {
	case ferr == nil:
		return append(past, extra...), nil
	case errors.Is(ferr, domain.ErrDataNotFound) && err == nil:
		return past, nil
	default:
		return nil, ferr
	}
}

// ListInstruments implements ports.InstrumentSource.
func (s *Store) ListInstruments(_ context.Context, market string) ([]domain.InstrumentSpan, error) {
	key := instrumentPrefix + market

	var spans []domain.InstrumentSpan
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &spans)
		})
	})
	if err != nil {
		return nil, s.readError(err, key)
	}
	return spans, nil
}

// Import writes every calendar, listing and column of ds, replacing entries under the same keys.
func (s *Store) Import(_ context.Context, ds *domain.Dataset) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	set := func(key string, val []byte) error {
		if err := wb.Set([]byte(key), val); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrStorageWriteFailed, err.Error()), "key", key)
		}
		return nil
	}

	for freq, times := range ds.Calendars {
		if err := set(calendarPrefix+freq, encodeTimes(times)); err != nil {
			return err
		}
	}
	for freq, times := range ds.FutureCalendars {
		if err := set(futurePrefix+freq, encodeTimes(times)); err != nil {
			return err
		}
	}
	for market, spans := range ds.Instruments {
		data, err := json.Marshal(spans)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrStorageWriteFailed, err.Error()), "market", market)
		}
		if err := set(instrumentPrefix+market, data); err != nil {
			return err
		}
	}
	for id, col := range ds.Columns {
		if err := set(string(featureKey(id)), encodeColumn(col)); err != nil {
			return err
		}
	}

	if err := wb.Flush(); err != nil {
		return zerr.Wrap(domain.ErrStorageWriteFailed, err.Error())
	}
	return nil
}

func (s *Store) getTimes(key string) ([]time.Time, error) {
	var times []time.Time
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			times, err = decodeTimes(val)
			return err
		})
	})
	if err != nil {
		return nil, s.readError(err, key)
	}
	return times, nil
}

func (s *Store) readError(err error, key string) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return zerr.With(zerr.Wrap(domain.ErrDataNotFound, "key not found"), "key", key)
	}
	if errors.Is(err, domain.ErrDatasetParseFailed) {
		return zerr.With(err, "key", key)
	}
	return zerr.With(zerr.Wrap(domain.ErrStorageQueryFailed, err.Error()), "key", key)
}

func featureKey(id domain.ColumnID) []byte {
	return []byte(featurePrefix + id.Freq + "/" + id.Instrument + "/" + id.Field)
}

// encodeColumn lays a column out as its start position followed by its values,
// all little-endian float64.
func encodeColumn(col domain.Column) []byte {
	buf := make([]byte, 8*(len(col.Values)+1))
	binary.LittleEndian.PutUint64(buf, math.Float64bits(float64(col.Start)))
	for i, v := range col.Values {
		binary.LittleEndian.PutUint64(buf[8*(i+1):], math.Float64bits(v))
	}
	return buf
}

func decodeColumn(buf []byte) (domain.Column, error) {
	if len(buf) < 8 || len(buf)%8 != 0 {
		return domain.Column{}, zerr.With(zerr.Wrap(domain.ErrDatasetParseFailed, "corrupt column"), "bytes", len(buf))
	}
	col := domain.Column{
		Start:  int(math.Float64frombits(binary.LittleEndian.Uint64(buf))),
		Values: make(domain.Series, len(buf)/8-1),
	}
	for i := range col.Values {
		col.Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*(i+1):]))
	}
	return col, nil
}

func encodeTimes(times []time.Time) []byte {
	buf := make([]byte, 8*len(times))
	for i, t := range times {
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(t.UnixNano()))
	}
	return buf
}

func decodeTimes(buf []byte) ([]time.Time, error) {
	if len(buf)%8 != 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrDatasetParseFailed, "corrupt calendar"), "bytes", len(buf))
	}
	times := make([]time.Time, len(buf)/8)
	for i := range times {
		times[i] = time.Unix(0, int64(binary.LittleEndian.Uint64(buf[8*i:]))).UTC()
	}
	return times, nil
}
