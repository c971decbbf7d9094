// Package calendar snaps timestamps to trading days and translates them to index ranges.
package calendar

import (
	"context"
	"sort"
	"time"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/qcache/internal/engine/cache"
	"go.trai.ch/zerr"
)

// Location is a calendar range snapped to trading timestamps.
type Location struct {
	Start      time.Time
	End        time.Time
	StartIndex int
	EndIndex   int
}

// Index answers range queries over the trading calendars of a CalendarSource.
// Each (frequency, future) calendar is loaded once and kept in the calendar cache.
type Index struct {
	source ports.CalendarSource
	cache  *cache.BoundedCache
	flight *cache.Group[*domain.Calendar]
	tracer ports.Tracer
}

// NewIndex creates an Index backed by source and caching into the registry's calendar namespace.
func NewIndex(source ports.CalendarSource, registry *cache.Registry, tracer ports.Tracer) *Index {
	return &Index{
		source: source,
		cache:  registry.Calendar(),
		flight: cache.NewGroup[*domain.Calendar](),
		tracer: tracer,
	}
}

// Range returns the trading timestamps within [start, end]. A zero start or end leaves that side open.
// A start after the last timestamp or an end before the first yields an empty result.
func (x *Index) Range(ctx context.Context, start, end time.Time, freq domain.Freq, future bool) ([]time.Time, error) {
	cal, err := x.Calendar(ctx, freq, future)
	if err != nil {
		return nil, err
	}
	if cal.Len() == 0 {
		return []time.Time{}, nil
	}

	if start.IsZero() {
		start = cal.At(0)
	} else if start.After(cal.At(cal.Len() - 1)) {
		return []time.Time{}, nil
	}

	if end.IsZero() {
		end = cal.At(cal.Len() - 1)
	} else if end.Before(cal.At(0)) {
		return []time.Time{}, nil
	}

	loc, err := locate(cal, start, end)
	if err != nil {
		return nil, err
	}
	return cal.Times(loc.StartIndex, loc.EndIndex), nil
}

// LocateIndex snaps start forward and end backward to trading timestamps and returns their positions.
func (x *Index) LocateIndex(ctx context.Context, start, end time.Time, freq domain.Freq, future bool) (Location, error) {
	cal, err := x.Calendar(ctx, freq, future)
	if err != nil {
		return Location{}, err
	}
	return locate(cal, start, end)
}

// Calendar returns the full calendar of (freq, future), loading it on first use.
func (x *Index) Calendar(ctx context.Context, freq domain.Freq, future bool) (*domain.Calendar, error) {
	key := domain.CalendarKey(freq, future)
	if v, ok := x.cache.Get(key); ok {
		return v.(*domain.Calendar), nil
	}

	cal, _, err := x.flight.Do(ctx, key, func(ctx context.Context) (*domain.Calendar, error) {
		if v, ok := x.cache.Get(key); ok {
			return v.(*domain.Calendar), nil
		}

		ctx, span := x.tracer.Start(ctx, "calendar.load",
			ports.WithAttribute("freq", freq.String()),
			ports.WithAttribute("future", future),
		)
		defer span.End()

		times, err := x.source.LoadCalendar(ctx, freq, future)
		if err != nil {
			span.RecordError(err)
			return nil, zerr.With(zerr.Wrap(err, "failed to load calendar"), "calendar", key.String())
		}

		cal := domain.NewCalendar(times)
		span.SetAttribute("days", cal.Len())
		x.cache.Put(key, cal)
		return cal, nil
	})
	if err != nil {
		return nil, err
	}
	return cal, nil
}

func locate(cal *domain.Calendar, start, end time.Time) (Location, error) {
	n := cal.Len()

	si, ok := cal.Position(start)
	if !ok {
		si = sort.Search(n, func(i int) bool { return !cal.At(i).Before(start) })
		if si >= n {
			return Location{}, zerr.With(zerr.Wrap(domain.ErrOutOfRange, domain.FutureDateHint), "start", start)
		}
	}

	ei, ok := cal.Position(end)
	if !ok {
		ei = sort.Search(n, func(i int) bool { return cal.At(i).After(end) }) - 1
		if ei < 0 {
			return Location{}, zerr.With(zerr.Wrap(domain.ErrOutOfRange, "`end_time` is before the first trading day"), "end", end)
		}
	}

	return Location{
		Start:      cal.At(si),
		End:        cal.At(ei),
		StartIndex: si,
		EndIndex:   ei,
	}, nil
}
