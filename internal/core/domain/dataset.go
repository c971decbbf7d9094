package domain

import (
	"strings"
	"time"
)

// FieldName maps a leaf expression to the name its column is stored under.
// "$close" is stored as "close" and the period feature "$$roe" as "$roe".
func FieldName(leaf string) string {
	return strings.TrimPrefix(leaf, "$")
}

// Column is one stored feature: values aligned to calendar positions, starting at Start.
type Column struct {
	Start  int
	Values Series
}

// End returns the calendar position of the last value, or Start-1 for an empty column.
func (c Column) End() int {
	return c.Start + len(c.Values) - 1
}

// Overlaps reports whether the column holds any position in [start, end].
func (c Column) Overlaps(start, end int) bool {
	return len(c.Values) > 0 && start <= c.End() && end >= c.Start
}

// Slice returns the values over the inclusive range [start, end].
// Positions the column does not cover are NaN.
func (c Column) Slice(start, end int) Series {
	out := NewSeries(end - start + 1)
	lo := max(start, c.Start)
	hi := min(end, c.End())
	for i := lo; i <= hi; i++ {
		out[i-start] = c.Values[i-c.Start]
	}
	return out
}

// ColumnID addresses a stored column.
type ColumnID struct {
	Instrument string
	Field      string
	Freq       string
}

// Dataset is a complete set of raw market data: calendars, instrument listings and feature columns.
// Calendars and columns are keyed by the canonical frequency string.
type Dataset struct {
	Calendars map[string][]time.Time
	// FutureCalendars holds the trading days after the last historical one.
	FutureCalendars map[string][]time.Time
	Instruments     map[string][]InstrumentSpan
	Columns         map[ColumnID]Column
}

// NewDataset returns an empty Dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Calendars:       make(map[string][]time.Time),
		FutureCalendars: make(map[string][]time.Time),
		Instruments:     make(map[string][]InstrumentSpan),
		Columns:         make(map[ColumnID]Column),
	}
}

// Calendar returns the timestamps of freq, appending the future days when future is set.
func (d *Dataset) Calendar(freq string, future bool) ([]time.Time, bool) {
	times, ok := d.Calendars[freq]
	if !future {
		return times, ok
	}
	extra, fok := d.FutureCalendars[freq]
	if !ok && !fok {
		return nil, false
	}
	out := make([]time.Time, 0, len(times)+len(extra))
	out = append(out, times...)
	return append(out, extra...), true
}
