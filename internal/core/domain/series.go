package domain

import (
	"math"
	"slices"
	"time"
	"unsafe"
)

const sliceHeaderSize = int64(unsafe.Sizeof([]float64(nil)))

// Series is a slice of feature values indexed by trading step.
type Series []float64

// NewSeries returns a Series of length n filled with NaN.
func NewSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// SizeOf implements Sized.
func (s Series) SizeOf() int64 {
	return sliceHeaderSize + int64(len(s))*8
}

// Equal reports whether both series hold the same bits, treating NaN as equal to NaN.
func (s Series) Equal(other Series) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if math.Float64bits(s[i]) != math.Float64bits(other[i]) &&
			(!math.IsNaN(s[i]) || !math.IsNaN(other[i])) {
			return false
		}
	}
	return true
}

// Calendar is the sorted trading timestamps of one frequency together with their positions.
// A Calendar is immutable once built.
type Calendar struct {
	times     []time.Time
	positions map[int64]int
}

// NewCalendar sorts and deduplicates the given timestamps.
func NewCalendar(times []time.Time) *Calendar {
	sorted := slices.Clone(times)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	sorted = slices.CompactFunc(sorted, func(a, b time.Time) bool { return a.Equal(b) })

	positions := make(map[int64]int, len(sorted))
	for i, t := range sorted {
		positions[t.UnixNano()] = i
	}
	return &Calendar{times: sorted, positions: positions}
}

// Len returns the number of trading timestamps.
func (c *Calendar) Len() int {
	return len(c.times)
}

// At returns the timestamp at position i.
func (c *Calendar) At(i int) time.Time {
	return c.times[i]
}

// Times returns a copy of the timestamps in [from, to], both inclusive.
func (c *Calendar) Times(from, to int) []time.Time {
	if from > to || from >= len(c.times) || to < 0 {
		return []time.Time{}
	}
	return slices.Clone(c.times[from : to+1])
}

// Position returns the position of an exact trading timestamp.
func (c *Calendar) Position(t time.Time) (int, bool) {
	i, ok := c.positions[t.UnixNano()]
	return i, ok
}

// SizeOf implements Sized.
func (c *Calendar) SizeOf() int64 {
	// Each entry is held twice: once in the slice, once as a map key and value.
	return int64(len(c.times)) * int64(unsafe.Sizeof(time.Time{})+16)
}

// InstrumentSpan is one listing period of an instrument within a market.
type InstrumentSpan struct {
	Code  string
	Start time.Time
	End   time.Time
}

// InstrumentList is a resolved, sorted list of instrument codes.
type InstrumentList []string

// SizeOf implements Sized.
func (l InstrumentList) SizeOf() int64 {
	size := int64(unsafe.Sizeof([]string(nil)))
	for _, code := range l {
		size += int64(unsafe.Sizeof("")) + int64(len(code))
	}
	return size
}
