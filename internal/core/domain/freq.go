package domain

import (
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Base units of a sampling frequency.
const (
	FreqMonth  = "month"
	FreqWeek   = "week"
	FreqDay    = "day"
	FreqMinute = "min"
)

var freqPattern = regexp.MustCompile(`^([0-9]*)(month|mon|week|w|day|d|minute|min)$`)

// Freq is a sampling frequency such as "day" or "5min".
type Freq struct {
	Count int
	Base  string
}

// Day is the daily frequency.
var Day = Freq{Count: 1, Base: FreqDay}

// ParseFreq normalizes a frequency string. "1d", "day" and "DAY" all parse to Day.
func ParseFreq(s string) (Freq, error) {
	m := freqPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Freq{}, zerr.With(zerr.Wrap(ErrInvalidFreq, "frequency rejected"), "freq", s)
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return Freq{}, zerr.With(zerr.Wrap(ErrInvalidFreq, "frequency count must be positive"), "freq", s)
		}
		count = n
	}

	var base string
	switch m[2] {
	case "month", "mon":
		base = FreqMonth
	case "week", "w":
		base = FreqWeek
	case "day", "d":
		base = FreqDay
	default:
		base = FreqMinute
	}
	return Freq{Count: count, Base: base}, nil
}

// MustParseFreq is ParseFreq for constant inputs; it panics on error.
func MustParseFreq(s string) Freq {
	f, err := ParseFreq(s)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the canonical form: the bare unit for a count of one, otherwise count and unit.
func (f Freq) String() string {
	if f.Base == "" {
		return ""
	}
	if f.Count <= 1 {
		return f.Base
	}
	return strconv.Itoa(f.Count) + f.Base
}
