package domain

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// ValidateName checks that a feature name or instrument code cannot collide with expression syntax.
func ValidateName(kind, name string) error {
	if !namePattern.MatchString(name) {
		return zerr.With(zerr.Wrap(ErrInvalidName, kind+" rejected"), kind, name)
	}
	return nil
}

// Filter narrows a market to the instruments listed within a time window.
// A zero Start or End leaves that side of the window open.
type Filter struct {
	Start time.Time
	End   time.Time
	// Keep retains instruments that have no listing span at all.
	Keep bool
}

// FilterPipe is an ordered sequence of filters applied one after another.
type FilterPipe []Filter

// WindowPipe keeps the instruments listed within [start, end] and those with no listing dates.
// It returns the empty pipe when both bounds are zero.
func WindowPipe(start, end time.Time) FilterPipe {
	if start.IsZero() && end.IsZero() {
		return nil
	}
	return FilterPipe{{Start: start, End: end, Keep: true}}
}

// Identity renders the pipe as a canonical string used in instrument cache keys.
func (p FilterPipe) Identity() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, f := range p {
		parts[i] = "window(" + formatBound(f.Start) + "," + formatBound(f.End) + "," + strconv.FormatBool(f.Keep) + ")"
	}
	return strings.Join(parts, ";")
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Apply returns the sorted codes surviving every filter in the pipe.
func (p FilterPipe) Apply(spans []InstrumentSpan) InstrumentList {
	byCode := make(map[string][]InstrumentSpan)
	for _, s := range spans {
		byCode[s.Code] = append(byCode[s.Code], s)
	}

	codes := make([]string, 0, len(byCode))
	for code, ss := range byCode {
		if p.keeps(ss) {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return InstrumentList(codes)
}

func (p FilterPipe) keeps(spans []InstrumentSpan) bool {
	for _, f := range p {
		if !f.keeps(spans) {
			return false
		}
	}
	return true
}

func (f Filter) keeps(spans []InstrumentSpan) bool {
	listed := false
	for _, s := range spans {
		if s.Start.IsZero() && s.End.IsZero() {
			continue
		}
		listed = true
		if f.overlaps(s) {
			return true
		}
	}
	return !listed && f.Keep
}

func (f Filter) overlaps(s InstrumentSpan) bool {
	if !f.End.IsZero() && !s.Start.IsZero() && s.Start.After(f.End) {
		return false
	}
	if !f.Start.IsZero() && !s.End.IsZero() && s.End.Before(f.Start) {
		return false
	}
	return true
}
