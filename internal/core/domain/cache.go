package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Namespace identifies one of the independent cache partitions.
type Namespace string

const (
	// NamespaceCalendar holds loaded trading calendars.
	NamespaceCalendar Namespace = "calendar"
	// NamespaceInstrument holds resolved instrument lists.
	NamespaceInstrument Namespace = "instrument"
	// NamespaceFeature holds computed feature slices.
	NamespaceFeature Namespace = "feature"
)

// Namespaces lists every namespace in the fixed order used for locking and reporting.
var Namespaces = []Namespace{NamespaceCalendar, NamespaceInstrument, NamespaceFeature}

// ParseNamespace maps a namespace name to a Namespace.
func ParseNamespace(name string) (Namespace, error) {
	switch ns := Namespace(name); ns {
	case NamespaceCalendar, NamespaceInstrument, NamespaceFeature:
		return ns, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownNamespace, "namespace lookup failed"), "namespace", name)
	}
}

// Policy selects how a cache measures the size of its entries.
type Policy uint8

const (
	// PolicyCount charges one unit per entry.
	PolicyCount Policy = iota + 1
	// PolicyByteSize charges the measured byte footprint of each value.
	PolicyByteSize
)

// ParsePolicy maps a configured policy name to a Policy.
// "length" and "sizeof" are accepted as aliases of "count" and "bytesize".
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "count", "length":
		return PolicyCount, nil
	case "bytesize", "sizeof":
		return PolicyByteSize, nil
	default:
		return 0, zerr.With(zerr.Wrap(ErrInvalidPolicy, "cache policy rejected"), "policy", name)
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyCount:
		return "count"
	case PolicyByteSize:
		return "bytesize"
	default:
		return "unknown"
	}
}

// Sized is implemented by every value stored in a cache.
type Sized interface {
	// SizeOf reports the approximate memory footprint of the value in bytes.
	SizeOf() int64
}

// CacheKey identifies one cached value. Only the fields of its namespace are set,
// so two keys are equal exactly when they describe the same request.
type CacheKey struct {
	Namespace Namespace

	// Calendar and feature keys.
	Freq   Freq
	Future bool

	// Instrument keys.
	Market string
	Filter string

	// Feature keys.
	Instrument string
	Expr       string
	Start      int
	End        int
}

// CalendarKey builds the key of the calendar for one frequency and future flag.
func CalendarKey(freq Freq, future bool) CacheKey {
	return CacheKey{Namespace: NamespaceCalendar, Freq: freq, Future: future}
}

// InstrumentKey builds the key of a resolved instrument list.
func InstrumentKey(market string, pipe FilterPipe) CacheKey {
	return CacheKey{Namespace: NamespaceInstrument, Market: market, Filter: pipe.Identity()}
}

// FeatureKey builds the key of a computed feature slice.
func FeatureKey(instrument, expr string, start, end int, freq Freq) CacheKey {
	return CacheKey{
		Namespace:  NamespaceFeature,
		Instrument: instrument,
		Expr:       expr,
		Start:      start,
		End:        end,
		Freq:       freq,
	}
}

// String renders the key for logs and shard selection.
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(string(k.Namespace))
	b.WriteByte(':')
	switch k.Namespace {
	case NamespaceCalendar:
		b.WriteString(k.Freq.String())
		b.WriteString("_future_")
		b.WriteString(strconv.FormatBool(k.Future))
	case NamespaceInstrument:
		b.WriteString(strconv.Quote(k.Market))
		b.WriteByte('|')
		b.WriteString(strconv.Quote(k.Filter))
	case NamespaceFeature:
		b.WriteString(k.Instrument)
		b.WriteByte('|')
		b.WriteString(k.Expr)
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(k.Start))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(k.End))
		b.WriteByte('|')
		b.WriteString(k.Freq.String())
	}
	return b.String()
}
