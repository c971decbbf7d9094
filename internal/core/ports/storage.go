package ports

import (
	"context"
	"time"

	"go.trai.ch/qcache/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

// FeatureBackend answers raw leaf feature requests.
// Implementations must be safe for concurrent use.
type FeatureBackend interface {
	// LoadLeaf returns the values of field for instrument over the inclusive index range [start, end].
	// It returns domain.ErrDataNotFound when the backend holds no data for the request.
	LoadLeaf(ctx context.Context, instrument, field string, start, end int, freq domain.Freq) (domain.Series, error)
}

// CalendarSource loads raw trading calendars.
type CalendarSource interface {
	// LoadCalendar returns the trading timestamps of freq, including future days when future is set.
	LoadCalendar(ctx context.Context, freq domain.Freq, future bool) ([]time.Time, error)
}

// InstrumentSource lists the instruments of a market.
type InstrumentSource interface {
	// ListInstruments returns every listing span of every instrument in market.
	ListInstruments(ctx context.Context, market string) ([]domain.InstrumentSpan, error)
}
