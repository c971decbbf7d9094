package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/core/domain"
)

func year(y int) time.Time {
	return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"close", "SH600000", "roe_ttm", "a.b"} {
		require.NoError(t, domain.ValidateName("field", ok))
	}
	for _, bad := range []string{"", "$close", "Mean(x)", "a b", "a,b"} {
		require.ErrorIs(t, domain.ValidateName("field", bad), domain.ErrInvalidName, bad)
	}
}

func TestFilterPipe_Apply(t *testing.T) {
	spans := []domain.InstrumentSpan{
		{Code: "SH600001", Start: year(2010), End: year(2015)},
		{Code: "SH600000", Start: year(2020), End: year(2030)},
		{Code: "SH600002", Start: year(2005), End: year(2008)},
		{Code: "SH600002", Start: year(2021), End: year(2022)},
		{Code: "SH000300"},
	}

	assert.Equal(t, domain.InstrumentList{"SH000300", "SH600000", "SH600001", "SH600002"},
		domain.FilterPipe(nil).Apply(spans))

	recent := domain.FilterPipe{{Start: year(2019)}}
	assert.Equal(t, domain.InstrumentList{"SH600000", "SH600002"}, recent.Apply(spans))

	keep := domain.FilterPipe{{Start: year(2019), Keep: true}}
	assert.Equal(t, domain.InstrumentList{"SH000300", "SH600000", "SH600002"}, keep.Apply(spans))

	// Each filter is checked against every listing span of the instrument.
	narrowed := domain.FilterPipe{{Start: year(2019)}, {End: year(2016)}}
	assert.Equal(t, domain.InstrumentList{"SH600002"}, narrowed.Apply(spans))
}

func TestFilterPipe_Identity(t *testing.T) {
	assert.Empty(t, domain.FilterPipe(nil).Identity())

	a := domain.FilterPipe{{Start: year(2019)}, {End: year(2020), Keep: true}}
	b := domain.FilterPipe{{End: year(2020), Keep: true}, {Start: year(2019)}}
	assert.NotEqual(t, a.Identity(), b.Identity())
	assert.Equal(t, "window(2019-01-01T00:00:00Z,-,false);window(-,2020-01-01T00:00:00Z,true)", a.Identity())
}

func TestWindowPipe(t *testing.T) {
	assert.Nil(t, domain.WindowPipe(time.Time{}, time.Time{}))
	assert.Equal(t, domain.FilterPipe{{Start: year(2019), Keep: true}}, domain.WindowPipe(year(2019), time.Time{}))
}
