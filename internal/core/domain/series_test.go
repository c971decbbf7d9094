package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/qcache/internal/core/domain"
)

func TestSeries_Equal(t *testing.T) {
	nan := math.NaN()
	assert.True(t, domain.Series{1, nan}.Equal(domain.Series{1, nan}))
	assert.False(t, domain.Series{1, 2}.Equal(domain.Series{1, nan}))
	assert.False(t, domain.Series{1}.Equal(domain.Series{1, 1}))
}

func TestNewSeries(t *testing.T) {
	s := domain.NewSeries(3)
	assert.Len(t, s, 3)
	for _, v := range s {
		assert.True(t, math.IsNaN(v))
	}
}

func TestSizeOf(t *testing.T) {
	assert.Greater(t, domain.Series{1, 2, 3}.SizeOf(), domain.Series{1}.SizeOf())
	assert.Greater(t, domain.InstrumentList{"SH600000"}.SizeOf(), domain.InstrumentList{}.SizeOf())
}

func TestCalendar(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC) }
	cal := domain.NewCalendar([]time.Time{d(4), d(2), d(3), d(2)})

	assert.Equal(t, 3, cal.Len())
	assert.Equal(t, d(2), cal.At(0))
	assert.Equal(t, []time.Time{d(3), d(4)}, cal.Times(1, 2))
	assert.Empty(t, cal.Times(2, 1))
	assert.Empty(t, cal.Times(3, 5))

	pos, ok := cal.Position(d(4))
	assert.True(t, ok)
	assert.Equal(t, 2, pos)

	_, ok = cal.Position(d(5))
	assert.False(t, ok)
}
