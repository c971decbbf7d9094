package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/core/domain"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02 09:31:00", time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC)},
		{"2024-01-02T09:31:00Z", time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := domain.ParseTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), tt.in)
	}
}

func TestParseTime_Rejects(t *testing.T) {
	_, err := domain.ParseTime("yesterday")
	require.ErrorIs(t, err, domain.ErrInvalidTime)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "2024-01-02", domain.FormatTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-02T09:31:00Z", domain.FormatTime(time.Date(2024, 1, 2, 9, 31, 0, 0, time.UTC)))
}
