package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/qcache/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("close")
	b := domain.NewInternedString("close")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, domain.NewInternedString("open"))
	assert.Equal(t, "close", a.String())
	assert.False(t, a.IsZero())
}

func TestInternedString_Zero(t *testing.T) {
	var zero domain.InternedString
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
}
