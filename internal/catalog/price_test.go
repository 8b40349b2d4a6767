package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	p, err := parsePrice("64.00")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("64.00")))
}

func TestParsePrice_Invalid(t *testing.T) {
	_, err := parsePrice("not a price")
	require.Error(t, err)
}

func TestShortfallError_Message(t *testing.T) {
	err := &ShortfallError{ProductIDs: []int64{5, 7}}
	assert.Contains(t, err.Error(), "insufficient stock")
}
