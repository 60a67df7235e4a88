package helper

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"100", 10000},
		{"19.99", 1999},
		{"0.005", 1},
		{"0.004", 0},
		{"0", 0},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ToMinorUnits(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestNumericToDecimal(t *testing.T) {
	d, err := NumericToDecimal("12500.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12500.5")))

	d, err = NumericToDecimal("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = NumericToDecimal("abc")
	assert.Error(t, err)
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, RawStringToNull("").Valid)
	assert.Equal(t, "x", NullStringValue(RawStringToNull("x")))
	assert.Equal(t, uuid.Nil, StringToUUID("nope"))

	id := uuid.New()
	assert.Equal(t, []string{id.String()}, UUIDsToStrings([]uuid.UUID{id}))
}
