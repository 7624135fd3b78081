package postgres

import (
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericUint128RoundTrip(t *testing.T) {
	tests := []uint128.Uint128{
		uint128.Zero,
		uint128.From64(1),
		uint128.From64(21000000_00000000),
		uint128.Max,
	}
	for _, value := range tests {
		t.Run(value.String(), func(t *testing.T) {
			numeric, err := numericFromUint128(&value)
			require.NoError(t, err)
			parsed, err := uint128FromNumeric(numeric)
			require.NoError(t, err)
			require.NotNil(t, parsed)
			assert.Equal(t, value, *parsed)
		})
	}
}

func TestNumericFromUint128Nil(t *testing.T) {
	numeric, err := numericFromUint128(nil)
	require.NoError(t, err)
	assert.False(t, numeric.Valid)

	parsed, err := uint128FromNumeric(numeric)
	require.NoError(t, err)
	assert.Nil(t, parsed)
}
