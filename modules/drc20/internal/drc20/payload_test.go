package drc20

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadDeploy(t *testing.T) {
	payload, err := ParsePayload([]byte(`{"p":"drc-20","op":"deploy","tick":"DOGE","max":"21000000","lim":"1000","dec":"8"}`))
	require.NoError(t, err)
	assert.Equal(t, PayloadOpDeploy, payload.Op)
	assert.Equal(t, Tick("doge"), payload.Tick)
	assert.Equal(t, "DOGE", payload.OriginalTick)
	assert.Equal(t, uint16(8), payload.Dec)
	assert.True(t, payload.Max.Equal(decimal.NewFromInt(21000000)))
	assert.True(t, payload.Lim.Equal(decimal.NewFromInt(1000)))
}

func TestParsePayloadDeployDefaults(t *testing.T) {
	// lim defaults to max, dec defaults to 18
	payload, err := ParsePayload([]byte(`{"p":"drc-20","op":"deploy","tick":"doge","max":"1000"}`))
	require.NoError(t, err)
	assert.Equal(t, uint16(18), payload.Dec)
	assert.True(t, payload.Lim.Equal(payload.Max))
}

func TestParsePayloadMint(t *testing.T) {
	payload, err := ParsePayload([]byte(`{"p":"drc-20","op":"mint","tick":"doge","amt":"420.5"}`))
	require.NoError(t, err)
	assert.Equal(t, PayloadOpMint, payload.Op)
	assert.True(t, payload.Amt.Equal(decimal.RequireFromString("420.5")))
}

func TestParsePayloadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"wrong protocol", `{"p":"brc-20","op":"mint","tick":"doge","amt":"1"}`, ErrInvalidProtocol},
		{"unknown op", `{"p":"drc-20","op":"burn","tick":"doge","amt":"1"}`, ErrInvalidOperation},
		{"empty tick", `{"p":"drc-20","op":"mint","tick":"","amt":"1"}`, ErrEmptyTick},
		{"tick too long", `{"p":"drc-20","op":"mint","tick":"dogee","amt":"1"}`, ErrInvalidTickLength},
		{"missing max", `{"p":"drc-20","op":"deploy","tick":"doge"}`, ErrEmptyMax},
		{"zero max", `{"p":"drc-20","op":"deploy","tick":"doge","max":"0"}`, ErrInvalidMax},
		{"dec too large", `{"p":"drc-20","op":"deploy","tick":"doge","max":"100","dec":"19"}`, ErrInvalidDec},
		{"missing amt", `{"p":"drc-20","op":"transfer","tick":"doge"}`, ErrInvalidAmt},
		{"overflow", `{"p":"drc-20","op":"mint","tick":"doge","amt":"18446744073709551616"}`, ErrNumberOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload([]byte(tt.content))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParsePayloadRejectsTooManyDecimals(t *testing.T) {
	_, err := ParsePayload([]byte(`{"p":"drc-20","op":"deploy","tick":"doge","max":"100.123","dec":"2"}`))
	assert.Error(t, err)
}

func TestScaleToUint128(t *testing.T) {
	amt := decimal.RequireFromString("420.5")
	scaled, err := ScaleToUint128(amt, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(42050000000), scaled.Uint64())
}

func TestIsAmountWithinDecimals(t *testing.T) {
	assert.True(t, IsAmountWithinDecimals(decimal.RequireFromString("1.23"), 2))
	assert.False(t, IsAmountWithinDecimals(decimal.RequireFromString("1.234"), 2))
}
