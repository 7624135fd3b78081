package ordinals

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatPointFromString(t *testing.T) {
	s := "54e48e5f5c656b26c3bca14a8c95aa583d07ebe84dde3b7dd4a78f4e4186e713:1:330"
	satPoint, err := NewSatPointFromString(s)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), satPoint.OutPoint.Index)
	assert.Equal(t, uint64(330), satPoint.Offset)
	assert.Equal(t, s, satPoint.String())
}

func TestSatPointFromStringInvalid(t *testing.T) {
	_, err := NewSatPointFromString("54e48e5f5c656b26c3bca14a8c95aa583d07ebe84dde3b7dd4a78f4e4186e713:1")
	assert.ErrorIs(t, err, ErrSatPointInvalidSeparator)
}

func TestSatPointJSONRoundTrip(t *testing.T) {
	satPoint, err := NewSatPointFromString("54e48e5f5c656b26c3bca14a8c95aa583d07ebe84dde3b7dd4a78f4e4186e713:0:0")
	require.NoError(t, err)

	data, err := json.Marshal(satPoint)
	require.NoError(t, err)

	var parsed SatPoint
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, satPoint, parsed)
}

func TestInscriptionIdFromString(t *testing.T) {
	s := "54e48e5f5c656b26c3bca14a8c95aa583d07ebe84dde3b7dd4a78f4e4186e713i7"
	id, err := NewInscriptionIdFromString(s)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id.Index)
	assert.Equal(t, s, id.String())
}
