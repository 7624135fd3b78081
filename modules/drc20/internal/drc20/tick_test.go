package drc20

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTick(t *testing.T) {
	tests := []struct {
		name     string
		original string
		expected Tick
		wantErr  error
	}{
		{"lowercased", "DOGE", "doge", nil},
		{"already lower", "doge", "doge", nil},
		{"multibyte kept when length stable", "¢¢", "¢¢", nil},
		{"too short", "dog", "", ErrInvalidTickLength},
		{"too long", "dogee", "", ErrInvalidTickLength},
		{"empty", "", "", ErrInvalidTickLength},
		// U+0130 lowercases to a different byte length, so the normalized
		// form no longer fits the 4 byte rule
		{"lowercasing changes byte length", "İab", "", ErrInvalidTickLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tick, err := NewTick(tt.original)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tick)
		})
	}
}
