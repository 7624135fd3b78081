package drc20

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Tick is a case-insensitive token symbol, stored lower-cased. Equality and
// map keys always use the normalized form; the original casing is preserved
// separately for display.
type Tick string

const tickLength = 4

var ErrInvalidTickLength = errors.New("invalid tick length: must be 4 bytes")

func NewTick(original string) (Tick, error) {
	if len(original) != tickLength {
		return "", errors.WithStack(ErrInvalidTickLength)
	}
	// Unicode lowercasing can change byte length, so the normalized form must
	// hold the length rule too or distinct raw ticks could collide.
	lowered := strings.ToLower(original)
	if len(lowered) != tickLength {
		return "", errors.WithStack(ErrInvalidTickLength)
	}
	return Tick(lowered), nil
}

func (t Tick) String() string {
	return string(t)
}
