package drc20

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
)

type rawPayload struct {
	P    string `json:"p"`    // required
	Op   string `json:"op"`   // required
	Tick string `json:"tick"` // required

	// for deploy operations
	Max string  `json:"max"` // required
	Lim *string `json:"lim"`
	Dec *string `json:"dec"`

	// for mint/transfer operations
	Amt string `json:"amt"` // required
}

// PayloadOp is the operation field of an inscription payload. Note that both
// inscribe-transfer and transfer use "transfer": which one applies depends on
// whether the inscription is being revealed or spent.
type PayloadOp string

const (
	PayloadOpDeploy   PayloadOp = "deploy"
	PayloadOpMint     PayloadOp = "mint"
	PayloadOpTransfer PayloadOp = "transfer"
)

func (o PayloadOp) IsValid() bool {
	switch o {
	case PayloadOpDeploy, PayloadOpMint, PayloadOpTransfer:
		return true
	}
	return false
}

func (o PayloadOp) String() string {
	return string(o)
}

// Payload is a parsed drc-20 inscription body. Numeric fields stay as
// decimals here; scaling to integer amounts happens once the tick's decimals
// are known.
type Payload struct {
	P            string
	Op           PayloadOp
	Tick         Tick
	OriginalTick string

	// for deploy operations
	Max decimal.Decimal
	Lim decimal.Decimal
	Dec uint16

	// for mint/transfer operations
	Amt decimal.Decimal
}

var (
	ErrInvalidProtocol  = errors.New("invalid protocol: must be 'drc-20'")
	ErrInvalidOperation = errors.New("invalid operation for drc-20: must be one of 'deploy', 'mint', or 'transfer'")
	ErrEmptyTick        = errors.New("empty tick")
	ErrEmptyMax         = errors.New("empty max")
	ErrInvalidMax       = errors.New("invalid max")
	ErrInvalidDec       = errors.New("invalid dec")
	ErrInvalidAmt       = errors.New("invalid amt")
	ErrNumberOverflow   = errors.New("number overflow: max value is (2^64-1)")
)

func ParsePayload(content []byte) (*Payload, error) {
	var p rawPayload
	err := json.Unmarshal(content, &p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal payload as json")
	}

	if p.P != "drc-20" {
		return nil, errors.WithStack(ErrInvalidProtocol)
	}
	if !PayloadOp(p.Op).IsValid() {
		return nil, errors.WithStack(ErrInvalidOperation)
	}
	if p.Tick == "" {
		return nil, errors.WithStack(ErrEmptyTick)
	}
	tick, err := NewTick(p.Tick)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	parsed := Payload{
		P:            p.P,
		Op:           PayloadOp(p.Op),
		Tick:         tick,
		OriginalTick: p.Tick,
	}

	switch parsed.Op {
	case PayloadOpDeploy:
		if p.Max == "" {
			return nil, errors.WithStack(ErrEmptyMax)
		}
		rawDec := "18"
		if p.Dec != nil && *p.Dec != "" {
			rawDec = *p.Dec
		}
		dec, err := strconv.ParseUint(rawDec, 10, 16)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse dec")
		}
		if dec > MaxDecimals {
			return nil, errors.WithStack(ErrInvalidDec)
		}
		parsed.Dec = uint16(dec)

		max, err := parseNumericString(p.Max, dec)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse max")
		}
		if max.IsZero() {
			return nil, errors.WithStack(ErrInvalidMax)
		}
		parsed.Max = max

		limit := max
		if p.Lim != nil && *p.Lim != "" {
			limit, err = parseNumericString(*p.Lim, dec)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse lim")
			}
		}
		parsed.Lim = limit
	case PayloadOpMint, PayloadOpTransfer:
		if p.Amt == "" {
			return nil, errors.WithStack(ErrInvalidAmt)
		}
		// decimal count is re-checked against the tick entry after lookup
		amt, err := parseNumericString(p.Amt, MaxDecimals)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse amt")
		}
		parsed.Amt = amt
	default:
		return nil, errors.WithStack(ErrInvalidOperation)
	}
	return &parsed, nil
}

// MaxDecimals is the highest decimal precision a tick may declare, and the
// default when a deploy omits dec.
const MaxDecimals = 18

// max value for all numeric fields (except dec) is (2^64-1), pre-scaling
var maxNumber = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

func parseNumericString(s string, maxDec uint64) (decimal.Decimal, error) {
	if strings.TrimSpace(s) != s {
		return decimal.Decimal{}, errors.New("cannot parse decimal number: surrounding whitespace")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "failed to parse decimal number")
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errors.New("cannot parse decimal number: must not be negative")
	}
	if -d.Exponent() > int32(maxDec) {
		return decimal.Decimal{}, errors.Errorf("cannot parse decimal number: too many decimal points: expected at most %d got %d", maxDec, -d.Exponent())
	}
	if d.GreaterThan(maxNumber) {
		return decimal.Decimal{}, errors.WithStack(ErrNumberOverflow)
	}
	return d, nil
}

// IsAmountWithinDecimals reports whether d has no more fractional digits than
// the tick allows.
func IsAmountWithinDecimals(d decimal.Decimal, dec uint16) bool {
	return -d.Exponent() <= int32(dec)
}

// ScaleToUint128 converts a parsed decimal amount to the integer
// representation scaled by 10^decimals.
func ScaleToUint128(d decimal.Decimal, decimals uint16) (uint128.Uint128, error) {
	scaled := d.Shift(int32(decimals))
	result, err := uint128.FromBig(scaled.BigInt())
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "scaled amount does not fit in 128 bits")
	}
	return result, nil
}
