package drc20

import (
	"github.com/gaze-network/uint128"
)

// Receipt is the durable record of one operation's outcome, success or
// rejection. Exactly one receipt is appended per operation, never mutated.
// The full balance history of a tick can be reconstructed by replaying its
// receipts in order.
type Receipt struct {
	OperationMeta
	Kind         OperationKind
	Tick         Tick
	OriginalTick string
	From         OwnerId
	To           OwnerId

	// Event is set on success, Err on rejection. Exactly one is set.
	Event Event
	Err   Error
}

func (r Receipt) Valid() bool {
	return r.Event != nil
}

// Amount returns the effective amount the receipt's event applied, or zero
// for rejections and deploys.
func (r Receipt) Amount() uint128.Uint128 {
	switch e := r.Event.(type) {
	case MintEvent:
		return e.Amount
	case InscribeTransferEvent:
		return e.Amount
	case TransferEvent:
		return e.Amount
	}
	return uint128.Zero
}
