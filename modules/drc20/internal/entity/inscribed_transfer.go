package entity

import (
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/uint128"
)

// InscribedTransfer is the locked amount behind a revealed transfer
// inscription, pending its spend. Consumed (at most once) when the
// inscription moves again.
type InscribedTransfer struct {
	InscriptionId ordinals.InscriptionId
	Tick          drc20.Tick
	OriginalTick  string
	Owner         drc20.OwnerId
	Amount        uint128.Uint128
	BlockHeight   uint64
}
