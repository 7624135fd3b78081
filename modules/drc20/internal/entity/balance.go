package entity

import (
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/uint128"
)

// Balance is a height-versioned balance row. The latest row per (owner, tick)
// is the current balance; older rows stay behind for reorg rollback and
// history queries.
type Balance struct {
	Owner               drc20.OwnerId
	Tick                drc20.Tick
	BlockHeight         uint64
	OverallBalance      uint128.Uint128
	TransferableBalance uint128.Uint128
}

// Available returns the portion of the overall balance not locked behind a
// pending transfer inscription.
func (b Balance) Available() uint128.Uint128 {
	return b.OverallBalance.Sub(b.TransferableBalance)
}
