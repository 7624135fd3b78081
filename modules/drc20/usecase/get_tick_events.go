package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
)

// GetReceiptsByTick pages through a tick's receipt history within
// [fromBlock, toBlock]. Use limit = -1 as no limit.
func (u *Usecase) GetReceiptsByTick(ctx context.Context, tick drc20.Tick, fromBlock, toBlock uint64, limit, offset int32) ([]*drc20.Receipt, error) {
	receipts, err := u.drc20Dg.GetReceiptsByTick(ctx, tick, fromBlock, toBlock, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetReceiptsByTick")
	}
	return receipts, nil
}
