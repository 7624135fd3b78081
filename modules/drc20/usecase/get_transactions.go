package usecase

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
)

func (u *Usecase) GetReceiptsByTxHash(ctx context.Context, txHash chainhash.Hash) ([]*drc20.Receipt, error) {
	receipts, err := u.drc20Dg.GetReceiptsByTxHash(ctx, txHash)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetReceiptsByTxHash")
	}
	return receipts, nil
}

func (u *Usecase) GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	block, err := u.drc20Dg.GetLatestIndexedBlock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetLatestIndexedBlock")
	}
	return block, nil
}
