package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
)

func (u *Usecase) GetBalancesByOwner(ctx context.Context, owner drc20.OwnerId, blockHeight uint64) ([]*entity.Balance, error) {
	balances, err := u.drc20Dg.GetBalancesByOwner(ctx, owner, blockHeight)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetBalancesByOwner")
	}
	return balances, nil
}

func (u *Usecase) GetBalance(ctx context.Context, owner drc20.OwnerId, tick drc20.Tick) (*entity.Balance, error) {
	balance, err := u.drc20Dg.GetBalance(ctx, owner, tick)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetBalance")
	}
	return balance, nil
}
