package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
)

// GetTickEntryByTick returns the entry for tick with its latest minted state.
// Returns errs.NotFound if the tick has not been deployed.
func (u *Usecase) GetTickEntryByTick(ctx context.Context, tick drc20.Tick) (*entity.TickEntry, error) {
	entry, err := u.drc20Dg.GetTickEntryByTick(ctx, tick)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetTickEntryByTick")
	}
	return entry, nil
}

// CountHoldersByTick returns the number of owners with a non-zero balance of tick.
func (u *Usecase) CountHoldersByTick(ctx context.Context, tick drc20.Tick) (uint64, error) {
	count, err := u.drc20Dg.CountHoldersByTick(ctx, tick)
	if err != nil {
		return 0, errors.Wrap(err, "error during CountHoldersByTick")
	}
	return count, nil
}

func (u *Usecase) GetTickEntries(ctx context.Context) ([]*entity.TickEntry, error) {
	entries, err := u.drc20Dg.GetTickEntries(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during GetTickEntries")
	}
	return entries, nil
}
