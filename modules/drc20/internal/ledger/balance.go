package ledger

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/uint128"
)

type balanceKey struct {
	owner drc20.OwnerId
	tick  drc20.Tick
}

// BalanceStore maps (owner, tick) to its balance. Rows are created lazily on
// first credit and never deleted, so zero balances remain visible. The
// invariant transferable <= overall holds after every mutation; a violation
// means corrupted bookkeeping and surfaces as errs.InternalState.
type BalanceStore struct {
	balances map[balanceKey]*entity.Balance
}

func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		balances: make(map[balanceKey]*entity.Balance),
	}
}

// Get returns the balance for (owner, tick), zeroed if absent. Never
// allocates a row.
func (s *BalanceStore) Get(owner drc20.OwnerId, tick drc20.Tick) entity.Balance {
	if b, ok := s.balances[balanceKey{owner: owner, tick: tick}]; ok {
		return *b
	}
	return entity.Balance{Owner: owner, Tick: tick}
}

// Restore seeds a balance row loaded from persistent storage.
func (s *BalanceStore) Restore(balance entity.Balance) {
	s.balances[balanceKey{owner: balance.Owner, tick: balance.Tick}] = &balance
}

func (s *BalanceStore) getOrCreate(owner drc20.OwnerId, tick drc20.Tick) *entity.Balance {
	key := balanceKey{owner: owner, tick: tick}
	b, ok := s.balances[key]
	if !ok {
		b = &entity.Balance{Owner: owner, Tick: tick}
		s.balances[key] = b
	}
	return b
}

func (s *BalanceStore) creditOverall(owner drc20.OwnerId, tick drc20.Tick, amount uint128.Uint128) error {
	b := s.getOrCreate(owner, tick)
	sum, carry := b.OverallBalance.AddOverflow(amount)
	if carry {
		return errors.Wrapf(errs.OverflowUint128, "overall balance overflow for %s/%s", owner, tick)
	}
	b.OverallBalance = sum
	return nil
}

func (s *BalanceStore) debitOverall(owner drc20.OwnerId, tick drc20.Tick, amount uint128.Uint128) error {
	b := s.getOrCreate(owner, tick)
	if b.OverallBalance.Cmp(amount) < 0 {
		return errors.Wrapf(errs.InternalState, "overall balance underflow for %s/%s", owner, tick)
	}
	b.OverallBalance = b.OverallBalance.Sub(amount)
	if b.TransferableBalance.Cmp(b.OverallBalance) > 0 {
		return errors.Wrapf(errs.InternalState, "transferable balance exceeds overall balance for %s/%s", owner, tick)
	}
	return nil
}

// lockTransferable commits amount of the available balance to a pending
// transfer inscription. Fails with drc20.ErrInsufficientBalance if the
// available balance is too low.
func (s *BalanceStore) lockTransferable(owner drc20.OwnerId, tick drc20.Tick, amount uint128.Uint128) error {
	b := s.getOrCreate(owner, tick)
	if amount.Cmp(b.Available()) > 0 {
		return errors.WithStack(drc20.ErrInsufficientBalance)
	}
	b.TransferableBalance = b.TransferableBalance.Add(amount)
	return nil
}

func (s *BalanceStore) unlockTransferable(owner drc20.OwnerId, tick drc20.Tick, amount uint128.Uint128) error {
	b := s.getOrCreate(owner, tick)
	if b.TransferableBalance.Cmp(amount) < 0 {
		return errors.Wrapf(errs.InternalState, "transferable balance underflow for %s/%s", owner, tick)
	}
	b.TransferableBalance = b.TransferableBalance.Sub(amount)
	return nil
}

// relockTransferable is the inverse of unlockTransferable for undo. Unlike
// lockTransferable it does not consult the available balance, because it
// restores a lock that provably existed.
func (s *BalanceStore) relockTransferable(owner drc20.OwnerId, tick drc20.Tick, amount uint128.Uint128) error {
	b := s.getOrCreate(owner, tick)
	locked := b.TransferableBalance.Add(amount)
	if locked.Cmp(b.OverallBalance) > 0 {
		return errors.Wrapf(errs.InternalState, "relock exceeds overall balance for %s/%s", owner, tick)
	}
	b.TransferableBalance = locked
	return nil
}

// moveTransfer settles a spent transfer inscription: amount leaves from's
// overall and transferable balances and lands in to's overall balance.
func (s *BalanceStore) moveTransfer(from, to drc20.OwnerId, tick drc20.Tick, amount uint128.Uint128) error {
	if from == to {
		return s.unlockTransferable(from, tick, amount)
	}
	fb := s.getOrCreate(from, tick)
	if fb.TransferableBalance.Cmp(amount) < 0 {
		return errors.Wrapf(errs.InternalState, "transferable balance below transfer amount for %s/%s", from, tick)
	}
	tb := s.getOrCreate(to, tick)
	sum, carry := tb.OverallBalance.AddOverflow(amount)
	if carry {
		return errors.Wrapf(errs.OverflowUint128, "overall balance overflow for %s/%s", to, tick)
	}
	fb.OverallBalance = fb.OverallBalance.Sub(amount)
	fb.TransferableBalance = fb.TransferableBalance.Sub(amount)
	tb.OverallBalance = sum
	return nil
}

// moveTransferBack is the inverse of moveTransfer for undo.
func (s *BalanceStore) moveTransferBack(from, to drc20.OwnerId, tick drc20.Tick, amount uint128.Uint128) error {
	if from == to {
		return s.relockTransferable(from, tick, amount)
	}
	tb := s.getOrCreate(to, tick)
	if tb.OverallBalance.Cmp(amount) < 0 {
		return errors.Wrapf(errs.InternalState, "cannot revert transfer: overall balance underflow for %s/%s", to, tick)
	}
	fb := s.getOrCreate(from, tick)
	sum, carry := fb.OverallBalance.AddOverflow(amount)
	if carry {
		return errors.Wrapf(errs.OverflowUint128, "overall balance overflow for %s/%s", from, tick)
	}
	tb.OverallBalance = tb.OverallBalance.Sub(amount)
	if tb.TransferableBalance.Cmp(tb.OverallBalance) > 0 {
		return errors.Wrapf(errs.InternalState, "transferable balance exceeds overall balance for %s/%s", to, tick)
	}
	fb.OverallBalance = sum
	fb.TransferableBalance = fb.TransferableBalance.Add(amount)
	return nil
}
