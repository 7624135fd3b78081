package ledger

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/uint128"
)

// Engine decides whether one operation is valid against the current ledger
// state. It never mutates state: the outcome is an event plus a list of state
// changes for the applier to apply atomically.
//
// Rejections are returned as drc20.Error and are routine protocol outcomes.
// Any other error signals corrupted state and must abort the batch.
type Engine struct {
	registry  *Registry
	balances  *BalanceStore
	transfers *TransferStore
}

func NewEngine(registry *Registry, balances *BalanceStore, transfers *TransferStore) *Engine {
	return &Engine{
		registry:  registry,
		balances:  balances,
		transfers: transfers,
	}
}

// Decision is the evaluated outcome of a valid operation.
type Decision struct {
	Event   drc20.Event
	changes []stateChange
}

func (e *Engine) Evaluate(op drc20.Operation) (*Decision, error) {
	switch op := op.(type) {
	case drc20.Deploy:
		return e.evaluateDeploy(op)
	case drc20.Mint:
		return e.evaluateMint(op)
	case drc20.InscribeTransfer:
		return e.evaluateInscribeTransfer(op)
	case drc20.Transfer:
		return e.evaluateTransfer(op)
	}
	return nil, errors.Wrapf(errs.Unsupported, "unknown operation kind %q", op.Kind())
}

func (e *Engine) evaluateDeploy(op drc20.Deploy) (*Decision, error) {
	if _, ok := e.registry.Get(op.Tick); ok {
		return nil, errors.WithStack(drc20.ErrDuplicateTicker)
	}
	if op.MaxSupply.IsZero() || op.Decimals > drc20.MaxDecimals {
		return nil, errors.WithStack(drc20.ErrInvalidSupply)
	}
	if op.LimitPerMint.IsZero() || op.LimitPerMint.Cmp(op.MaxSupply) > 0 {
		return nil, errors.WithStack(drc20.ErrInvalidMintLimit)
	}

	entry := &entity.TickEntry{
		Tick:                op.Tick,
		OriginalTick:        op.OriginalTick,
		TotalSupply:         op.MaxSupply,
		LimitPerMint:        op.LimitPerMint,
		Decimals:            op.Decimals,
		Deployer:            op.Deployer,
		DeployInscriptionId: op.InscriptionId,
		DeployTxHash:        op.TxHash,
		DeployedAt:          op.Timestamp,
		DeployedAtHeight:    op.BlockHeight,
		MintedAmount:        uint128.Zero,
	}
	return &Decision{
		Event: drc20.DeployEvent{
			Supply:       op.MaxSupply,
			LimitPerMint: op.LimitPerMint,
			Decimals:     op.Decimals,
		},
		changes: []stateChange{{
			kind:  changeRegisterTick,
			tick:  op.Tick,
			entry: entry,
		}},
	}, nil
}

func (e *Engine) evaluateMint(op drc20.Mint) (*Decision, error) {
	entry, ok := e.registry.Get(op.Tick)
	if !ok {
		return nil, errors.WithStack(drc20.ErrTickerNotFound)
	}
	if op.Amount.Cmp(entry.LimitPerMint) > 0 {
		return nil, errors.WithStack(drc20.ErrMintLimitExceeded)
	}
	remaining := entry.TotalSupply.Sub(entry.MintedAmount)
	if remaining.IsZero() {
		return nil, errors.WithStack(drc20.ErrSupplyExhausted)
	}

	// last mint takes the remainder instead of being rejected
	effective := op.Amount
	clipped := false
	if effective.Cmp(remaining) > 0 {
		effective = remaining
		clipped = true
	}

	balance := e.balances.Get(op.Minter, op.Tick)
	if _, carry := balance.OverallBalance.AddOverflow(effective); carry {
		return nil, errors.Wrapf(errs.OverflowUint128, "mint would overflow overall balance for %s/%s", op.Minter, op.Tick)
	}
	return &Decision{
		Event: drc20.MintEvent{
			Amount:  effective,
			Clipped: clipped,
		},
		changes: []stateChange{
			{
				kind:   changeRecordMint,
				tick:   op.Tick,
				amount: effective,
				height: op.BlockHeight,
				at:     op.Timestamp,
			},
			{
				kind:   changeCredit,
				tick:   op.Tick,
				owner:  op.Minter,
				amount: effective,
			},
		},
	}, nil
}

func (e *Engine) evaluateInscribeTransfer(op drc20.InscribeTransfer) (*Decision, error) {
	if _, ok := e.registry.Get(op.Tick); !ok {
		return nil, errors.WithStack(drc20.ErrTickerNotFound)
	}
	balance := e.balances.Get(op.Owner, op.Tick)
	if op.Amount.Cmp(balance.Available()) > 0 {
		return nil, errors.WithStack(drc20.ErrInsufficientBalance)
	}

	transfer := &entity.InscribedTransfer{
		InscriptionId: op.InscriptionId,
		Tick:          op.Tick,
		OriginalTick:  op.OriginalTick,
		Owner:         op.Owner,
		Amount:        op.Amount,
		BlockHeight:   op.BlockHeight,
	}
	return &Decision{
		Event: drc20.InscribeTransferEvent{
			Tick:   op.Tick,
			Amount: op.Amount,
		},
		changes: []stateChange{
			{
				kind:   changeLock,
				tick:   op.Tick,
				owner:  op.Owner,
				amount: op.Amount,
			},
			{
				kind:     changeRecordTransfer,
				transfer: transfer,
			},
		},
	}, nil
}

func (e *Engine) evaluateTransfer(op drc20.Transfer) (*Decision, error) {
	transfer, ok := e.transfers.Get(op.InscriptionId)
	if !ok {
		return nil, errors.WithStack(drc20.ErrTransferInscriptionNotFound)
	}
	balance := e.balances.Get(transfer.Owner, transfer.Tick)
	if balance.TransferableBalance.Cmp(transfer.Amount) < 0 {
		return nil, errors.Wrapf(errs.InternalState, "transferable balance below inscribed amount for %s/%s", transfer.Owner, transfer.Tick)
	}

	changes := []stateChange{{
		kind:     changeConsumeTransfer,
		transfer: &transfer,
	}}

	// spending back to the inscriber (or burning as fee) cancels the
	// transfer: the locked amount returns to full availability
	cancelled := op.SpentAsFee || op.To == transfer.Owner
	if cancelled {
		changes = append(changes, stateChange{
			kind:   changeUnlock,
			tick:   transfer.Tick,
			owner:  transfer.Owner,
			amount: transfer.Amount,
		})
	} else {
		to := e.balances.Get(op.To, transfer.Tick)
		if _, carry := to.OverallBalance.AddOverflow(transfer.Amount); carry {
			return nil, errors.Wrapf(errs.OverflowUint128, "transfer would overflow overall balance for %s/%s", op.To, transfer.Tick)
		}
		changes = append(changes, stateChange{
			kind:    changeMove,
			tick:    transfer.Tick,
			owner:   transfer.Owner,
			toOwner: op.To,
			amount:  transfer.Amount,
		})
	}
	return &Decision{
		Event: drc20.TransferEvent{
			Tick:      transfer.Tick,
			Amount:    transfer.Amount,
			Cancelled: cancelled,
		},
		changes: changes,
	}, nil
}

type changeKind uint8

const (
	changeRegisterTick changeKind = iota + 1
	changeRecordMint
	changeCredit
	changeLock
	changeUnlock
	changeMove
	changeRecordTransfer
	changeConsumeTransfer
)

// stateChange is one reversible mutation instruction. The applier applies
// them in order and journals them so undo can revert each one exactly.
type stateChange struct {
	kind     changeKind
	tick     drc20.Tick
	owner    drc20.OwnerId
	toOwner  drc20.OwnerId
	amount   uint128.Uint128
	entry    *entity.TickEntry
	transfer *entity.InscribedTransfer
	height   uint64
	at       time.Time
}
