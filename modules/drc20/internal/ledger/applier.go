package ledger

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
)

// Applier owns the ledger state. It feeds operations through the engine in
// caller-supplied order, applies accepted state changes, and appends exactly
// one receipt per operation. Each applied operation's changes are journaled
// so UndoFrom can revert them exactly during a chain reorganization.
//
// Reads may run concurrently with writes and always observe whole operations,
// never a half-applied one.
type Applier struct {
	mu        sync.RWMutex
	registry  *Registry
	balances  *BalanceStore
	transfers *TransferStore
	engine    *Engine
	log       *ReceiptLog

	journal []journalEntry
	// journalFloor is the lowest height the journal can undo to. Zero means
	// nothing has been applied yet.
	journalFloor uint64
	// restored marks state seeded from persistent storage. Restored state is
	// not journaled, so an empty journal no longer implies an empty ledger and
	// undo below the floor must fail instead of no-opping.
	restored bool
}

type journalEntry struct {
	height  uint64
	changes []stateChange
}

func NewApplier() *Applier {
	registry := NewRegistry()
	balances := NewBalanceStore()
	transfers := NewTransferStore()
	return &Applier{
		registry:  registry,
		balances:  balances,
		transfers: transfers,
		engine:    NewEngine(registry, balances, transfers),
		log:       NewReceiptLog(),
	}
}

// Apply processes ops, already in canonical order, against the ledger at
// height. It returns one receipt per processed operation. Protocol rejections
// are recorded in receipts and do not stop the batch; any other error means
// the ledger state can no longer be trusted and processing must stop. The
// receipts returned alongside such an error cover the operations applied
// before the failure.
func (a *Applier) Apply(ops []drc20.Operation, height uint64) ([]*drc20.Receipt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.journal); n > 0 && height < a.journal[n-1].height {
		return nil, errors.Wrapf(errs.InternalState, "cannot apply height %d below last applied height %d", height, a.journal[n-1].height)
	}
	if a.journalFloor == 0 {
		a.journalFloor = height
	}

	receipts := make([]*drc20.Receipt, 0, len(ops))
	for _, op := range ops {
		receipt := newReceipt(op)
		decision, err := a.engine.Evaluate(op)
		if err != nil {
			var protocolErr drc20.Error
			if !errors.As(err, &protocolErr) {
				return receipts, errors.WithStack(err)
			}
			receipt.Err = protocolErr
			a.log.Append(receipt)
			receipts = append(receipts, receipt)
			continue
		}

		for _, change := range decision.changes {
			if err := a.applyChange(change); err != nil {
				return receipts, errors.WithStack(err)
			}
		}
		receipt.Event = decision.Event
		enrichReceipt(receipt, decision)
		a.journal = append(a.journal, journalEntry{height: height, changes: decision.changes})
		a.log.Append(receipt)
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// UndoFrom restores the ledger to its state immediately before the first
// operation at height was applied, reverting journaled changes in reverse
// order and truncating the receipt log. A failure here is fatal: the caller
// must rebuild state from storage instead of retrying.
func (a *Applier) UndoFrom(height uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.canUndoTo(height) {
		return errors.Wrapf(errs.NotFound, "journal does not reach height %d", height)
	}
	for len(a.journal) > 0 {
		entry := a.journal[len(a.journal)-1]
		if entry.height < height {
			break
		}
		for i := len(entry.changes) - 1; i >= 0; i-- {
			if err := a.revertChange(entry.changes[i]); err != nil {
				return errors.Wrapf(err, "undo failed at height %d", entry.height)
			}
		}
		a.journal = a.journal[:len(a.journal)-1]
	}
	a.log.TruncateSinceHeight(height)
	return nil
}

// CanUndoTo reports whether the in-memory journal still covers every applied
// operation at or above height.
func (a *Applier) CanUndoTo(height uint64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.canUndoTo(height)
}

func (a *Applier) canUndoTo(height uint64) bool {
	if a.journalFloor == 0 {
		return !a.restored
	}
	return height >= a.journalFloor
}

// TrimJournalBelow drops journal entries below height to bound memory. After
// trimming, UndoFrom can no longer reach below height.
func (a *Applier) TrimJournalBelow(height uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := 0
	for idx < len(a.journal) && a.journal[idx].height < height {
		idx++
	}
	a.journal = a.journal[idx:]
	if a.journalFloor != 0 && height > a.journalFloor {
		a.journalFloor = height
	}
}

// BalanceOf returns the current balance of (owner, tick), zeroed if the owner
// holds nothing.
func (a *Applier) BalanceOf(owner drc20.OwnerId, tick drc20.Tick) entity.Balance {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balances.Get(owner, tick)
}

// TickerInfo returns the registry entry for tick, if deployed.
func (a *Applier) TickerInfo(tick drc20.Tick) (entity.TickEntry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.registry.Get(tick)
}

// InscribedTransfer returns the pending transfer inscription with id, if any.
func (a *Applier) InscribedTransfer(id ordinals.InscriptionId) (entity.InscribedTransfer, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.transfers.Get(id)
}

// ReceiptsForTransaction returns all receipts for txHash in application order.
func (a *Applier) ReceiptsForTransaction(txHash chainhash.Hash) []*drc20.Receipt {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.log.ByTransaction(txHash)
}

// EventsForTick pages through a tick's receipt history within the height
// range. See ReceiptLog.ByTick.
func (a *Applier) EventsForTick(tick drc20.Tick, fromHeight, toHeight uint64, limit, offset int) []*drc20.Receipt {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.log.ByTick(tick, fromHeight, toHeight, limit, offset)
}

// ReceiptsSinceHeight returns all receipts at or above height.
func (a *Applier) ReceiptsSinceHeight(height uint64) []*drc20.Receipt {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.log.SinceHeight(height)
}

// ReceiptCount returns the number of receipts in the log.
func (a *Applier) ReceiptCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.log.Len()
}

// RestoreTickEntry seeds registry state loaded from persistent storage. Only
// valid before forward processing starts.
func (a *Applier) RestoreTickEntry(entry entity.TickEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restored = true
	a.registry.Restore(entry)
}

// RestoreBalance seeds balance state loaded from persistent storage.
func (a *Applier) RestoreBalance(balance entity.Balance) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restored = true
	a.balances.Restore(balance)
}

// RestoreInscribedTransfer seeds a pending transfer loaded from persistent
// storage.
func (a *Applier) RestoreInscribedTransfer(transfer entity.InscribedTransfer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.restored = true
	a.transfers.Restore(transfer)
}

func (a *Applier) applyChange(c stateChange) error {
	switch c.kind {
	case changeRegisterTick:
		return a.registry.register(c.entry)
	case changeRecordMint:
		return a.registry.recordMint(c.tick, c.amount, c.height, c.at)
	case changeCredit:
		return a.balances.creditOverall(c.owner, c.tick, c.amount)
	case changeLock:
		return a.balances.lockTransferable(c.owner, c.tick, c.amount)
	case changeUnlock:
		return a.balances.unlockTransferable(c.owner, c.tick, c.amount)
	case changeMove:
		return a.balances.moveTransfer(c.owner, c.toOwner, c.tick, c.amount)
	case changeRecordTransfer:
		return a.transfers.put(c.transfer)
	case changeConsumeTransfer:
		return a.transfers.remove(c.transfer.InscriptionId)
	}
	return errors.Wrapf(errs.InternalState, "unknown state change kind %d", c.kind)
}

func (a *Applier) revertChange(c stateChange) error {
	switch c.kind {
	case changeRegisterTick:
		return a.registry.deregister(c.tick)
	case changeRecordMint:
		return a.registry.unrecordMint(c.tick, c.amount)
	case changeCredit:
		return a.balances.debitOverall(c.owner, c.tick, c.amount)
	case changeLock:
		return a.balances.unlockTransferable(c.owner, c.tick, c.amount)
	case changeUnlock:
		return a.balances.relockTransferable(c.owner, c.tick, c.amount)
	case changeMove:
		return a.balances.moveTransferBack(c.owner, c.toOwner, c.tick, c.amount)
	case changeRecordTransfer:
		return a.transfers.remove(c.transfer.InscriptionId)
	case changeConsumeTransfer:
		restored := *c.transfer
		return a.transfers.put(&restored)
	}
	return errors.Wrapf(errs.InternalState, "unknown state change kind %d", c.kind)
}

func newReceipt(op drc20.Operation) *drc20.Receipt {
	receipt := &drc20.Receipt{
		OperationMeta: op.Meta(),
		Kind:          op.Kind(),
	}
	switch op := op.(type) {
	case drc20.Deploy:
		receipt.Tick = op.Tick
		receipt.OriginalTick = op.OriginalTick
		receipt.From = op.Deployer
		receipt.To = op.Deployer
	case drc20.Mint:
		receipt.Tick = op.Tick
		receipt.OriginalTick = op.OriginalTick
		receipt.From = op.Minter
		receipt.To = op.Minter
	case drc20.InscribeTransfer:
		receipt.Tick = op.Tick
		receipt.OriginalTick = op.OriginalTick
		receipt.From = op.Owner
		receipt.To = op.Owner
	case drc20.Transfer:
		receipt.From = op.From
		receipt.To = op.To
	}
	return receipt
}

// enrichReceipt backfills tick information that only the engine could
// resolve, such as the tick behind a spent transfer inscription.
func enrichReceipt(receipt *drc20.Receipt, decision *Decision) {
	if receipt.Tick != "" {
		return
	}
	for _, change := range decision.changes {
		if change.kind == changeConsumeTransfer {
			receipt.Tick = change.transfer.Tick
			receipt.OriginalTick = change.transfer.OriginalTick
			return
		}
	}
}
