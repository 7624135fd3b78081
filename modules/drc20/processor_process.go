package drc20

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/core/types"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger/slogx"
	"github.com/gaze-network/uint128"
)

// keepJournalDepth bounds the in-memory undo journal. Reorgs deeper than this
// fall back to rebuilding the ledger from storage.
const keepJournalDepth = 1000

// Process implements indexer.Processor.
func (p *Processor) Process(ctx context.Context, blocks []*entity.InscriptionBlock) error {
	for _, block := range blocks {
		ctx := logger.WithContext(ctx, slogx.Int64("height", block.Header.Height))
		logger.DebugContext(ctx, "Processing new block", slogx.Int("transfers", len(block.Transfers)))

		// sort transfers by tx index, then fee-spends, then output position
		transfers := slices.Clone(block.Transfers)
		slices.SortFunc(transfers, func(t1, t2 *entity.InscriptionTransfer) int {
			if t1.TxIndex != t2.TxIndex {
				return int(t1.TxIndex) - int(t2.TxIndex)
			}
			if t1.SentAsFee != t2.SentAsFee {
				// transfers sent as fee should be ordered after non-fees
				if t1.SentAsFee {
					return 1
				}
				return -1
			}
			if t1.NewSatPoint.OutPoint.Index != t2.NewSatPoint.OutPoint.Index {
				return int(t1.NewSatPoint.OutPoint.Index) - int(t2.NewSatPoint.OutPoint.Index)
			}
			return int(t1.NewSatPoint.Offset) - int(t2.NewSatPoint.Offset)
		})

		blockHeight := uint64(block.Header.Height)
		receipts := make([]*drc20.Receipt, 0)
		for _, transfer := range transfers {
			// operations must be resolved one at a time: a mint's decimals may
			// depend on a deploy applied earlier in the same block
			op, ok := p.makeOperation(transfer)
			if !ok {
				continue
			}
			opReceipts, err := p.applier.Apply([]drc20.Operation{op}, blockHeight)
			receipts = append(receipts, opReceipts...)
			if err != nil {
				return errors.Wrap(err, "ledger apply failed")
			}
		}

		if err := p.flushBlock(ctx, block.Header, receipts); err != nil {
			return errors.Wrap(err, "failed to flush block")
		}
		if blockHeight > keepJournalDepth {
			p.applier.TrimJournalBelow(blockHeight - keepJournalDepth)
		}
		logger.DebugContext(ctx, "Inserted new block", slogx.Int("receipts", len(receipts)))
	}
	return nil
}

// makeOperation resolves one inscription transfer into a token operation. The
// second return value is false when the transfer is not a drc-20 operation:
// an unparseable reveal, a later hop of an already-spent inscription, or a
// spend of an inscription the ledger is not tracking.
func (p *Processor) makeOperation(transfer *entity.InscriptionTransfer) (drc20.Operation, bool) {
	meta := drc20.OperationMeta{
		InscriptionId:     transfer.InscriptionId,
		InscriptionNumber: transfer.InscriptionNumber,
		OldSatPoint:       transfer.OldSatPoint,
		NewSatPoint:       transfer.NewSatPoint,
		TxHash:            transfer.TxHash,
		BlockHeight:       transfer.BlockHeight,
		TxIndex:           transfer.TxIndex,
		Timestamp:         transfer.Timestamp,
	}

	switch transfer.TransferCount {
	case 1: // reveal
		payload, err := drc20.ParsePayload(transfer.Content)
		if err != nil {
			// not a drc-20 inscription
			return nil, false
		}
		owner := drc20.NewOwnerIdFromPkScript(transfer.NewPkScript)
		switch payload.Op {
		case drc20.PayloadOpDeploy:
			maxSupply, err := drc20.ScaleToUint128(payload.Max, payload.Dec)
			if err != nil {
				return nil, false
			}
			limitPerMint, err := drc20.ScaleToUint128(payload.Lim, payload.Dec)
			if err != nil {
				return nil, false
			}
			return drc20.Deploy{
				OperationMeta: meta,
				Tick:          payload.Tick,
				OriginalTick:  payload.OriginalTick,
				MaxSupply:     maxSupply,
				LimitPerMint:  limitPerMint,
				Decimals:      payload.Dec,
				Deployer:      owner,
			}, true
		case drc20.PayloadOpMint:
			amount, ok := p.scaleAmount(payload)
			if !ok {
				return nil, false
			}
			return drc20.Mint{
				OperationMeta: meta,
				Tick:          payload.Tick,
				OriginalTick:  payload.OriginalTick,
				Amount:        amount,
				Minter:        owner,
			}, true
		case drc20.PayloadOpTransfer:
			amount, ok := p.scaleAmount(payload)
			if !ok {
				return nil, false
			}
			return drc20.InscribeTransfer{
				OperationMeta: meta,
				Tick:          payload.Tick,
				OriginalTick:  payload.OriginalTick,
				Amount:        amount,
				Owner:         owner,
			}, true
		}
		return nil, false
	case 2: // first spend of the inscription
		if _, ok := p.applier.InscribedTransfer(transfer.InscriptionId); !ok {
			// not a pending drc-20 transfer inscription
			return nil, false
		}
		return drc20.Transfer{
			OperationMeta: meta,
			From:          drc20.NewOwnerIdFromPkScript(transfer.FromPkScript),
			To:            drc20.NewOwnerIdFromPkScript(transfer.NewPkScript),
			SpentAsFee:    transfer.SentAsFee,
		}, true
	}
	// subsequent hops carry no token meaning
	return nil, false
}

// scaleAmount converts a payload amount to the tick's integer representation.
// When the tick is unknown the amount is scaled with the maximum precision so
// the operation still reaches the ledger and is rejected there with a receipt.
func (p *Processor) scaleAmount(payload *drc20.Payload) (amount uint128.Uint128, ok bool) {
	decimals := uint16(drc20.MaxDecimals)
	if entry, found := p.applier.TickerInfo(payload.Tick); found {
		if !drc20.IsAmountWithinDecimals(payload.Amt, entry.Decimals) {
			return uint128.Zero, false
		}
		decimals = entry.Decimals
	}
	amount, err := drc20.ScaleToUint128(payload.Amt, decimals)
	if err != nil {
		return uint128.Zero, false
	}
	if amount.IsZero() {
		return uint128.Zero, false
	}
	return amount, true
}

func (p *Processor) flushBlock(ctx context.Context, blockHeader types.BlockHeader, receipts []*drc20.Receipt) error {
	drc20DgTx, err := p.drc20Dg.BeginDRC20Tx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := drc20DgTx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction",
				slogx.Error(err),
				slogx.String("event", "rollback_drc20_insertion"),
			)
		}
	}()

	blockHeight := uint64(blockHeader.Height)

	// calculate event hash and chain it to the previous block
	{
		eventStrings := make([]string, 0, len(receipts))
		for _, receipt := range receipts {
			if !receipt.Valid() {
				continue
			}
			var decimals uint16
			if entry, ok := p.applier.TickerInfo(receipt.Tick); ok {
				decimals = entry.Decimals
			}
			eventStrings = append(eventStrings, getReceiptString(receipt, decimals))
		}
		eventHash := sha256.Sum256([]byte(strings.Join(eventStrings, eventHashSeparator)))

		prevIndexedBlock, err := drc20DgTx.GetIndexedBlockByHeight(ctx, blockHeight-1)
		if err != nil && errors.Is(err, errs.NotFound) && blockHeader.Height-1 == startingBlockHeader[p.network].Height {
			prevIndexedBlock = &entity.IndexedBlock{
				Height: uint64(startingBlockHeader[p.network].Height),
				Hash:   startingBlockHeader[p.network].Hash,
			}
			err = nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to get previous indexed block")
		}

		var cumulativeEventHash [32]byte
		if prevIndexedBlock.CumulativeEventHash == (chainhash.Hash{}) {
			cumulativeEventHash = eventHash
		} else {
			cumulativeEventHash = sha256.Sum256([]byte(hex.EncodeToString(prevIndexedBlock.CumulativeEventHash[:]) + hex.EncodeToString(eventHash[:])))
		}
		if err := drc20DgTx.CreateIndexedBlock(ctx, &entity.IndexedBlock{
			Height:              blockHeight,
			Hash:                blockHeader.Hash,
			EventHash:           chainhash.Hash(eventHash),
			CumulativeEventHash: chainhash.Hash(cumulativeEventHash),
		}); err != nil {
			return errors.Wrap(err, "failed to create indexed block")
		}
	}

	// flush receipts
	if err := drc20DgTx.CreateReceipts(ctx, receipts); err != nil {
		return errors.Wrap(err, "failed to create receipts")
	}

	// flush new tick entries and minted states
	{
		newTickEntries := make([]*entity.TickEntry, 0)
		touchedTicks := make(map[drc20.Tick]struct{})
		for _, receipt := range receipts {
			if !receipt.Valid() {
				continue
			}
			switch receipt.Kind {
			case drc20.OperationKindDeploy:
				entry, ok := p.applier.TickerInfo(receipt.Tick)
				if !ok {
					return errors.Wrapf(errs.InternalState, "deployed tick %q missing from registry", receipt.Tick)
				}
				newTickEntries = append(newTickEntries, &entry)
				touchedTicks[receipt.Tick] = struct{}{}
			case drc20.OperationKindMint:
				touchedTicks[receipt.Tick] = struct{}{}
			}
		}
		if err := drc20DgTx.CreateTickEntries(ctx, newTickEntries); err != nil {
			return errors.Wrap(err, "failed to create tick entries")
		}

		tickStates := make([]*entity.TickEntry, 0, len(touchedTicks))
		for tick := range touchedTicks {
			entry, ok := p.applier.TickerInfo(tick)
			if !ok {
				return errors.Wrapf(errs.InternalState, "touched tick %q missing from registry", tick)
			}
			tickStates = append(tickStates, &entry)
		}
		if err := drc20DgTx.CreateTickEntryStates(ctx, blockHeight, tickStates); err != nil {
			return errors.Wrap(err, "failed to create tick entry states")
		}
	}

	// flush balances of every (owner, tick) pair the block touched
	{
		type balanceKey struct {
			owner drc20.OwnerId
			tick  drc20.Tick
		}
		touched := make(map[balanceKey]struct{})
		for _, receipt := range receipts {
			if !receipt.Valid() {
				continue
			}
			switch receipt.Kind {
			case drc20.OperationKindMint:
				touched[balanceKey{owner: receipt.To, tick: receipt.Tick}] = struct{}{}
			case drc20.OperationKindInscribeTransfer:
				touched[balanceKey{owner: receipt.From, tick: receipt.Tick}] = struct{}{}
			case drc20.OperationKindTransfer:
				touched[balanceKey{owner: receipt.From, tick: receipt.Tick}] = struct{}{}
				touched[balanceKey{owner: receipt.To, tick: receipt.Tick}] = struct{}{}
			}
		}
		newBalances := make([]*entity.Balance, 0, len(touched))
		for key := range touched {
			balance := p.applier.BalanceOf(key.owner, key.tick)
			balance.BlockHeight = blockHeight
			newBalances = append(newBalances, &balance)
		}
		if err := drc20DgTx.CreateBalances(ctx, newBalances); err != nil {
			return errors.Wrap(err, "failed to create balances")
		}
	}

	// flush pending transfer inscriptions created and spent in this block
	{
		newTransfers := make([]*entity.InscribedTransfer, 0)
		spentIds := make([]ordinals.InscriptionId, 0)
		for _, receipt := range receipts {
			if !receipt.Valid() {
				continue
			}
			switch event := receipt.Event.(type) {
			case drc20.InscribeTransferEvent:
				newTransfers = append(newTransfers, &entity.InscribedTransfer{
					InscriptionId: receipt.InscriptionId,
					Tick:          event.Tick,
					OriginalTick:  receipt.OriginalTick,
					Owner:         receipt.From,
					Amount:        event.Amount,
					BlockHeight:   blockHeight,
				})
			case drc20.TransferEvent:
				spentIds = append(spentIds, receipt.InscriptionId)
			}
		}
		if err := drc20DgTx.CreateInscribedTransfers(ctx, newTransfers); err != nil {
			return errors.Wrap(err, "failed to create inscribed transfers")
		}
		if err := drc20DgTx.SpendInscribedTransfers(ctx, spentIds, blockHeight); err != nil {
			return errors.Wrap(err, "failed to spend inscribed transfers")
		}
	}

	if err := drc20DgTx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
