package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerA = drc20.OwnerId("76a914000000000000000000000000000000000000000188ac")
	ownerB = drc20.OwnerId("76a914000000000000000000000000000000000000000288ac")
)

func u(n uint64) uint128.Uint128 {
	return uint128.From64(n)
}

func testMeta(height uint64, txIndex uint32) drc20.OperationMeta {
	txHash := chainhash.HashH([]byte(fmt.Sprintf("tx-%d-%d", height, txIndex)))
	return drc20.OperationMeta{
		InscriptionId: ordinals.NewInscriptionId(txHash, 0),
		TxHash:        txHash,
		BlockHeight:   height,
		TxIndex:       txIndex,
		Timestamp:     time.Unix(1700000000+int64(height), 0),
	}
}

func deployOp(height uint64, txIndex uint32, tick string, max, lim uint64, decimals uint16) drc20.Deploy {
	return drc20.Deploy{
		OperationMeta: testMeta(height, txIndex),
		Tick:          drc20.Tick(tick),
		OriginalTick:  tick,
		MaxSupply:     u(max),
		LimitPerMint:  u(lim),
		Decimals:      decimals,
		Deployer:      ownerA,
	}
}

func mintOp(height uint64, txIndex uint32, tick string, amount uint64, minter drc20.OwnerId) drc20.Mint {
	return drc20.Mint{
		OperationMeta: testMeta(height, txIndex),
		Tick:          drc20.Tick(tick),
		OriginalTick:  tick,
		Amount:        u(amount),
		Minter:        minter,
	}
}

func inscribeOp(height uint64, txIndex uint32, tick string, amount uint64, owner drc20.OwnerId) drc20.InscribeTransfer {
	return drc20.InscribeTransfer{
		OperationMeta: testMeta(height, txIndex),
		Tick:          drc20.Tick(tick),
		OriginalTick:  tick,
		Amount:        u(amount),
		Owner:         owner,
	}
}

func transferOp(inscribe drc20.InscribeTransfer, height uint64, txIndex uint32, from, to drc20.OwnerId) drc20.Transfer {
	meta := testMeta(height, txIndex)
	meta.InscriptionId = inscribe.InscriptionId
	return drc20.Transfer{
		OperationMeta: meta,
		From:          from,
		To:            to,
	}
}

func TestApplierFullScenario(t *testing.T) {
	applier := NewApplier()

	inscribe := inscribeOp(102, 0, "food", 60, ownerA)
	receipts, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
		mintOp(101, 0, "food", 60, ownerA),
	}, 100)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	for _, receipt := range receipts {
		assert.True(t, receipt.Valid())
	}

	receipts, err = applier.Apply([]drc20.Operation{inscribe}, 102)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.True(t, receipts[0].Valid())

	balance := applier.BalanceOf(ownerA, "food")
	assert.Equal(t, u(60), balance.OverallBalance)
	assert.Equal(t, u(60), balance.TransferableBalance)

	receipts, err = applier.Apply([]drc20.Operation{
		transferOp(inscribe, 103, 0, ownerA, ownerB),
	}, 103)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.True(t, receipts[0].Valid())
	assert.Equal(t, drc20.Tick("food"), receipts[0].Tick)

	balanceA := applier.BalanceOf(ownerA, "food")
	assert.True(t, balanceA.OverallBalance.IsZero())
	assert.True(t, balanceA.TransferableBalance.IsZero())
	balanceB := applier.BalanceOf(ownerB, "food")
	assert.Equal(t, u(60), balanceB.OverallBalance)
	assert.True(t, balanceB.TransferableBalance.IsZero())

	entry, ok := applier.TickerInfo("food")
	require.True(t, ok)
	assert.Equal(t, u(60), entry.MintedAmount)
}

func TestApplierMintPartialFill(t *testing.T) {
	applier := NewApplier()

	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 1000, 0),
		mintOp(100, 1, "food", 960, ownerA),
	}, 100)
	require.NoError(t, err)

	receipts, err := applier.Apply([]drc20.Operation{
		mintOp(101, 0, "food", 950, ownerB),
	}, 101)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.True(t, receipts[0].Valid())
	event, ok := receipts[0].Event.(drc20.MintEvent)
	require.True(t, ok)
	assert.Equal(t, u(40), event.Amount)
	assert.True(t, event.Clipped)
	assert.Equal(t, u(40), applier.BalanceOf(ownerB, "food").OverallBalance)

	entry, ok := applier.TickerInfo("food")
	require.True(t, ok)
	assert.Equal(t, entry.TotalSupply, entry.MintedAmount)
	assert.Equal(t, uint64(101), entry.CompletedAtHeight)

	// fully minted, every further mint is rejected
	receipts, err = applier.Apply([]drc20.Operation{
		mintOp(102, 0, "food", 1, ownerA),
	}, 102)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.False(t, receipts[0].Valid())
	assert.Equal(t, drc20.ErrSupplyExhausted, receipts[0].Err)
}

func TestApplierRejections(t *testing.T) {
	applier := NewApplier()

	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
	}, 100)
	require.NoError(t, err)

	tests := []struct {
		name    string
		op      drc20.Operation
		wantErr drc20.Error
	}{
		{"duplicate deploy", deployOp(101, 0, "food", 500, 50, 0), drc20.ErrDuplicateTicker},
		{"zero max supply", deployOp(101, 1, "barx", 0, 1, 0), drc20.ErrInvalidSupply},
		{"limit above max", deployOp(101, 2, "bary", 100, 200, 0), drc20.ErrInvalidMintLimit},
		{"mint unknown tick", mintOp(101, 3, "nope", 1, ownerA), drc20.ErrTickerNotFound},
		{"mint above limit", mintOp(101, 4, "food", 101, ownerA), drc20.ErrMintLimitExceeded},
		{"inscribe unknown tick", inscribeOp(101, 5, "nope", 1, ownerA), drc20.ErrTickerNotFound},
		{"inscribe above available", inscribeOp(101, 6, "food", 1, ownerA), drc20.ErrInsufficientBalance},
		{"transfer unknown inscription", transferOp(inscribeOp(101, 7, "food", 1, ownerA), 101, 7, ownerA, ownerB), drc20.ErrTransferInscriptionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipts, err := applier.Apply([]drc20.Operation{tt.op}, 101)
			require.NoError(t, err)
			require.Len(t, receipts, 1)
			assert.False(t, receipts[0].Valid())
			assert.Equal(t, tt.wantErr, receipts[0].Err)
		})
	}

	// rejected operations must not mutate state
	entry, ok := applier.TickerInfo("food")
	require.True(t, ok)
	assert.Equal(t, u(1000), entry.TotalSupply)
	assert.True(t, entry.MintedAmount.IsZero())
	assert.True(t, applier.BalanceOf(ownerA, "food").OverallBalance.IsZero())
	_, ok = applier.TickerInfo("barx")
	assert.False(t, ok)
}

func TestApplierSelfTransferCancels(t *testing.T) {
	applier := NewApplier()

	inscribe := inscribeOp(101, 1, "food", 40, ownerA)
	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
		mintOp(101, 0, "food", 100, ownerA),
	}, 100)
	require.NoError(t, err)
	_, err = applier.Apply([]drc20.Operation{inscribe}, 101)
	require.NoError(t, err)
	require.Equal(t, u(40), applier.BalanceOf(ownerA, "food").TransferableBalance)

	receipts, err := applier.Apply([]drc20.Operation{
		transferOp(inscribe, 102, 0, ownerA, ownerA),
	}, 102)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	event, ok := receipts[0].Event.(drc20.TransferEvent)
	require.True(t, ok)
	assert.True(t, event.Cancelled)

	balance := applier.BalanceOf(ownerA, "food")
	assert.Equal(t, u(100), balance.OverallBalance)
	assert.True(t, balance.TransferableBalance.IsZero())

	// the inscription is consumed, spending it again fails
	receipts, err = applier.Apply([]drc20.Operation{
		transferOp(inscribe, 103, 0, ownerA, ownerB),
	}, 103)
	require.NoError(t, err)
	assert.Equal(t, drc20.ErrTransferInscriptionNotFound, receipts[0].Err)
}

func TestApplierUndoReplayIdempotence(t *testing.T) {
	applier := NewApplier()

	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 1000, 0),
		mintOp(100, 1, "food", 500, ownerA),
	}, 100)
	require.NoError(t, err)

	inscribe := inscribeOp(101, 0, "food", 200, ownerA)
	ops101 := []drc20.Operation{
		inscribe,
		mintOp(101, 1, "food", 600, ownerB), // clipped to 500
	}
	ops102 := []drc20.Operation{
		transferOp(inscribe, 102, 0, ownerA, ownerB),
		mintOp(102, 1, "food", 1, ownerA), // supply exhausted
	}

	firstReceipts101, err := applier.Apply(ops101, 101)
	require.NoError(t, err)
	firstReceipts102, err := applier.Apply(ops102, 102)
	require.NoError(t, err)

	snapshotA := applier.BalanceOf(ownerA, "food")
	snapshotB := applier.BalanceOf(ownerB, "food")
	snapshotEntry, _ := applier.TickerInfo("food")
	receiptCount := applier.ReceiptCount()

	require.True(t, applier.CanUndoTo(101))
	require.NoError(t, applier.UndoFrom(101))

	// back to the state right after height 100
	assert.Equal(t, u(500), applier.BalanceOf(ownerA, "food").OverallBalance)
	assert.True(t, applier.BalanceOf(ownerA, "food").TransferableBalance.IsZero())
	assert.True(t, applier.BalanceOf(ownerB, "food").OverallBalance.IsZero())
	entry, _ := applier.TickerInfo("food")
	assert.Equal(t, u(500), entry.MintedAmount)
	assert.True(t, entry.CompletedAt.IsZero())
	assert.Equal(t, 2, applier.ReceiptCount())

	// replaying the identical operations reproduces identical state
	replayReceipts101, err := applier.Apply(ops101, 101)
	require.NoError(t, err)
	replayReceipts102, err := applier.Apply(ops102, 102)
	require.NoError(t, err)

	assert.Equal(t, firstReceipts101, replayReceipts101)
	assert.Equal(t, firstReceipts102, replayReceipts102)
	assert.Equal(t, snapshotA, applier.BalanceOf(ownerA, "food"))
	assert.Equal(t, snapshotB, applier.BalanceOf(ownerB, "food"))
	replayEntry, _ := applier.TickerInfo("food")
	assert.Equal(t, snapshotEntry, replayEntry)
	assert.Equal(t, receiptCount, applier.ReceiptCount())
}

func TestApplierUndoDeploy(t *testing.T) {
	applier := NewApplier()

	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
	}, 100)
	require.NoError(t, err)
	require.NoError(t, applier.UndoFrom(100))

	_, ok := applier.TickerInfo("food")
	assert.False(t, ok)
	assert.Zero(t, applier.ReceiptCount())
}

func TestApplierOneReceiptPerOperation(t *testing.T) {
	applier := NewApplier()

	ops := []drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
		deployOp(100, 1, "food", 1000, 100, 0), // duplicate
		mintOp(100, 2, "food", 100, ownerA),
		mintOp(100, 3, "food", 200, ownerA), // above limit
	}
	receipts, err := applier.Apply(ops, 100)
	require.NoError(t, err)
	require.Len(t, receipts, len(ops))
	assert.Equal(t, len(ops), applier.ReceiptCount())
}

func TestApplierJournalTrim(t *testing.T) {
	applier := NewApplier()

	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
	}, 100)
	require.NoError(t, err)
	_, err = applier.Apply([]drc20.Operation{
		mintOp(101, 0, "food", 100, ownerA),
	}, 101)
	require.NoError(t, err)

	applier.TrimJournalBelow(101)
	assert.False(t, applier.CanUndoTo(100))
	assert.True(t, applier.CanUndoTo(101))

	err = applier.UndoFrom(100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.NotFound))
}

func TestApplierRestoredStateUndoBelowFloor(t *testing.T) {
	// simulates a restart: state is rebuilt from storage, the journal is empty
	applier := NewApplier()
	applier.RestoreTickEntry(entity.TickEntry{
		Tick:         "food",
		OriginalTick: "food",
		TotalSupply:  u(1000),
		MintedAmount: u(700),
		LimitPerMint: u(1000),
	})
	applier.RestoreBalance(entity.Balance{
		Owner:          ownerA,
		Tick:           "food",
		BlockHeight:    998,
		OverallBalance: u(700),
	})

	// a reorg below the restored height cannot be undone from the journal;
	// the caller must rebuild from storage instead
	assert.False(t, applier.CanUndoTo(995))
	err := applier.UndoFrom(995)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.NotFound))

	// forward processing after the restore journals as usual
	_, err = applier.Apply([]drc20.Operation{
		mintOp(1000, 0, "food", 100, ownerB),
	}, 1000)
	require.NoError(t, err)
	assert.True(t, applier.CanUndoTo(1000))
	assert.False(t, applier.CanUndoTo(999))

	require.NoError(t, applier.UndoFrom(1000))
	entry, ok := applier.TickerInfo("food")
	require.True(t, ok)
	assert.Equal(t, u(700), entry.MintedAmount)
	assert.True(t, applier.BalanceOf(ownerB, "food").OverallBalance.IsZero())
}

func TestBalanceStoreCreditOverflow(t *testing.T) {
	balances := NewBalanceStore()

	require.NoError(t, balances.creditOverall(ownerA, "food", uint128.Max))
	err := balances.creditOverall(ownerA, "food", u(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.OverflowUint128))
	assert.Equal(t, uint128.Max, balances.Get(ownerA, "food").OverallBalance)
}

func TestApplierHeightMustNotDecrease(t *testing.T) {
	applier := NewApplier()

	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
	}, 100)
	require.NoError(t, err)

	_, err = applier.Apply([]drc20.Operation{
		mintOp(99, 0, "food", 1, ownerA),
	}, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.InternalState))
}

func TestReceiptLogQueries(t *testing.T) {
	applier := NewApplier()

	mint := mintOp(101, 0, "food", 100, ownerA)
	_, err := applier.Apply([]drc20.Operation{
		deployOp(100, 0, "food", 1000, 100, 0),
	}, 100)
	require.NoError(t, err)
	_, err = applier.Apply([]drc20.Operation{mint}, 101)
	require.NoError(t, err)

	byTx := applier.ReceiptsForTransaction(mint.TxHash)
	require.Len(t, byTx, 1)
	assert.Equal(t, drc20.OperationKindMint, byTx[0].Kind)

	all := applier.EventsForTick("food", 0, 200, 0, 0)
	require.Len(t, all, 2)
	assert.Equal(t, drc20.OperationKindDeploy, all[0].Kind)

	// pagination resumes where the previous page stopped
	page1 := applier.EventsForTick("food", 0, 200, 1, 0)
	page2 := applier.EventsForTick("food", 0, 200, 1, 1)
	require.Len(t, page1, 1)
	require.Len(t, page2, 1)
	assert.NotEqual(t, page1[0].Kind, page2[0].Kind)

	onlyHeight101 := applier.EventsForTick("food", 101, 101, 0, 0)
	require.Len(t, onlyHeight101, 1)
	assert.Equal(t, drc20.OperationKindMint, onlyHeight101[0].Kind)
}
