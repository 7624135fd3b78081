package datagateway

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
)

type DRC20DataGateway interface {
	DRC20ReaderDataGateway
	DRC20WriterDataGateway

	// BeginDRC20Tx returns a new DRC20DataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginDRC20Tx(ctx context.Context) (DRC20DataGatewayWithTx, error)
}

type DRC20DataGatewayWithTx interface {
	DRC20DataGateway
	Tx
}

type DRC20ReaderDataGateway interface {
	// GetLatestIndexedBlock returns the most recently indexed block. Returns errs.NotFound if no block has been indexed yet.
	GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error)
	GetIndexedBlockByHeight(ctx context.Context, height uint64) (*entity.IndexedBlock, error)

	// GetTickEntries returns every deployed tick with its latest minted state.
	GetTickEntries(ctx context.Context) ([]*entity.TickEntry, error)
	// GetTickEntryByTick returns the entry for tick. Returns errs.NotFound if the tick has not been deployed.
	GetTickEntryByTick(ctx context.Context, tick drc20.Tick) (*entity.TickEntry, error)

	// GetLatestBalances returns the latest balance row of every (owner, tick) pair.
	GetLatestBalances(ctx context.Context) ([]*entity.Balance, error)
	// GetBalance returns the latest balance of (owner, tick), zeroed if the owner holds nothing.
	GetBalance(ctx context.Context, owner drc20.OwnerId, tick drc20.Tick) (*entity.Balance, error)
	// GetBalancesByOwner returns the latest balances of owner across all ticks at blockHeight.
	GetBalancesByOwner(ctx context.Context, owner drc20.OwnerId, blockHeight uint64) ([]*entity.Balance, error)
	// CountHoldersByTick returns the number of owners with a non-zero balance of tick.
	CountHoldersByTick(ctx context.Context, tick drc20.Tick) (uint64, error)

	// GetUnspentInscribedTransfers returns every revealed transfer inscription not yet spent.
	GetUnspentInscribedTransfers(ctx context.Context) ([]*entity.InscribedTransfer, error)

	GetReceiptsByTxHash(ctx context.Context, txHash chainhash.Hash) ([]*drc20.Receipt, error)
	// GetReceiptsByTick returns receipts for tick within [fromBlock, toBlock], ordered by application order. Use limit = -1 as no limit.
	GetReceiptsByTick(ctx context.Context, tick drc20.Tick, fromBlock, toBlock uint64, limit, offset int32) ([]*drc20.Receipt, error)
}

type DRC20WriterDataGateway interface {
	CreateIndexedBlock(ctx context.Context, block *entity.IndexedBlock) error
	CreateTickEntries(ctx context.Context, entries []*entity.TickEntry) error
	// CreateTickEntryStates records the minted state of entries at blockHeight.
	CreateTickEntryStates(ctx context.Context, blockHeight uint64, entries []*entity.TickEntry) error
	CreateBalances(ctx context.Context, balances []*entity.Balance) error
	CreateInscribedTransfers(ctx context.Context, transfers []*entity.InscribedTransfer) error
	// SpendInscribedTransfers marks transfers as spent at blockHeight.
	SpendInscribedTransfers(ctx context.Context, ids []ordinals.InscriptionId, blockHeight uint64) error
	CreateReceipts(ctx context.Context, receipts []*drc20.Receipt) error

	DeleteIndexedBlocksSinceHeight(ctx context.Context, height uint64) error
	DeleteTickEntriesSinceHeight(ctx context.Context, height uint64) error
	DeleteTickEntryStatesSinceHeight(ctx context.Context, height uint64) error
	DeleteBalancesSinceHeight(ctx context.Context, height uint64) error
	DeleteInscribedTransfersSinceHeight(ctx context.Context, height uint64) error
	UnspendInscribedTransfersSinceHeight(ctx context.Context, height uint64) error
	DeleteReceiptsSinceHeight(ctx context.Context, height uint64) error
}
