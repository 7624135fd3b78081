package drc20

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/core/indexer"
	"github.com/gaze-network/dogecoin-indexer/core/types"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/datagateway"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ledger"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger/slogx"
)

// Make sure to implement the Processor interface
var _ indexer.Processor[*entity.InscriptionBlock] = (*Processor)(nil)

type Processor struct {
	drc20Dg       datagateway.DRC20DataGateway
	indexerInfoDg datagateway.IndexerInfoDataGateway
	network       common.Network
	cleanupFuncs  []func(context.Context) error

	// applier holds the full ledger state in memory. It is the single source
	// of truth while processing; postgres rows are its durable projection.
	applier *ledger.Applier
}

func NewProcessor(drc20Dg datagateway.DRC20DataGateway, indexerInfoDg datagateway.IndexerInfoDataGateway, network common.Network, cleanupFuncs []func(context.Context) error) *Processor {
	return &Processor{
		drc20Dg:       drc20Dg,
		indexerInfoDg: indexerInfoDg,
		network:       network,
		cleanupFuncs:  cleanupFuncs,
		applier:       ledger.NewApplier(),
	}
}

// VerifyStates implements indexer.Processor.
func (p *Processor) VerifyStates(ctx context.Context) error {
	indexerState, err := p.indexerInfoDg.GetLatestIndexerState(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest indexer state")
	}
	// if not found, create indexer state
	if errors.Is(err, errs.NotFound) {
		if err := p.indexerInfoDg.SetIndexerState(ctx, entity.IndexerState{
			ClientVersion:    ClientVersion,
			DBVersion:        DBVersion,
			EventHashVersion: EventHashVersion,
			Network:          p.network,
		}); err != nil {
			return errors.Wrap(err, "failed to set indexer state")
		}
	} else {
		if indexerState.DBVersion != DBVersion {
			return errors.Wrapf(errs.ConflictSetting, "db version mismatch: current version is %d. Please upgrade to version %d", indexerState.DBVersion, DBVersion)
		}
		if indexerState.EventHashVersion != EventHashVersion {
			return errors.Wrapf(errs.ConflictSetting, "event hash version mismatch: current version is %d. Please reset the database and reindex", indexerState.EventHashVersion)
		}
		if indexerState.Network != p.network {
			return errors.Wrapf(errs.ConflictSetting, "network mismatch: latest indexed network is %q, configured network is %q. If you want to change the network, please reset the database", indexerState.Network, p.network)
		}
	}
	if err := p.indexerInfoDg.UpdateIndexerStats(ctx, ClientVersion, p.network); err != nil {
		return errors.Wrap(err, "failed to update indexer stats")
	}

	if err := p.loadLedgerState(ctx); err != nil {
		return errors.Wrap(err, "failed to load ledger state")
	}
	return nil
}

// loadLedgerState rebuilds the in-memory ledger from the latest persisted
// rows. Receipts are not reloaded: the receipt log only has to cover heights
// the journal can undo, and the journal starts empty as well.
func (p *Processor) loadLedgerState(ctx context.Context) error {
	applier := ledger.NewApplier()

	tickEntries, err := p.drc20Dg.GetTickEntries(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get tick entries")
	}
	for _, entry := range tickEntries {
		applier.RestoreTickEntry(*entry)
	}

	balances, err := p.drc20Dg.GetLatestBalances(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get latest balances")
	}
	for _, balance := range balances {
		applier.RestoreBalance(*balance)
	}

	transfers, err := p.drc20Dg.GetUnspentInscribedTransfers(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get unspent inscribed transfers")
	}
	for _, transfer := range transfers {
		applier.RestoreInscribedTransfer(*transfer)
	}

	p.applier = applier
	logger.InfoContext(ctx, "Loaded ledger state",
		slogx.Int("tick_entries", len(tickEntries)),
		slogx.Int("balances", len(balances)),
		slogx.Int("pending_transfers", len(transfers)),
	)
	return nil
}

// CurrentBlock implements indexer.Processor.
func (p *Processor) CurrentBlock(ctx context.Context) (types.BlockHeader, error) {
	block, err := p.drc20Dg.GetLatestIndexedBlock(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return startingBlockHeader[p.network], nil
		}
		return types.BlockHeader{}, errors.Wrap(err, "failed to get latest indexed block")
	}
	return types.BlockHeader{
		Height: int64(block.Height),
		Hash:   block.Hash,
	}, nil
}

// GetIndexedBlock implements indexer.Processor.
func (p *Processor) GetIndexedBlock(ctx context.Context, height int64) (types.BlockHeader, error) {
	block, err := p.drc20Dg.GetIndexedBlockByHeight(ctx, uint64(height))
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "failed to get indexed block")
	}
	return types.BlockHeader{
		Height: int64(block.Height),
		Hash:   block.Hash,
	}, nil
}

// Name implements indexer.Processor.
func (p *Processor) Name() string {
	return "drc20"
}

// RevertData implements indexer.Processor.
func (p *Processor) RevertData(ctx context.Context, from int64) error {
	drc20DgTx, err := p.drc20Dg.BeginDRC20Tx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := drc20DgTx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction",
				slogx.Error(err),
				slogx.String("event", "rollback_drc20_revert"),
			)
		}
	}()

	sinceHeight := uint64(from)
	if err := drc20DgTx.DeleteIndexedBlocksSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete indexed blocks")
	}
	if err := drc20DgTx.DeleteTickEntriesSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete tick entries")
	}
	if err := drc20DgTx.DeleteTickEntryStatesSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete tick entry states")
	}
	if err := drc20DgTx.DeleteBalancesSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete balances")
	}
	if err := drc20DgTx.DeleteInscribedTransfersSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete inscribed transfers")
	}
	if err := drc20DgTx.UnspendInscribedTransfersSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to unspend inscribed transfers")
	}
	if err := drc20DgTx.DeleteReceiptsSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete receipts")
	}
	if err := drc20DgTx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	// prefer the journal; fall back to a full reload when the reorg reaches
	// below the trimmed horizon
	if p.applier.CanUndoTo(sinceHeight) {
		err := p.applier.UndoFrom(sinceHeight)
		if err == nil {
			return nil
		}
		logger.WarnContext(ctx, "Ledger journal undo failed, reloading ledger state from storage",
			slogx.Error(err),
			slogx.Uint64("since_height", sinceHeight),
		)
	}
	if err := p.loadLedgerState(ctx); err != nil {
		return errors.Wrap(err, "failed to reload ledger state")
	}
	return nil
}

// Shutdown implements indexer.Processor.
func (p *Processor) Shutdown(ctx context.Context) error {
	var errList []error
	for _, cleanup := range p.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.WithStack(errors.Join(errList...))
}
