package postgres

import (
	"context"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

func (r *Repository) GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	row := r.queryer().QueryRow(ctx, `
		SELECT height, hash, event_hash, cumulative_event_hash FROM drc20_indexed_blocks ORDER BY height DESC LIMIT 1
	`)
	block, err := scanIndexedBlock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get latest indexed block")
	}
	return block, nil
}

func (r *Repository) GetIndexedBlockByHeight(ctx context.Context, height uint64) (*entity.IndexedBlock, error) {
	row := r.queryer().QueryRow(ctx, `
		SELECT height, hash, event_hash, cumulative_event_hash FROM drc20_indexed_blocks WHERE height = $1
	`, int64(height))
	block, err := scanIndexedBlock(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get indexed block by height")
	}
	return block, nil
}

func scanIndexedBlock(row pgx.Row) (*entity.IndexedBlock, error) {
	var height int64
	var hash, eventHash, cumulativeEventHash string
	if err := row.Scan(&height, &hash, &eventHash, &cumulativeEventHash); err != nil {
		return nil, errors.WithStack(err)
	}
	blockHash, err := chainhash.NewHashFromStr(hash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid block hash")
	}
	parsedEventHash, err := chainhash.NewHashFromStr(eventHash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid event hash")
	}
	parsedCumulativeEventHash, err := chainhash.NewHashFromStr(cumulativeEventHash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid cumulative event hash")
	}
	return &entity.IndexedBlock{
		Height:              uint64(height),
		Hash:                *blockHash,
		EventHash:           *parsedEventHash,
		CumulativeEventHash: *parsedCumulativeEventHash,
	}, nil
}

func (r *Repository) CreateIndexedBlock(ctx context.Context, block *entity.IndexedBlock) error {
	_, err := r.queryer().Exec(ctx, `
		INSERT INTO drc20_indexed_blocks (height, hash, event_hash, cumulative_event_hash) VALUES ($1, $2, $3, $4)
	`, int64(block.Height), block.Hash.String(), block.EventHash.String(), block.CumulativeEventHash.String())
	if err != nil {
		return errors.Wrap(err, "failed to create indexed block")
	}
	return nil
}

const selectTickEntries = `
	SELECT e.tick, e.original_tick, e.total_supply, e.decimals, e.limit_per_mint, e.deployer_pk_script,
		e.deploy_inscription_id, e.deploy_tx_hash, e.deployed_at, e.deployed_at_height,
		COALESCE(s.minted_amount, 0), s.completed_at, s.completed_at_height
	FROM drc20_tick_entries e
	LEFT JOIN LATERAL (
		SELECT minted_amount, completed_at, completed_at_height
		FROM drc20_tick_entry_states
		WHERE tick = e.tick
		ORDER BY block_height DESC
		LIMIT 1
	) s ON TRUE
`

func scanTickEntry(row pgx.Row) (*entity.TickEntry, error) {
	var model tickEntryModel
	if err := row.Scan(
		&model.Tick, &model.OriginalTick, &model.TotalSupply, &model.Decimals, &model.LimitPerMint,
		&model.DeployerPkScript, &model.DeployInscriptionId, &model.DeployTxHash, &model.DeployedAt,
		&model.DeployedAtHeight, &model.MintedAmount, &model.CompletedAt, &model.CompletedAtHeight,
	); err != nil {
		return nil, errors.WithStack(err)
	}
	return mapTickEntryModelToType(model)
}

func (r *Repository) GetTickEntries(ctx context.Context) ([]*entity.TickEntry, error) {
	rows, err := r.queryer().Query(ctx, selectTickEntries+` ORDER BY e.deployed_at_height`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tick entries")
	}
	defer rows.Close()

	var entries []*entity.TickEntry
	for rows.Next() {
		entry, err := scanTickEntry(rows)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		entries = append(entries, entry)
	}
	return entries, errors.WithStack(rows.Err())
}

func (r *Repository) GetTickEntryByTick(ctx context.Context, tick drc20.Tick) (*entity.TickEntry, error) {
	row := r.queryer().QueryRow(ctx, selectTickEntries+` WHERE e.tick = $1`, tick.String())
	entry, err := scanTickEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get tick entry")
	}
	return entry, nil
}

func (r *Repository) CreateTickEntries(ctx context.Context, entries []*entity.TickEntry) error {
	for _, entry := range entries {
		totalSupply, err := numericFromUint128(&entry.TotalSupply)
		if err != nil {
			return errors.Wrap(err, "invalid total supply")
		}
		limitPerMint, err := numericFromUint128(&entry.LimitPerMint)
		if err != nil {
			return errors.Wrap(err, "invalid limit per mint")
		}
		_, err = r.queryer().Exec(ctx, `
			INSERT INTO drc20_tick_entries (tick, original_tick, total_supply, decimals, limit_per_mint, deployer_pk_script, deploy_inscription_id, deploy_tx_hash, deployed_at, deployed_at_height)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, entry.Tick.String(), entry.OriginalTick, totalSupply, int16(entry.Decimals), limitPerMint,
			entry.Deployer.String(), entry.DeployInscriptionId.String(), entry.DeployTxHash.String(),
			entry.DeployedAt.UTC(), int64(entry.DeployedAtHeight))
		if err != nil {
			return errors.Wrap(err, "failed to create tick entry")
		}
	}
	return nil
}

func (r *Repository) CreateTickEntryStates(ctx context.Context, blockHeight uint64, entries []*entity.TickEntry) error {
	for _, entry := range entries {
		mintedAmount, err := numericFromUint128(&entry.MintedAmount)
		if err != nil {
			return errors.Wrap(err, "invalid minted amount")
		}
		completedAt := pgtype.Timestamp{}
		completedAtHeight := pgtype.Int8{}
		if !entry.CompletedAt.IsZero() {
			completedAt = pgtype.Timestamp{Time: entry.CompletedAt.UTC(), Valid: true}
			completedAtHeight = pgtype.Int8{Int64: int64(entry.CompletedAtHeight), Valid: true}
		}
		_, err = r.queryer().Exec(ctx, `
			INSERT INTO drc20_tick_entry_states (tick, block_height, minted_amount, completed_at, completed_at_height)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (tick, block_height) DO UPDATE SET minted_amount = $3, completed_at = $4, completed_at_height = $5
		`, entry.Tick.String(), int64(blockHeight), mintedAmount, completedAt, completedAtHeight)
		if err != nil {
			return errors.Wrap(err, "failed to create tick entry state")
		}
	}
	return nil
}

const selectLatestBalances = `
	SELECT DISTINCT ON (pk_script, tick) pk_script, tick, block_height, overall_balance, transferable_balance
	FROM drc20_balances
`

func scanBalance(row pgx.Row) (*entity.Balance, error) {
	var model balanceModel
	if err := row.Scan(&model.PkScript, &model.Tick, &model.BlockHeight, &model.OverallBalance, &model.TransferableBalance); err != nil {
		return nil, errors.WithStack(err)
	}
	return mapBalanceModelToType(model)
}

func (r *Repository) GetLatestBalances(ctx context.Context) ([]*entity.Balance, error) {
	rows, err := r.queryer().Query(ctx, selectLatestBalances+` ORDER BY pk_script, tick, block_height DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query latest balances")
	}
	defer rows.Close()

	var balances []*entity.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		balances = append(balances, balance)
	}
	return balances, errors.WithStack(rows.Err())
}

func (r *Repository) GetBalance(ctx context.Context, owner drc20.OwnerId, tick drc20.Tick) (*entity.Balance, error) {
	row := r.queryer().QueryRow(ctx, `
		SELECT pk_script, tick, block_height, overall_balance, transferable_balance
		FROM drc20_balances
		WHERE pk_script = $1 AND tick = $2
		ORDER BY block_height DESC
		LIMIT 1
	`, owner.String(), tick.String())
	balance, err := scanBalance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Balance{Owner: owner, Tick: tick}, nil
		}
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return balance, nil
}

func (r *Repository) GetBalancesByOwner(ctx context.Context, owner drc20.OwnerId, blockHeight uint64) ([]*entity.Balance, error) {
	rows, err := r.queryer().Query(ctx, `
		SELECT DISTINCT ON (tick) pk_script, tick, block_height, overall_balance, transferable_balance
		FROM drc20_balances
		WHERE pk_script = $1 AND block_height <= $2
		ORDER BY tick, block_height DESC
	`, owner.String(), int64(blockHeight))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query balances by owner")
	}
	defer rows.Close()

	var balances []*entity.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		balances = append(balances, balance)
	}
	return balances, errors.WithStack(rows.Err())
}

func (r *Repository) CountHoldersByTick(ctx context.Context, tick drc20.Tick) (uint64, error) {
	row := r.queryer().QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT DISTINCT ON (pk_script) overall_balance
			FROM drc20_balances
			WHERE tick = $1
			ORDER BY pk_script, block_height DESC
		) latest
		WHERE overall_balance <> 0
	`, tick.String())
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count holders")
	}
	return uint64(count), nil
}

func (r *Repository) CreateBalances(ctx context.Context, balances []*entity.Balance) error {
	for _, balance := range balances {
		overall, err := numericFromUint128(&balance.OverallBalance)
		if err != nil {
			return errors.Wrap(err, "invalid overall balance")
		}
		transferable, err := numericFromUint128(&balance.TransferableBalance)
		if err != nil {
			return errors.Wrap(err, "invalid transferable balance")
		}
		_, err = r.queryer().Exec(ctx, `
			INSERT INTO drc20_balances (pk_script, tick, block_height, overall_balance, transferable_balance)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (pk_script, tick, block_height) DO UPDATE SET overall_balance = $4, transferable_balance = $5
		`, balance.Owner.String(), balance.Tick.String(), int64(balance.BlockHeight), overall, transferable)
		if err != nil {
			return errors.Wrap(err, "failed to create balance")
		}
	}
	return nil
}

func (r *Repository) GetUnspentInscribedTransfers(ctx context.Context) ([]*entity.InscribedTransfer, error) {
	rows, err := r.queryer().Query(ctx, `
		SELECT inscription_id, tick, original_tick, pk_script, amount, block_height, spent_at_height
		FROM drc20_inscribed_transfers
		WHERE spent_at_height IS NULL
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query unspent inscribed transfers")
	}
	defer rows.Close()

	var transfers []*entity.InscribedTransfer
	for rows.Next() {
		var model inscribedTransferModel
		if err := rows.Scan(&model.InscriptionId, &model.Tick, &model.OriginalTick, &model.PkScript, &model.Amount, &model.BlockHeight, &model.SpentAtHeight); err != nil {
			return nil, errors.WithStack(err)
		}
		transfer, err := mapInscribedTransferModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		transfers = append(transfers, transfer)
	}
	return transfers, errors.WithStack(rows.Err())
}

func (r *Repository) CreateInscribedTransfers(ctx context.Context, transfers []*entity.InscribedTransfer) error {
	for _, transfer := range transfers {
		amount, err := numericFromUint128(&transfer.Amount)
		if err != nil {
			return errors.Wrap(err, "invalid amount")
		}
		_, err = r.queryer().Exec(ctx, `
			INSERT INTO drc20_inscribed_transfers (inscription_id, tick, original_tick, pk_script, amount, block_height)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, transfer.InscriptionId.String(), transfer.Tick.String(), transfer.OriginalTick, transfer.Owner.String(), amount, int64(transfer.BlockHeight))
		if err != nil {
			return errors.Wrap(err, "failed to create inscribed transfer")
		}
	}
	return nil
}

func (r *Repository) SpendInscribedTransfers(ctx context.Context, ids []ordinals.InscriptionId, blockHeight uint64) error {
	if len(ids) == 0 {
		return nil
	}
	rawIds := lo.Map(ids, func(id ordinals.InscriptionId, _ int) string { return id.String() })
	_, err := r.queryer().Exec(ctx, `
		UPDATE drc20_inscribed_transfers SET spent_at_height = $1 WHERE inscription_id = ANY($2)
	`, int64(blockHeight), rawIds)
	if err != nil {
		return errors.Wrap(err, "failed to spend inscribed transfers")
	}
	return nil
}

const selectReceipts = `
	SELECT id, inscription_id, inscription_number, tick, original_tick, operation, block_height, tx_index, tx_hash,
		old_satpoint, new_satpoint, from_pk_script, to_pk_script, valid, error, amount, supply, limit_per_mint,
		decimals, clipped, cancelled, timestamp
	FROM drc20_receipts
`

func (r *Repository) queryReceipts(ctx context.Context, query string, args ...any) ([]*drc20.Receipt, error) {
	rows, err := r.queryer().Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query receipts")
	}
	defer rows.Close()

	var receipts []*drc20.Receipt
	for rows.Next() {
		var model receiptModel
		if err := rows.Scan(
			&model.Id, &model.InscriptionId, &model.InscriptionNumber, &model.Tick, &model.OriginalTick,
			&model.Operation, &model.BlockHeight, &model.TxIndex, &model.TxHash, &model.OldSatPoint,
			&model.NewSatPoint, &model.FromPkScript, &model.ToPkScript, &model.Valid, &model.Error,
			&model.Amount, &model.Supply, &model.LimitPerMint, &model.Decimals, &model.Clipped,
			&model.Cancelled, &model.Timestamp,
		); err != nil {
			return nil, errors.WithStack(err)
		}
		receipt, err := mapReceiptModelToType(model)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, errors.WithStack(rows.Err())
}

func (r *Repository) GetReceiptsByTxHash(ctx context.Context, txHash chainhash.Hash) ([]*drc20.Receipt, error) {
	return r.queryReceipts(ctx, selectReceipts+` WHERE tx_hash = $1 ORDER BY id`, txHash.String())
}

func (r *Repository) GetReceiptsByTick(ctx context.Context, tick drc20.Tick, fromBlock, toBlock uint64, limit, offset int32) ([]*drc20.Receipt, error) {
	if limit < 0 {
		limit = math.MaxInt32
	}
	return r.queryReceipts(ctx, selectReceipts+` WHERE tick = $1 AND block_height BETWEEN $2 AND $3 ORDER BY id LIMIT $4 OFFSET $5`,
		tick.String(), int64(fromBlock), int64(toBlock), limit, offset)
}

func (r *Repository) CreateReceipts(ctx context.Context, receipts []*drc20.Receipt) error {
	for _, receipt := range receipts {
		params, err := mapReceiptTypeToParams(receipt)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = r.queryer().Exec(ctx, `
			INSERT INTO drc20_receipts (inscription_id, inscription_number, tick, original_tick, operation, block_height, tx_index, tx_hash, old_satpoint, new_satpoint, from_pk_script, to_pk_script, valid, error, amount, supply, limit_per_mint, decimals, clipped, cancelled, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		`, params.InscriptionId, params.InscriptionNumber, params.Tick, params.OriginalTick, params.Operation,
			params.BlockHeight, params.TxIndex, params.TxHash, params.OldSatPoint, params.NewSatPoint,
			params.FromPkScript, params.ToPkScript, params.Valid, params.Error, params.Amount, params.Supply,
			params.LimitPerMint, params.Decimals, params.Clipped, params.Cancelled, params.Timestamp)
		if err != nil {
			return errors.Wrap(err, "failed to create receipt")
		}
	}
	return nil
}

func (r *Repository) DeleteIndexedBlocksSinceHeight(ctx context.Context, height uint64) error {
	_, err := r.queryer().Exec(ctx, `DELETE FROM drc20_indexed_blocks WHERE height >= $1`, int64(height))
	return errors.Wrap(err, "failed to delete indexed blocks")
}

func (r *Repository) DeleteTickEntriesSinceHeight(ctx context.Context, height uint64) error {
	_, err := r.queryer().Exec(ctx, `DELETE FROM drc20_tick_entries WHERE deployed_at_height >= $1`, int64(height))
	return errors.Wrap(err, "failed to delete tick entries")
}

func (r *Repository) DeleteTickEntryStatesSinceHeight(ctx context.Context, height uint64) error {
	_, err := r.queryer().Exec(ctx, `DELETE FROM drc20_tick_entry_states WHERE block_height >= $1`, int64(height))
	return errors.Wrap(err, "failed to delete tick entry states")
}

func (r *Repository) DeleteBalancesSinceHeight(ctx context.Context, height uint64) error {
	_, err := r.queryer().Exec(ctx, `DELETE FROM drc20_balances WHERE block_height >= $1`, int64(height))
	return errors.Wrap(err, "failed to delete balances")
}

func (r *Repository) DeleteInscribedTransfersSinceHeight(ctx context.Context, height uint64) error {
	_, err := r.queryer().Exec(ctx, `DELETE FROM drc20_inscribed_transfers WHERE block_height >= $1`, int64(height))
	return errors.Wrap(err, "failed to delete inscribed transfers")
}

func (r *Repository) UnspendInscribedTransfersSinceHeight(ctx context.Context, height uint64) error {
	_, err := r.queryer().Exec(ctx, `UPDATE drc20_inscribed_transfers SET spent_at_height = NULL WHERE spent_at_height >= $1`, int64(height))
	return errors.Wrap(err, "failed to unspend inscribed transfers")
}

func (r *Repository) DeleteReceiptsSinceHeight(ctx context.Context, height uint64) error {
	_, err := r.queryer().Exec(ctx, `DELETE FROM drc20_receipts WHERE block_height >= $1`, int64(height))
	return errors.Wrap(err, "failed to delete receipts")
}
