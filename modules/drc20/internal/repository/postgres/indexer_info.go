package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/jackc/pgx/v5"
)

func (r *Repository) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	row := r.queryer().QueryRow(ctx, `
		SELECT created_at, client_version, db_version, event_hash_version, network FROM drc20_indexer_states ORDER BY id DESC LIMIT 1
	`)
	var state entity.IndexerState
	var network string
	if err := row.Scan(&state.CreatedAt, &state.ClientVersion, &state.DBVersion, &state.EventHashVersion, &network); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.IndexerState{}, errors.WithStack(errs.NotFound)
		}
		return entity.IndexerState{}, errors.Wrap(err, "failed to get latest indexer state")
	}
	state.Network = common.Network(network)
	return state, nil
}

func (r *Repository) GetLatestIndexerStats(ctx context.Context) (string, common.Network, error) {
	state, err := r.GetLatestIndexerState(ctx)
	if err != nil {
		return "", "", errors.WithStack(err)
	}
	return state.ClientVersion, state.Network, nil
}

func (r *Repository) SetIndexerState(ctx context.Context, state entity.IndexerState) error {
	_, err := r.queryer().Exec(ctx, `
		INSERT INTO drc20_indexer_states (client_version, db_version, event_hash_version, network) VALUES ($1, $2, $3, $4)
	`, state.ClientVersion, state.DBVersion, state.EventHashVersion, state.Network.String())
	if err != nil {
		return errors.Wrap(err, "failed to set indexer state")
	}
	return nil
}

func (r *Repository) UpdateIndexerStats(ctx context.Context, clientVersion string, network common.Network) error {
	_, err := r.queryer().Exec(ctx, `
		UPDATE drc20_indexer_states SET client_version = $1, network = $2 WHERE id = (SELECT MAX(id) FROM drc20_indexer_states)
	`, clientVersion, network.String())
	if err != nil {
		return errors.Wrap(err, "failed to update indexer stats")
	}
	return nil
}
