package postgres

import (
	"github.com/gaze-network/dogecoin-indexer/internal/postgres"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/datagateway"
	"github.com/jackc/pgx/v5"
)

var (
	_ datagateway.DRC20DataGateway       = (*Repository)(nil)
	_ datagateway.IndexerInfoDataGateway = (*Repository)(nil)
)

type Repository struct {
	db postgres.DB
	tx pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{db: db}
}

// queryer routes queries through the active transaction, if any.
func (r *Repository) queryer() postgres.Queryable {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
