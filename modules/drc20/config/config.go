package config

import (
	"github.com/gaze-network/dogecoin-indexer/internal/postgres"
)

type Config struct {
	// Database to store drc20 data. Currently only "postgres" is supported.
	Database string `mapstructure:"database"`

	Postgres postgres.Config `mapstructure:"postgres"`

	// Datasource to fetch inscription transfers from. Currently only "ord-http" is supported.
	Datasource string `mapstructure:"datasource"`

	// OrdHTTP is the configuration of the ord-http datasource.
	OrdHTTP OrdHTTPConfig `mapstructure:"ord_http"`

	// APIHandlers to enable. Currently only "http" is supported.
	APIHandlers []string `mapstructure:"api_handlers"`
}

// OrdHTTPConfig points at an external ordinal tracker service that resolves
// inscription transfers to satpoints and owners.
type OrdHTTPConfig struct {
	BaseURL string `mapstructure:"base_url"`
}
