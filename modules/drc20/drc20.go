package drc20

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/core/datasources"
	"github.com/gaze-network/dogecoin-indexer/core/indexer"
	"github.com/gaze-network/dogecoin-indexer/internal/config"
	"github.com/gaze-network/dogecoin-indexer/internal/postgres"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/api/httphandler"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/datagateway"
	drc20datasources "github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/datasources"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	drc20postgres "github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/repository/postgres"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/usecase"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)

	cleanupFuncs := make([]func(context.Context) error, 0)
	var drc20Dg datagateway.DRC20DataGateway
	var indexerInfoDg datagateway.IndexerInfoDataGateway
	switch strings.ToLower(conf.Modules.DRC20.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Modules.DRC20.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for indexer")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		drc20Repo := drc20postgres.NewRepository(pg)
		drc20Dg = drc20Repo
		indexerInfoDg = drc20Repo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for indexer is not supported", conf.Modules.DRC20.Database)
	}

	var datasource datasources.Datasource[*entity.InscriptionBlock]
	switch strings.ToLower(conf.Modules.DRC20.Datasource) {
	case "ord-http":
		datasource = drc20datasources.NewOrdHTTP(conf.Modules.DRC20.OrdHTTP.BaseURL)
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q datasource is not supported", conf.Modules.DRC20.Datasource)
	}

	processor := NewProcessor(drc20Dg, indexerInfoDg, conf.Network, cleanupFuncs)
	if err := processor.VerifyStates(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	// Mount API
	apiHandlers := lo.Uniq(conf.Modules.DRC20.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler { // TODO: support more handlers (e.g. gRPC)
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			uc := usecase.New(drc20Dg)
			httpHandler := httphandler.New(conf.Network, uc)
			if err := httpHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	worker := indexer.New(processor, datasource)
	return worker, nil
}
