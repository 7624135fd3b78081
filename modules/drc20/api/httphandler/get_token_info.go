package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

type getTokenInfoRequest struct {
	Tick string `params:"tick"`
}

func (r getTokenInfoRequest) Validate() error {
	if r.Tick == "" {
		return errs.NewPublicError("'tick' is required")
	}
	return nil
}

type getTokenInfoResult struct {
	Tick                string          `json:"tick"`
	OriginalTick        string          `json:"originalTick"`
	TotalSupply         uint128.Uint128 `json:"totalSupply"`
	MintedAmount        uint128.Uint128 `json:"mintedAmount"`
	LimitPerMint        uint128.Uint128 `json:"limitPerMint"`
	Decimals            uint16          `json:"decimals"`
	HoldersCount        uint64          `json:"holdersCount"`
	DeployerAddress     string          `json:"deployerAddress,omitempty"`
	DeployerPkScript    string          `json:"deployerPkScript"`
	DeployInscriptionId string          `json:"deployInscriptionId"`
	DeployedAt          int64           `json:"deployedAt"`
	DeployedAtHeight    uint64          `json:"deployedAtHeight"`
	CompletedAt         *int64          `json:"completedAt,omitempty"`
	CompletedAtHeight   *uint64         `json:"completedAtHeight,omitempty"`
}

type getTokenInfoResponse = HttpResponse[getTokenInfoResult]

func (h *HttpHandler) GetTokenInfo(ctx *fiber.Ctx) error {
	var req getTokenInfoRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	tick, err := drc20.NewTick(req.Tick)
	if err != nil {
		return errs.NewPublicError("'tick' is not a valid tick")
	}

	group, groupctx := errgroup.WithContext(ctx.UserContext())
	var (
		entry        *entity.TickEntry
		holdersCount uint64
	)
	group.Go(func() error {
		var err error
		entry, err = h.usecase.GetTickEntryByTick(groupctx, tick)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return errs.NewPublicError("tick not found")
			}
			return errors.Wrap(err, "error during GetTickEntryByTick")
		}
		return nil
	})
	group.Go(func() error {
		var err error
		holdersCount, err = h.usecase.CountHoldersByTick(groupctx, tick)
		if err != nil {
			return errors.Wrap(err, "error during CountHoldersByTick")
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return errors.WithStack(err)
	}

	result := getTokenInfoResult{
		Tick:                entry.Tick.String(),
		OriginalTick:        entry.OriginalTick,
		TotalSupply:         entry.TotalSupply,
		MintedAmount:        entry.MintedAmount,
		LimitPerMint:        entry.LimitPerMint,
		Decimals:            entry.Decimals,
		HoldersCount:        holdersCount,
		DeployerPkScript:    entry.Deployer.String(),
		DeployInscriptionId: entry.DeployInscriptionId.String(),
		DeployedAt:          entry.DeployedAt.Unix(),
		DeployedAtHeight:    entry.DeployedAtHeight,
	}
	if pkScript, err := entry.Deployer.PkScript(); err == nil {
		result.DeployerAddress = addressFromPkScript(pkScript, h.network)
	}
	if !entry.CompletedAt.IsZero() {
		completedAt := entry.CompletedAt.Unix()
		completedAtHeight := entry.CompletedAtHeight
		result.CompletedAt = &completedAt
		result.CompletedAtHeight = &completedAtHeight
	}

	resp := getTokenInfoResponse{
		Result: &result,
	}
	return errors.WithStack(ctx.JSON(resp))
}
