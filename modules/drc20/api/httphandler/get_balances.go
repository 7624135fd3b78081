package httphandler

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

type getBalancesRequest struct {
	Wallet      string `params:"wallet"`
	Tick        string `query:"tick"`
	BlockHeight uint64 `query:"blockHeight"`
}

func (r getBalancesRequest) Validate() error {
	var errList []error
	if r.Wallet == "" {
		errList = append(errList, errors.New("'wallet' is required"))
	}
	if r.Tick != "" {
		if _, err := drc20.NewTick(r.Tick); err != nil {
			errList = append(errList, errors.New("'tick' is not a valid tick"))
		}
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type balance struct {
	Tick                string          `json:"tick"`
	OverallBalance      uint128.Uint128 `json:"overallBalance"`
	TransferableBalance uint128.Uint128 `json:"transferableBalance"`
	AvailableBalance    uint128.Uint128 `json:"availableBalance"`
}

type getBalancesResult struct {
	List        []balance `json:"list"`
	BlockHeight uint64    `json:"blockHeight"`
}

type getBalancesResponse = HttpResponse[getBalancesResult]

func (h *HttpHandler) GetBalances(ctx *fiber.Ctx) error {
	var req getBalancesRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	pkScript, ok := resolvePkScript(h.network, req.Wallet)
	if !ok {
		return errs.NewPublicError("unable to resolve pkscript from \"wallet\"")
	}
	owner := drc20.NewOwnerIdFromPkScript(pkScript)

	blockHeight := req.BlockHeight
	if blockHeight == 0 {
		block, err := h.usecase.GetLatestIndexedBlock(ctx.UserContext())
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return errs.NewPublicError("no blocks indexed yet")
			}
			return errors.Wrap(err, "error during GetLatestIndexedBlock")
		}
		blockHeight = block.Height
	}

	balances, err := h.usecase.GetBalancesByOwner(ctx.UserContext(), owner, blockHeight)
	if err != nil {
		return errors.Wrap(err, "error during GetBalancesByOwner")
	}

	var filterTick drc20.Tick
	if req.Tick != "" {
		// already validated
		filterTick, _ = drc20.NewTick(req.Tick)
	}

	balanceList := make([]balance, 0, len(balances))
	for _, b := range balances {
		if filterTick != "" && b.Tick != filterTick {
			continue
		}
		balanceList = append(balanceList, balance{
			Tick:                b.Tick.String(),
			OverallBalance:      b.OverallBalance,
			TransferableBalance: b.TransferableBalance,
			AvailableBalance:    b.Available(),
		})
	}
	slices.SortFunc(balanceList, func(i, j balance) int {
		return j.OverallBalance.Cmp(i.OverallBalance)
	})

	resp := getBalancesResponse{
		Result: &getBalancesResult{
			List:        balanceList,
			BlockHeight: blockHeight,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
