package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

const (
	defaultTickEventsLimit = 100
	maxTickEventsLimit     = 1000
)

type getTickEventsRequest struct {
	Tick      string `params:"tick"`
	FromBlock uint64 `query:"fromBlock"`
	ToBlock   uint64 `query:"toBlock"`
	Limit     int32  `query:"limit"`
	Offset    int32  `query:"offset"`
}

func (r getTickEventsRequest) Validate() error {
	var errList []error
	if _, err := drc20.NewTick(r.Tick); err != nil {
		errList = append(errList, errors.New("'tick' is not a valid tick"))
	}
	if r.Limit < 0 || r.Limit > maxTickEventsLimit {
		errList = append(errList, errors.Errorf("'limit' must be between 0 and %d", maxTickEventsLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must not be negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getTickEventsResult struct {
	List   []drc20Event `json:"list"`
	Limit  int32        `json:"limit"`
	Offset int32        `json:"offset"`
}

type getTickEventsResponse = HttpResponse[getTickEventsResult]

func (h *HttpHandler) GetTickEvents(ctx *fiber.Ctx) error {
	var req getTickEventsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	// already validated
	tick, _ := drc20.NewTick(req.Tick)

	limit := req.Limit
	if limit == 0 {
		limit = defaultTickEventsLimit
	}
	toBlock := req.ToBlock
	if toBlock == 0 {
		block, err := h.usecase.GetLatestIndexedBlock(ctx.UserContext())
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return errs.NewPublicError("no blocks indexed yet")
			}
			return errors.Wrap(err, "error during GetLatestIndexedBlock")
		}
		toBlock = block.Height
	}

	receipts, err := h.usecase.GetReceiptsByTick(ctx.UserContext(), tick, req.FromBlock, toBlock, limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetReceiptsByTick")
	}

	resp := getTickEventsResponse{
		Result: &getTickEventsResult{
			List: lo.Map(receipts, func(receipt *drc20.Receipt, _ int) drc20Event {
				return makeDrc20Event(receipt, h.network)
			}),
			Limit:  limit,
			Offset: req.Offset,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
