package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getCurrentBlockResult struct {
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
}

type getCurrentBlockResponse = HttpResponse[getCurrentBlockResult]

func (h *HttpHandler) GetCurrentBlock(ctx *fiber.Ctx) error {
	block, err := h.usecase.GetLatestIndexedBlock(ctx.UserContext())
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("no blocks indexed yet")
		}
		return errors.Wrap(err, "error during GetLatestIndexedBlock")
	}

	resp := getCurrentBlockResponse{
		Result: &getCurrentBlockResult{
			Height: block.Height,
			Hash:   block.Hash.String(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
