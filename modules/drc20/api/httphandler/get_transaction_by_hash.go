package httphandler

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getTransactionByHashRequest struct {
	TxHash string `params:"txHash"`
}

func (r getTransactionByHashRequest) Validate() error {
	if r.TxHash == "" {
		return errs.NewPublicError("'txHash' is required")
	}
	return nil
}

type getTransactionByHashResult struct {
	TxHash string       `json:"txHash"`
	Events []drc20Event `json:"events"`
}

type getTransactionByHashResponse = HttpResponse[getTransactionByHashResult]

func (h *HttpHandler) GetTransactionByHash(ctx *fiber.Ctx) error {
	var req getTransactionByHashRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	txHash, err := chainhash.NewHashFromStr(req.TxHash)
	if err != nil {
		return errs.NewPublicError("'txHash' is not a valid transaction hash")
	}

	receipts, err := h.usecase.GetReceiptsByTxHash(ctx.UserContext(), *txHash)
	if err != nil {
		return errors.Wrap(err, "error during GetReceiptsByTxHash")
	}

	resp := getTransactionByHashResponse{
		Result: &getTransactionByHashResult{
			TxHash: txHash.String(),
			Events: lo.Map(receipts, func(receipt *drc20.Receipt, _ int) drc20Event {
				return makeDrc20Event(receipt, h.network)
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
