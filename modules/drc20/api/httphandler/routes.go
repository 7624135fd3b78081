package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/drc20")

	r.Get("/balances/wallet/:wallet", h.GetBalances)
	r.Get("/info/:tick", h.GetTokenInfo)
	r.Get("/transactions/:txHash", h.GetTransactionByHash)
	r.Get("/events/:tick", h.GetTickEvents)
	r.Get("/block", h.GetCurrentBlock)
	return nil
}
