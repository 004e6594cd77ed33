package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/naira-ledger/naira_ledger/internal/wallet"
)

func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets", h.List)
	r.Get("/wallets/:walletId/balance", h.Balance)
	r.Get("/balance", h.TotalBalance)
}
