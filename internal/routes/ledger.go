package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/naira-ledger/naira_ledger/internal/ledger"
)

// RegisterLedgerRoutes wires the balance-mutating operations. idem may be
// nil when no cache is configured, in which case requests are not deduplicated.
func RegisterLedgerRoutes(r fiber.Router, h *ledger.Handler, idem fiber.Handler) {
	group := r.Group("/ledger")
	if idem != nil {
		group.Use(idem)
	}
	group.Post("/deposit", h.Deposit)
	group.Post("/withdraw", h.Withdraw)
	group.Post("/transfer/wallet-to-wallet", h.TransferWalletToWallet)
	group.Post("/transfer/wallet-to-user", h.TransferWalletToUser)
}
