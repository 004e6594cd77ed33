package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/naira-ledger/naira_ledger/internal/ledger"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Label          string `json:"label"`
	InitialBalance int64  `json:"initial_balance"`
}

type walletResponse struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Label   string `json:"label"`
	Balance int64  `json:"balance"`
}

// Create provisions a wallet for the authenticated owner.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	wallet, err := h.service.Create(c.UserContext(), CreateInput{
		OwnerID:        uid,
		Label:          req.Label,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(wallet))
}

// List returns the caller's wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	wallets, err := h.service.ListByOwner(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toResponse(w))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Balance returns the wallet balance. Callers may only read their own wallets.
func (h *Handler) Balance(c *fiber.Ctx) error {
	walletID := c.Params("walletId")
	uid, _ := c.Locals("user_id").(string)

	owns, err := h.service.Owns(c.UserContext(), uid, walletID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if !owns {
		return fiber.NewError(http.StatusForbidden, "not owner of wallet")
	}

	balance, err := h.service.Balance(c.UserContext(), walletID)
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id": balance.WalletID,
		"balance":   balance.Amount,
		"timestamp": balance.AsOf,
	})
}

// TotalBalance sums the caller's funds across all their wallets.
func (h *Handler) TotalBalance(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	total, err := h.service.TotalBalance(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"owner_id": uid, "total_balance": total})
}

func toResponse(w Wallet) walletResponse {
	return walletResponse{ID: w.ID, OwnerID: w.OwnerID, Label: w.Label, Balance: w.Balance}
}
