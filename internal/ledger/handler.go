package ledger

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/naira-ledger/naira_ledger/internal/money"
	"github.com/naira-ledger/naira_ledger/internal/notification"
)

// Handler exposes the four ledger operations over HTTP. The authenticated
// caller is always the operating owner; requests cannot act on behalf of
// another user.
type Handler struct {
	engine   *Engine
	notifier notification.Notifier
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(engine *Engine, notifier notification.Notifier) *Handler {
	return &Handler{engine: engine, notifier: notifier}
}

type amountRequest struct {
	WalletID string `json:"wallet_id"`
	Amount   int64  `json:"amount"`
}

type walletSnapshotResponse struct {
	WalletID string `json:"wallet_id"`
	OwnerID  string `json:"owner_id"`
	Balance  int64  `json:"balance"`
}

// Deposit credits the caller's wallet.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	snap, err := h.engine.Deposit(c.UserContext(), DepositRequest{WalletID: req.WalletID, OwnerID: uid, Amount: req.Amount})
	if err != nil {
		return mapEngineError(err)
	}
	return c.Status(http.StatusOK).JSON(snapshotResponse(snap))
}

// Withdraw debits the caller's wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	snap, err := h.engine.Withdraw(c.UserContext(), WithdrawRequest{WalletID: req.WalletID, OwnerID: uid, Amount: req.Amount})
	if err != nil {
		return mapEngineError(err)
	}
	return c.Status(http.StatusOK).JSON(snapshotResponse(snap))
}

type walletTransferRequest struct {
	FromWalletID string `json:"from_wallet_id"`
	ToWalletID   string `json:"to_wallet_id"`
	Amount       int64  `json:"amount"`
}

// TransferWalletToWallet moves funds between two wallets of the caller.
func (h *Handler) TransferWalletToWallet(c *fiber.Ctx) error {
	var req walletTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	res, err := h.engine.TransferWalletToWallet(c.UserContext(), WalletTransferRequest{
		OwnerID:      uid,
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       req.Amount,
	})
	if err != nil {
		return mapEngineError(err)
	}
	return c.Status(http.StatusOK).JSON(transferResponse(res))
}

type userTransferRequest struct {
	FromWalletID string `json:"from_wallet_id"`
	ToUserID     string `json:"to_user_id"`
	ToWalletID   string `json:"to_wallet_id"`
	Amount       int64  `json:"amount"`
}

// TransferWalletToUser moves funds from the caller's wallet to another user's
// wallet and notifies the recipient.
func (h *Handler) TransferWalletToUser(c *fiber.Ctx) error {
	var req userTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	res, err := h.engine.TransferWalletToUser(c.UserContext(), UserTransferRequest{
		OwnerID:      uid,
		FromWalletID: req.FromWalletID,
		ToOwnerID:    req.ToUserID,
		ToWalletID:   req.ToWalletID,
		Amount:       req.Amount,
	})
	if err != nil {
		return mapEngineError(err)
	}

	if h.notifier != nil {
		_ = h.notifier.Send(c.UserContext(), notification.Message{
			Kind:        notification.KindTransferReceived,
			Destination: res.To.OwnerID,
			Body:        fmt.Sprintf("You received %d from wallet %s", req.Amount, req.FromWalletID),
		})
	}

	return c.Status(http.StatusOK).JSON(transferResponse(res))
}

func snapshotResponse(w Wallet) walletSnapshotResponse {
	return walletSnapshotResponse{WalletID: w.ID, OwnerID: w.OwnerID, Balance: w.Balance.Int64()}
}

func transferResponse(res TransferResult) fiber.Map {
	return fiber.Map{
		"from": snapshotResponse(res.From),
		"to":   snapshotResponse(res.To),
	}
}

func mapEngineError(err error) error {
	switch {
	case errors.Is(err, money.ErrInvalidAmount), errors.Is(err, ErrInvalidTransfer):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, money.ErrInsufficientFunds), errors.Is(err, money.ErrOverflow):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrWalletNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrContention):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
