package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/naira-ledger/naira_ledger/internal/identity"
	"github.com/naira-ledger/naira_ledger/internal/wallet"
)

// RegisterIdentityRoutes wires registration and auto-provisions a first
// wallet for every new user.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, wallets *wallet.Service, logger *slog.Logger) {
	r.Post("/identity/register", func(c *fiber.Ctx) error {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.Register(c.UserContext(), identity.Credentials{Name: req.Name, Email: req.Email, Password: req.Password})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		var walletID string
		if wallets != nil {
			w, err := wallets.Create(c.UserContext(), wallet.CreateInput{OwnerID: user.ID, Label: "main"})
			if err != nil {
				logger.Warn("wallet auto-provisioning failed", slog.String("user_id", user.ID), slog.Any("error", err))
			} else {
				walletID = w.ID
			}
		}

		logger.Info("identity.register completed",
			slog.String("user_id", user.ID),
			slog.String("email", user.Email),
			slog.String("wallet_id", walletID),
		)
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"user_id":   user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"wallet_id": walletID,
		})
	})
}

// RegisterUserRoutes wires read endpoints for the authenticated user's own
// profile. Password hashes and token versions never leave the service.
func RegisterUserRoutes(r fiber.Router, ids *identity.Service) {
	r.Get("/users/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		user, err := ids.Get(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"user_id":    user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"active":     user.Active,
			"created_at": user.CreatedAt,
		})
	})
}
