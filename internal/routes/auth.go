package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/naira-ledger/naira_ledger/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. Login and refresh are
// public, logout needs the caller's identity and therefore the auth guard.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter, authGuard fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", authGuard, h.Logout)
}
