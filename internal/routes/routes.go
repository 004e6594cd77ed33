package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/naira-ledger/naira_ledger/internal/auth"
	"github.com/naira-ledger/naira_ledger/internal/config"
	"github.com/naira-ledger/naira_ledger/internal/identity"
	"github.com/naira-ledger/naira_ledger/internal/ledger"
	"github.com/naira-ledger/naira_ledger/internal/middleware"
	"github.com/naira-ledger/naira_ledger/internal/notification"
	"github.com/naira-ledger/naira_ledger/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database the whole stack runs on the in-memory wallet store, which is only
// permitted in development.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends
	var (
		store      ledger.WalletStore
		walletRepo wallet.Repository
	)
	if d.DB != nil {
		store = ledger.NewPostgresWalletStore(d.DB, d.Cfg.LockTimeout)
		walletRepo = wallet.NewPostgresRepository(d.DB)
	} else {
		memStore := ledger.NewMemoryStore(d.Cfg.LockTimeout)
		store = memStore
		walletRepo = wallet.NewMemoryRepository(memStore)
	}

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}

	// Services and handlers
	walletSvc := wallet.NewService(walletRepo)

	engine := ledger.NewEngine(store, walletSvc, d.Logger)
	engine.MaxAttempts = d.Cfg.RetryAttempts
	engine.RetryDelay = d.Cfg.RetryDelay

	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(d.Cfg, identityRepo)
	authHandler := auth.NewHandler(identitySvc, authSvc)
	notifier := notification.NewLoggerNotifier(d.Logger)
	ledgerHandler := ledger.NewHandler(engine, notifier)
	walletHandler := wallet.NewHandler(walletSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	jwtmw := middleware.JWTAuth(d.Cfg, identityRepo)

	// Public routes
	RegisterIdentityRoutes(api, identitySvc, walletSvc, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter, jwtmw)

	// Protected routes
	protected := api.Group("", jwtmw)
	RegisterUserRoutes(protected, identitySvc)
	RegisterWalletRoutes(protected, walletHandler)

	// Ledger mutations additionally require an idempotency key so client
	// retries never move money twice.
	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterLedgerRoutes(protected, ledgerHandler, idem)

	return nil
}
