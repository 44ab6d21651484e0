// Package backend is the HTTP API in front of the progression engine.
package backend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ellavondegurechaff/progression/backend/handlers"
	"github.com/ellavondegurechaff/progression/backend/middleware"
	"github.com/ellavondegurechaff/progression/bottemplate/config"
)

type Options struct {
	AllowedOrigins string
	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer
}

// NewApp builds the fiber app with middleware and routes installed.
func NewApp(webApp *handlers.WebApp, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Progression API",
		ServerHeader:          "Progression",
		ErrorHandler:          middleware.CustomErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	if opts.AllowedOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
		}))
	}
	app.Use(middleware.LoggingMiddleware())

	setupRoutes(app, webApp, opts)
	return app
}

func setupRoutes(app *fiber.App, webApp *handlers.WebApp, opts Options) {
	app.Get("/health", handlers.HealthCheck(webApp))
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")
	api.Get("/catalog", handlers.GetCatalog(webApp))
	api.Get("/leaderboard", handlers.GetLeaderboard(webApp))

	limit := middleware.WriteRateLimit()
	users := api.Group("/users")
	users.Post("/:id", handlers.EnsureUser(webApp))
	users.Post("/:id/events", limit, handlers.RecordQuestEvent(webApp))
	users.Post("/:id/profile/evaluate", limit, handlers.EvaluateProfile(webApp))
	users.Post("/:id/daily", limit, handlers.ClaimDaily(webApp))
	users.Get("/:id/daily", handlers.DailyStatus(webApp))
	users.Post("/:id/spin", limit, handlers.Spin(webApp))
	users.Get("/:id/summary", handlers.Summary(webApp))
	users.Post("/:id/purchases", limit, handlers.Purchase(webApp))
	users.Get("/:id/ledger", handlers.Ledger(webApp))
	users.Get("/:id/reconcile", handlers.Reconcile(webApp))
}

// Run serves until ctx is cancelled, then shuts the app down.
func Run(ctx context.Context, app *fiber.App, address string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server",
			slog.String("type", "api"),
			slog.String("address", address))
		errCh <- app.Listen(address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down API server", slog.String("type", "api"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}
