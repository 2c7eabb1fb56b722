package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/storefront-order-system/internal/catalog"
	"github.com/fairyhunter13/storefront-order-system/internal/config"
	"github.com/fairyhunter13/storefront-order-system/internal/festival"
	"github.com/fairyhunter13/storefront-order-system/internal/handler"
	"github.com/fairyhunter13/storefront-order-system/internal/notification"
	"github.com/fairyhunter13/storefront-order-system/internal/pricing"
	"github.com/fairyhunter13/storefront-order-system/internal/repository"
	"github.com/fairyhunter13/storefront-order-system/internal/service"
	"github.com/fairyhunter13/storefront-order-system/internal/validator"
	"github.com/fairyhunter13/storefront-order-system/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context cancelled on shutdown signals; it bounds the background
	// workers as well as startup.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database pool with retry and apply migrations
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(ctx, pool, repository.MigrationsFS, repository.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Storefront Order System",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Outbound collaborators
	var catalogClient pricing.CatalogClient
	if cfg.Catalog.BaseURL != "" {
		catalogClient = catalog.NewClient(
			cfg.Catalog.BaseURL,
			time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
			cfg.Catalog.MaxRetries,
		)
	}

	var notifier notification.Notifier = notification.NopNotifier{}
	var webhookNotifier *notification.WebhookNotifier
	if cfg.Notifier.WebhookURL != "" {
		webhookNotifier = notification.NewWebhookNotifier(
			cfg.Notifier.WebhookURL,
			time.Duration(cfg.Notifier.TimeoutSeconds)*time.Second,
			cfg.Notifier.BufferSize,
			cfg.Notifier.MaxRetries,
		)
		notifier = webhookNotifier
	}

	// Initialize components (layered architecture)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	priceResolver := pricing.NewResolver(catalogClient, productRepo, cfg.Pricing.Strict)
	couponService := service.NewCouponService(couponRepo, festival.DefaultCalendar)
	orderService := service.NewOrderService(pool, orderRepo, userRepo, priceResolver, couponService, notifier, cfg.Loyalty.XPDivisor)
	userService := service.NewUserService(userRepo)

	couponHandler := handler.NewCouponHandler(couponService, validate)
	orderHandler := handler.NewOrderHandler(orderService, validate)
	userHandler := handler.NewUserHandler(userService)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)

	// Coupon routes
	app.Post("/api/coupons", couponHandler.CreateCoupon)
	app.Get("/api/coupons", couponHandler.ListActiveCoupons)
	app.Post("/api/coupons/validate", couponHandler.ValidateCoupon)
	app.Delete("/api/coupons/:code", couponHandler.DeactivateCoupon)

	// Order routes
	app.Post("/api/orders", orderHandler.CreateOrder)
	app.Get("/api/orders", orderHandler.ListMyOrders)
	app.Get("/api/orders/:id", orderHandler.GetOrder)
	app.Patch("/api/orders/:id/status", orderHandler.UpdateOrderStatus)
	app.Post("/api/orders/:id/cancel", orderHandler.CancelOrder)
	app.Get("/api/admin/orders", orderHandler.ListAllOrders)

	// User routes
	app.Get("/api/users/me/progression", userHandler.GetProgression)

	g, ctx := errgroup.WithContext(ctx)

	// Background festival coupon sync
	if cfg.Festival.SyncEnabled {
		g.Go(func() error {
			couponService.RunFestivalSync(ctx, time.Duration(cfg.Festival.SyncIntervalMinutes)*time.Minute)
			return nil
		})
	}

	// Notification delivery worker
	if webhookNotifier != nil {
		g.Go(func() error {
			webhookNotifier.Run(ctx)
			return nil
		})
	}

	// HTTP server
	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown when the context is cancelled (signal or worker error)
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		// Shutdown server (waits for in-flight requests)
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during server shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("application terminated with error")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
