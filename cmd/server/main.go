package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"blog-backend/internal/auth"
	"blog-backend/internal/cache"
	"blog-backend/internal/config"
	"blog-backend/internal/engine"
	"blog-backend/internal/logging"
	"blog-backend/internal/metadata"
	"blog-backend/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	lg, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync() //nolint:errcheck
	lg.Info("config loaded",
		zap.Int("port", cfg.Server.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("db", cfg.Database.Name))

	// 3. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 4. Bootstrap tables and default accounts
	if err := db.Bootstrap(ctx); err != nil {
		lg.Fatal("failed to bootstrap schema", zap.Error(err))
	}
	lg.Info("database ready", zap.String("dialect", db.Dialect.Name()))

	// 5. Listing allow-lists and payload rules
	reg, err := metadata.NewRegistry()
	if err != nil {
		lg.Fatal("invalid listing allow-lists", zap.Error(err))
	}
	lg.Info("listing allow-lists loaded", zap.Strings("resources", reg.Resources()))
	validator, err := engine.NewValidator(metadata.PayloadRules())
	if err != nil {
		lg.Fatal("invalid payload rules", zap.Error(err))
	}

	// 6. Listing cache
	listingCache, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		lg.Fatal("failed to connect to cache", zap.Error(err))
	}
	defer listingCache.Close()

	// 7. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: engine.ErrorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(logging.Middleware(lg))

	// 8. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 9. Auth routes (no auth required)
	authHandler := auth.NewAuthHandler(db, validator, cfg.JWTSecret)
	auth.RegisterAuthRoutes(app, authHandler)

	// 10. Resource routes
	handler := engine.NewHandler(db, reg, listingCache, validator)
	engine.RegisterRoutes(app, handler, auth.AuthMiddleware(cfg.JWTSecret), auth.RequireAdmin())

	// 11. Start server
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		lg.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			lg.Error("shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	lg.Info("starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
