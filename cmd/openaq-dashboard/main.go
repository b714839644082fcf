package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jmle94/openaq-dashboard/internal/airquality"
	httpapi "github.com/jmle94/openaq-dashboard/internal/api/http"
	"github.com/jmle94/openaq-dashboard/internal/config"
	"github.com/jmle94/openaq-dashboard/internal/dashboard"
	"github.com/jmle94/openaq-dashboard/internal/openaq"
	"github.com/jmle94/openaq-dashboard/internal/scheduler"
	"github.com/jmle94/openaq-dashboard/internal/store"
)

func main() {
	// Load configuration. A missing API key fails here, before any
	// network call is attempted.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound OpenAQ calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Rate-limited OpenAQ client and the injected query cache.
	client := openaq.NewClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.RequestsPerMinute)
	cache := store.NewCache(cfg.CacheTTL)

	// Core service orchestrating the client and cache.
	service := airquality.NewService(client, cache)

	// Per-session dashboard view-model state.
	sessions := dashboard.NewSessionRegistry(cfg.SessionMaxAge)

	// Scheduler that periodically re-primes the cache.
	sched := scheduler.New(cfg.WarmCountries, cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "openaq-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "openaq-dashboard",
			"remaining": client.Remaining(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, sessions)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
