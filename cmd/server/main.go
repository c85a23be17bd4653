package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvalin/aurum/internal"
	"github.com/dvalin/aurum/internal/handler"
	"github.com/dvalin/aurum/internal/middleware"
	"github.com/dvalin/aurum/internal/notification"
	"github.com/dvalin/aurum/internal/payment"
	"github.com/dvalin/aurum/internal/postgres"
	"github.com/dvalin/aurum/internal/pricing"
	"github.com/dvalin/aurum/internal/router"
	"github.com/dvalin/aurum/internal/routes"
	"github.com/dvalin/aurum/internal/service"
	"github.com/dvalin/aurum/internal/telemetry"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application queries
	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Stores and ledger
	productStore := postgres.NewProductStore(pool)
	cartStore := postgres.NewCartStore(pool)
	orderStore := postgres.NewOrderStore(pool)
	ledger := postgres.NewInventoryLedger(pool, logger)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics("aurum", registry)
	businessMetrics := telemetry.NewBusinessMetrics(registry)

	// Pricing rules
	pricer := pricing.NewCalculator(pricing.Config{
		TaxRate:                    decimal.NewFromFloat(cfg.Pricing.TaxRate),
		FreeShippingThresholdPaise: cfg.Pricing.FreeShippingThresholdPaise,
		FlatShippingPaise:          cfg.Pricing.FlatShippingPaise,
	})

	// Payment gateway
	gateway := payment.NewRazorpayProvider(cfg.Payment.KeyID, cfg.Payment.KeySecret)

	// Notifications: email always, SMS only when a provider is configured
	emailSender := notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     int(cfg.Email.Port),
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)
	var smsSender notification.SMSSender
	if cfg.SMS.APIURL != "" {
		smsSender = notification.NewHTTPSMSSender(cfg.SMS.APIURL, cfg.SMS.APIKey, cfg.SMS.SenderID)
	}
	notifier := notification.NewService(emailSender, smsSender, cfg.Email.From, cfg.StoreName, logger)

	// Services
	cartService := service.NewCartService(cartStore, productStore, pricer)
	orderService := service.NewOrderService(orderStore, cartStore, ledger, gateway, pricer, notifier, businessMetrics, logger)

	// Handlers
	productHandler := handler.NewProductHandler(productStore, cfg.CatalogCacheTTL)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(orderService, cartService)
	adminHandler := handler.NewAdminHandler(productStore, orderService, ledger, productHandler.Invalidate)
	webhookHandler := handler.NewWebhookHandler(orderService)

	// Router with global middleware
	r := router.New(
		middleware.Recovery(logger),
		middleware.RequestID,
		httpMetrics.Instrument,
		middleware.WithRequestLogger(logger),
		middleware.WithCustomer,
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Register route groups
	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		ProductHandler: productHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		AdminHandler: adminHandler,
		Token:        cfg.Admin.Token,
	})
	routes.RegisterWebhookRoutes(r, routes.WebhookDeps{
		WebhookHandler: webhookHandler,
	})

	// Start server with graceful shutdown so in-flight checkouts finish
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-shutdownCtx.Done():
	}

	logger.Info("Shutting down...")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(timeoutCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
