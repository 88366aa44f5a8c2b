package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tilemart/quotation-api/docs"
	"github.com/tilemart/quotation-api/internal/config"
	"github.com/tilemart/quotation-api/internal/database"
	"github.com/tilemart/quotation-api/internal/http/handler"
	"github.com/tilemart/quotation-api/internal/http/middleware"
	"github.com/tilemart/quotation-api/internal/http/router"
	"github.com/tilemart/quotation-api/internal/jobs"
	"github.com/tilemart/quotation-api/internal/logger"
	"github.com/tilemart/quotation-api/internal/repository"
	"github.com/tilemart/quotation-api/internal/service"
	"go.uber.org/zap"
)

// @title Tilemart Quotation API
// @version 1.0
// @description Price quotation API for tile and flooring sales: catalog cascade, pricing, quotation trees and numbering
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@tilemart.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Static API key guarding all /api/v1 routes

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Configure Swagger host based on environment
	if cfg.App.Environment == "development" || cfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, log)
	customerService := service.NewCustomerService(customerRepo, log)
	sequenceService := service.NewSequenceService(sequenceRepo, customerRepo, log)
	quotationService := service.NewQuotationService(quotationRepo, customerRepo, catalogService, sequenceService, &cfg.Pricing, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		catalogHandler,
		customerHandler,
		quotationHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.ExpirySweepEnabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterExpirySweep(scheduler, &cfg.Jobs, quotationService, log); err != nil {
			log.Error("Failed to register expiry sweep job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with expiry sweep job",
				zap.String("cron_expr", cfg.Jobs.ExpirySweepCron),
			)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
