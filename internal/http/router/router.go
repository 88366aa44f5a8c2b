package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tilemart/quotation-api/internal/config"
	"github.com/tilemart/quotation-api/internal/database"
	"github.com/tilemart/quotation-api/internal/http/handler"
	"github.com/tilemart/quotation-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/tilemart/quotation-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	rateLimiter      *middleware.RateLimiter
	catalogHandler   *handler.CatalogHandler
	customerHandler  *handler.CustomerHandler
	quotationHandler *handler.QuotationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	catalogHandler *handler.CatalogHandler,
	customerHandler *handler.CustomerHandler,
	quotationHandler *handler.QuotationHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		rateLimiter:      rateLimiter,
		catalogHandler:   catalogHandler,
		customerHandler:  customerHandler,
		quotationHandler: quotationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(&rt.cfg.ApiKey, rt.logger))

		// Catalog
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", rt.catalogHandler.List)
			r.Post("/", rt.catalogHandler.Create)
			r.Get("/names", rt.catalogHandler.Names)
			r.Get("/sizes", rt.catalogHandler.Sizes)
			r.Get("/surfaces", rt.catalogHandler.Surfaces)
			r.Get("/entries", rt.catalogHandler.Entries)
			r.Get("/resolve", rt.catalogHandler.Resolve)
			r.Post("/{id}/archive", rt.catalogHandler.Archive)
		})

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", rt.customerHandler.List)
			r.Post("/", rt.customerHandler.Create)
			r.Get("/{id}", rt.customerHandler.Get)
		})

		// Quotations
		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", rt.quotationHandler.List)
			r.Post("/", rt.quotationHandler.Create)
			r.Get("/{id}", rt.quotationHandler.Get)
			r.Put("/{id}", rt.quotationHandler.Update)
			r.Delete("/{id}", rt.quotationHandler.Delete)
			r.Put("/{id}/status", rt.quotationHandler.UpdateStatus)
			r.Post("/{id}/duplicate", rt.quotationHandler.Duplicate)
			r.Post("/{id}/recalculate", rt.quotationHandler.Recalculate)
		})
	})

	return r
}
