package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jefwallets/ledger/internal/adapter/http/handler"
	"github.com/jefwallets/ledger/internal/adapter/http/middleware"
	"github.com/jefwallets/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler    *handler.LedgerHandler
	AccountHandler   *handler.AccountHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Write path
		r.Route("/ledger", func(r chi.Router) {
			r.Post("/entries", cfg.LedgerHandler.RecordEntry)
			r.Post("/entries/enqueue", cfg.LedgerHandler.EnqueueEntry)
			r.Post("/transfers", cfg.LedgerHandler.RecordTransfer)
			r.Post("/transfers/enqueue", cfg.LedgerHandler.EnqueueTransfer)
		})

		// Read path
		r.Route("/accounts/{accountNumber}", func(r chi.Router) {
			r.Get("/balance", cfg.AccountHandler.GetBalance)
			r.Get("/entries", cfg.AccountHandler.ListEntries)
			r.Get("/transfers", cfg.AccountHandler.ListTransfers)
			r.Get("/funds/verify", cfg.AccountHandler.VerifyFunds)
		})
	})

	return r
}
