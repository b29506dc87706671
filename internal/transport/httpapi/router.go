package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/duetrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/duetrack/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger             *logger.Logger
	AllowedOrigins     []string
	AuthHandler        *handler.AuthHandler
	TransactionHandler *handler.TransactionHandler
	AccountHandler     *handler.AccountHandler
	CardHandler        *handler.CardHandler
	HealthHandler      *handler.HealthHandler
	JWTMiddleware      func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit())

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public)
		if cfg.AuthHandler != nil {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		// Protected routes
		if cfg.JWTMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.JWTMiddleware)

				if cfg.TransactionHandler != nil {
					r.Post("/transactions", cfg.TransactionHandler.CreateTransaction)
					r.Get("/transactions", cfg.TransactionHandler.GetTransactions)
					r.Post("/transactions/pay", cfg.TransactionHandler.PayBatch)
					r.Post("/transactions/reverse", cfg.TransactionHandler.ReverseBatch)
					r.Get("/transactions/{id}", cfg.TransactionHandler.GetTransaction)
					r.Post("/transactions/{id}/pay", cfg.TransactionHandler.Pay)
					r.Post("/transactions/{id}/reverse", cfg.TransactionHandler.Reverse)
				}

				if cfg.AccountHandler != nil {
					r.Post("/accounts", cfg.AccountHandler.CreateAccount)
					r.Get("/accounts", cfg.AccountHandler.GetAccounts)
					r.Get("/accounts/{id}/balance", cfg.AccountHandler.GetBalance)
				}

				if cfg.CardHandler != nil {
					r.Post("/cards", cfg.CardHandler.CreateCard)
					r.Get("/cards", cfg.CardHandler.GetCards)
					r.Get("/cards/{id}", cfg.CardHandler.GetCard)
				}
			})
		}
	})

	return r
}
