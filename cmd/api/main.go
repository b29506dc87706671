package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/duetrack/internal/account"
	"github.com/kislikjeka/duetrack/internal/infra/postgres"
	infraRedis "github.com/kislikjeka/duetrack/internal/infra/redis"
	"github.com/kislikjeka/duetrack/internal/platform/user"
	"github.com/kislikjeka/duetrack/internal/transaction"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi/handler"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/duetrack/pkg/config"
	"github.com/kislikjeka/duetrack/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting Duetrack API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Initialize database connection pool
	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize Redis client for lookup name caching
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Redis connection established")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db.Pool)
	transactionRepo := postgres.NewTransactionRepository(db.Pool)
	accountRepo := postgres.NewAccountRepository(db.Pool)
	cardRepo := postgres.NewCardRepository(db.Pool)
	lookupRepo := postgres.NewLookupRepository(db.Pool)

	// Lookup names go through the Redis read-through cache
	names := infraRedis.NewNameCache(redisClient, lookupRepo, log)

	// Initialize services
	userSvc := user.NewService(userRepo)
	jwtSvc := middleware.NewJWTService(cfg.JWTSecret)
	settlementSvc := transaction.NewService(transactionRepo, cardRepo, names, log)
	accountSvc := account.NewService(accountRepo, transactionRepo, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(userSvc, jwtSvc)
	transactionHandler := handler.NewTransactionHandler(settlementSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	cardHandler := handler.NewCardHandler(cardRepo)
	healthHandler := handler.NewHealthHandler(db)

	// Create HTTP router
	r := httpapi.NewRouter(httpapi.Config{
		Logger:             log,
		AllowedOrigins:     cfg.AllowedOrigins,
		AuthHandler:        authHandler,
		TransactionHandler: transactionHandler,
		AccountHandler:     accountHandler,
		CardHandler:        cardHandler,
		HealthHandler:      healthHandler,
		JWTMiddleware:      middleware.JWTMiddleware(jwtSvc),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
