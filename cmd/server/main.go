package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/api"
	"github.com/jafarshop/checkoutapi/internal/config"
	"github.com/jafarshop/checkoutapi/internal/marketplace"
	"github.com/jafarshop/checkoutapi/internal/repository"
	"github.com/jafarshop/checkoutapi/internal/repository/memory"
	"github.com/jafarshop/checkoutapi/internal/repository/postgres"
	"github.com/jafarshop/checkoutapi/internal/repository/redis"
	"github.com/jafarshop/checkoutapi/internal/service"
)

const purgeInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	// Money goes out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	logger.Info("Starting checkout API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("marketplace", cfg.Marketplace.BaseURL),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	closeRedis := attachSessionStore(repos, cfg, logger)
	defer closeRedis()

	market := marketplace.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.Timeout, logger)
	svc := service.NewCheckoutService(repos, market, cfg.Checkout, logger)

	// Initialize router
	router := api.NewRouter(cfg, svc, market, repos, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Marketplace.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go runPendingOrderPurge(purgeCtx, svc, logger)

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopPurge()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// attachSessionStore fills the session store, sequencer and placing lock from redis, or from
// process memory when REDIS_ADDR is empty (single instance only).
func attachSessionStore(repos *repository.Repositories, cfg *config.Config, logger *zap.Logger) func() {
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, keeping checkout sessions in process memory")
		mem := memory.NewRepositories()
		repos.Session = mem.Session
		repos.Sequencer = mem.Sequencer
		repos.PlacingLock = mem.PlacingLock
		return func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}

	repos.Session = redis.NewSessionStore(rdb, logger)
	repos.Sequencer = redis.NewSequencer(rdb, cfg.Checkout.SessionTTL)
	repos.PlacingLock = redis.NewPlacingLock(rdb)
	return func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}

// runPendingOrderPurge deletes expired pending orders on startup and every purgeInterval
func runPendingOrderPurge(ctx context.Context, svc *service.CheckoutService, logger *zap.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		if _, err := svc.PurgeExpiredPendingOrders(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Pending order purge failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
