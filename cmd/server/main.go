package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/user/leafmarket/internal/adapter/api"
	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/adapter/repository/memory"
	mongorepo "github.com/user/leafmarket/internal/adapter/repository/mongo"
	redisrepo "github.com/user/leafmarket/internal/adapter/repository/redis"
	"github.com/user/leafmarket/internal/adapter/storage"
	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/pkg/config"
	"github.com/user/leafmarket/internal/pkg/logger"
	"github.com/user/leafmarket/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewStoreMetrics()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database and Redis Connections ---
	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("mongodb disconnect failed", "error", err)
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Error("mongodb ping failed", "error", err)
		cancelPing()
		os.Exit(1)
	}
	cancelPing()

	db := mongoClient.Database(cfg.MongoDatabase)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// --- Initialize Repositories and Stores ---
	var (
		assetStore domain.AssetStore
		assetDir   string
	)
	switch cfg.AssetBackend {
	case "disk":
		diskStore, err := storage.NewDiskStore(cfg.AssetDir, cfg.AssetBaseURL, logger, m)
		if err != nil {
			logger.Error("failed to initialize asset store", "error", err)
			os.Exit(1)
		}
		assetStore = diskStore
		assetDir = diskStore.Dir()
	default:
		gcsStore, err := storage.NewGCSStore(ctx, cfg.AssetBucket, logger, m)
		if err != nil {
			logger.Error("failed to initialize asset store", "error", err)
			os.Exit(1)
		}
		assetStore = gcsStore
	}

	userRepo, err := mongorepo.NewUserRepository(ctx, db)
	if err != nil {
		logger.Error("failed to initialize user repository", "error", err)
		os.Exit(1)
	}
	roleRepo := mongorepo.NewRoleRepository(db, logger, cfg.RoleCacheTTL, m)
	productRepo := mongorepo.NewProductRepository(db)
	orderRepo := memory.NewOrderRepository(memory.SampleOrders())
	tokenStore := redisrepo.NewTokenRepository(redisClient, logger)

	// --- Initialize Use Cases ---
	authService := usecase.NewAuthService(userRepo, roleRepo, tokenStore, logger, cfg.JWTSecret, cfg.JWTExpiry)
	catalogService := usecase.NewCatalogService(productRepo, assetStore, logger)
	orderService := usecase.NewOrderService(orderRepo, logger)
	checkoutService := usecase.NewCheckoutService(cfg.CheckoutPhone)

	// --- Initialize HTTP Server ---
	router := api.NewRouter(api.RouterDeps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Auth:     authService,
		Catalog:  catalogService,
		Orders:   orderService,
		Checkout: checkoutService,
		AssetDir: assetDir,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting storefront server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server shut down gracefully")
}
