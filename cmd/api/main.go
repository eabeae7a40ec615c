package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/Pesokrava/product_catalog/internal/config"
	"github.com/Pesokrava/product_catalog/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/product_catalog/internal/delivery/http"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/handler"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/cache"
	"github.com/Pesokrava/product_catalog/internal/pkg/database"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/product_catalog/internal/repository/cache"
	"github.com/Pesokrava/product_catalog/internal/repository/postgres"
	authusecase "github.com/Pesokrava/product_catalog/internal/usecase/auth"
	"github.com/Pesokrava/product_catalog/internal/usecase/like"
	"github.com/Pesokrava/product_catalog/internal/usecase/product"
	"github.com/Pesokrava/product_catalog/internal/usecase/user"

	_ "github.com/Pesokrava/product_catalog/docs"
)

// @title Product Catalog API
// @version 1.0
// @description Product catalog with authentication, likes, cached paginated search and event notifications.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/product_catalog
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Products
// @tag.description Product management endpoints

// @tag.name Likes
// @tag.description Like toggling and like counts

// @tag.name Auth
// @tag.description Registration, login and token refresh

// @tag.name Users
// @tag.description User profile endpoints

const (
	connectRetries    = 10
	connectRetryDelay = 2 * time.Second
	limiterClientTTL  = 10 * time.Minute
)

type eventPublisher interface {
	domain.EventPublisher
	Close()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel)
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting Product Catalog API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, appLogger, connectRetries, connectRetryDelay)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	store, err := newCacheStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize cache", err)
	}
	coherence := cacheRepo.NewCoherence(cacheRepo.NewBreakerStore(store, cfg.Cache.BreakerTimeout, appLogger), appLogger)
	defer func() {
		if err := coherence.Close(); err != nil {
			appLogger.Error("Failed to close cache", err)
		}
	}()

	publisher := newPublisher(cfg, appLogger)
	defer publisher.Close()

	productRepo := postgres.NewProductRepository(db)
	likeRepo := postgres.NewLikeRepository(db)
	userRepo := postgres.NewUserRepository(db)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	productService := product.NewService(productRepo, coherence, publisher, cfg.Cache.ProductPageTTL, appLogger)
	likeService := like.NewService(productRepo, likeRepo, coherence, publisher, cfg.Cache.LikeCountTTL, appLogger)
	userService := user.NewService(userRepo, hasher, appLogger)
	authService := authusecase.NewService(userRepo, hasher, tokens, appLogger)

	handlers := httpDelivery.Handlers{
		Product: handler.NewProductHandler(productService, appLogger),
		Like:    handler.NewLikeHandler(likeService, appLogger),
		User:    handler.NewUserHandler(userService, appLogger),
		Auth:    handler.NewAuthHandler(authService, appLogger),
	}

	authLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.Server.AuthRateLimit),
		cfg.Server.AuthRateBurst,
		time.Minute,
		limiterClientTTL,
	)
	defer authLimiter.Shutdown()

	router := httpDelivery.NewRouter(handlers, tokens, userRepo, authLimiter, cfg, appLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}

// newCacheStore builds the configured cache backend
func newCacheStore(cfg *config.Config, log *logger.Logger) (cacheRepo.Store, error) {
	if cfg.Cache.Driver == "memory" {
		log.Info("Using in-process cache")
		return cacheRepo.NewMemoryStore(cache.NewMemoryCache(cfg)), nil
	}

	log.Info("Connecting to Redis...")
	client, err := cache.WaitForRedis(cfg, log, connectRetries, connectRetryDelay)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to Redis successfully")
	return cacheRepo.NewRedisStore(client), nil
}

// newPublisher connects to NATS when enabled. Events are best effort, so an
// unreachable broker degrades to dropping them instead of failing startup.
func newPublisher(cfg *config.Config, log *logger.Logger) eventPublisher {
	if !cfg.NATS.Enabled {
		log.Info("NATS disabled, catalog events will not be published")
		return events.NewNoopPublisher(log)
	}

	log.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, log)
	if err != nil {
		log.Error("Failed to create NATS publisher, catalog events will not be published", err)
		return events.NewNoopPublisher(log)
	}
	return publisher
}
