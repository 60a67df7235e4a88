package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campus-marketplace/internal/cart"
	"campus-marketplace/internal/checkout"
	"campus-marketplace/internal/cloudinary"
	"campus-marketplace/internal/config"
	"campus-marketplace/internal/middleware"
	"campus-marketplace/internal/midtrans"
	"campus-marketplace/internal/outbox"
	"campus-marketplace/internal/product"
	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Infra holds the connections the modules are built on. Redis and Mongo are
// optional.
type Infra struct {
	DB    *sql.DB
	Redis *redis.Client
	Mongo *mongo.Database
}

type modules struct {
	cartHandler     *cart.Handler
	productHandler  *product.Handler
	checkoutHandler *checkout.Handler
}

func newImageService(cfg config.CloudinaryConfig, logger *zap.Logger) cloudinary.Service {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		logger.Info("cloudinary not configured, serving image references as-is")
		return cloudinary.NewPassthrough()
	}
	svc, err := cloudinary.NewService(cfg.CloudName, cfg.APIKey, cfg.APISecret, cfg.Folder)
	if err != nil {
		logger.Warn("cloudinary init failed, serving image references as-is", zap.Error(err))
		return cloudinary.NewPassthrough()
	}
	return svc
}

func newCartRepository(cfg *config.Config, infra Infra, logger *zap.Logger) (cart.Repository, error) {
	if cfg.Storage.CartStore != config.CartStoreMongo {
		return cart.NewRepository(infra.DB), nil
	}
	if infra.Mongo == nil {
		return nil, fmt.Errorf("CART_STORE=%s requires a mongo connection", config.CartStoreMongo)
	}

	repo := cart.NewMongoRepository(infra.Mongo)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := cart.EnsureIndexes(ctx, repo); err != nil {
		return nil, fmt.Errorf("ensure cart indexes: %w", err)
	}
	logger.Info("cart store: mongo")
	return repo, nil
}

func newCartService(cfg *config.Config, infra Infra, catalog product.Catalog, logger *zap.Logger) (cart.Service, error) {
	repo, err := newCartRepository(cfg, infra, logger)
	if err != nil {
		return nil, err
	}

	var cache cart.Cache = cart.NewNoopCache()
	if infra.Redis != nil {
		cache = cart.NewRedisCache(infra.Redis)
	}

	return cart.NewService(cart.Deps{
		Repo:    repo,
		Catalog: catalog,
		Cache:   cache,
		Logger:  logger,
	}), nil
}

func buildModules(cfg *config.Config, infra Infra, logger *zap.Logger) (*modules, error) {
	queries := dbgen.New(infra.DB)

	// --- Repositories ---
	productRepo := product.NewRepository(queries)
	checkoutRepo := checkout.NewRepository(queries)
	outboxRepo := outbox.NewRepository(queries)

	// --- Services ---
	productService := product.NewService(productRepo, newImageService(cfg.Cloudinary, logger), logger)

	cartService, err := newCartService(cfg, infra, productService, logger)
	if err != nil {
		return nil, err
	}

	provider := midtrans.NewAdapter(midtrans.Config{
		ServerKey:    cfg.Midtrans.ServerKey,
		IsProduction: cfg.Midtrans.IsProduction,
	}, logger)

	checkoutService := checkout.NewService(checkout.Deps{
		DB:              infra.DB,
		Repo:            checkoutRepo,
		OutboxRepo:      outboxRepo,
		Cart:            cartService,
		Catalog:         productService,
		Provider:        provider,
		SuccessURL:      cfg.Checkout.SuccessURL,
		CancelURL:       cfg.Checkout.CancelURL,
		Currency:        cfg.Checkout.Currency,
		ProviderTimeout: cfg.Checkout.ProviderTimeout,
		Logger:          logger,
	})

	// --- Handlers ---
	return &modules{
		cartHandler:     cart.NewHandler(cartService, logger),
		productHandler:  product.NewHandler(productService),
		checkoutHandler: checkout.NewHandler(checkoutService, logger),
	}, nil
}

func registerModules(router *gin.Engine, cfg *config.Config, infra Infra, logger *zap.Logger) error {
	m, err := buildModules(cfg, infra, logger)
	if err != nil {
		return err
	}

	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)
	idempotency := middleware.Idempotency(infra.Redis, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		product.RegisterRoutes(api, m.productHandler)
		cart.RegisterRoutes(api, m.cartHandler, auth)
		checkout.RegisterRoutes(api, m.checkoutHandler, auth, idempotency)
	}
	return nil
}
