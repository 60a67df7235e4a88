package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"campus-marketplace/internal/config"
	"campus-marketplace/internal/middleware"
	"campus-marketplace/internal/shared/database/migrations"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure, applies migrations and returns the
// routed engine. cleanup releases every connection BuildApp opened.
func BuildApp(cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	// 1. Setup Infrastructure
	infra, cleanup, err := connectInfra(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := migrations.Up(infra.DB, cfg.Database.MigrationsPath); err != nil {
		cleanup()
		return nil, nil, err
	}

	// 2. Router & ambient middleware
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewHTTPMetrics(reg)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		metrics.Middleware(),
	)

	router.GET("/metrics", metrics.Handler())
	router.GET("/healthz", healthHandler(infra.DB))

	// 3. Register Modules & Routes
	if err := registerModules(router, cfg, infra, logger); err != nil {
		cleanup()
		return nil, nil, err
	}

	return router, cleanup, nil
}

// connectInfra opens postgres, redis when reachable and mongo when it
// backs the cart.
func connectInfra(cfg *config.Config, logger *zap.Logger) (Infra, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	db, err := connectDBWithRetry(cfg.Database.URL, cfg.Database.MaxRetries, logger)
	if err != nil {
		return Infra{}, nil, err
	}
	closers = append(closers, func() { db.Close() })
	infra := Infra{DB: db}

	// redis only backs the cart cache and idempotency keys
	rdb, err := connectRedisWithRetry(cfg.Redis, 2, logger)
	if err != nil {
		logger.Warn("continuing without redis", zap.Error(err))
	} else {
		infra.Redis = rdb
		closers = append(closers, func() { rdb.Close() })
	}

	if cfg.Storage.CartStore == config.CartStoreMongo {
		client, err := connectMongoWithRetry(cfg.Mongo, cfg.Database.MaxRetries, logger)
		if err != nil {
			cleanup()
			return Infra{}, nil, err
		}
		closers = append(closers, func() { disconnectMongo(client, logger) })
		infra.Mongo = client.Database(cfg.Mongo.Database)
	}

	return infra, cleanup, nil
}

func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func disconnectMongo(client *mongo.Client, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		logger.Warn("mongo disconnect failed", zap.Error(err))
	}
}
