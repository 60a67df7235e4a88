package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campus-marketplace/internal/config"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var retryDelay = 5 * time.Second

func connectDBWithRetry(dsn string, maxRetries int, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 1; i <= maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				logger.Info("connected to database")
				return db, nil
			}
			db.Close()
		}

		logger.Warn("database connection failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("connect database: %w", err)
}

func connectRedisWithRetry(cfg config.RedisConfig, maxRetries int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var err error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			logger.Info("connected to redis", zap.String("addr", cfg.Addr))
			return rdb, nil
		}

		logger.Warn("redis connection failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}

	rdb.Close()
	return nil, fmt.Errorf("connect redis: %w", err)
}

func connectMongoWithRetry(cfg config.MongoConfig, maxRetries int, logger *zap.Logger) (*mongo.Client, error) {
	var err error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var client *mongo.Client
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				cancel()
				logger.Info("connected to mongo", zap.String("database", cfg.Database))
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}
		cancel()

		logger.Warn("mongo connection failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("connect mongo: %w", err)
}

func connectKafkaWithRetry(cfg config.KafkaConfig, maxRetries int, logger *zap.Logger) (*kafka.Writer, error) {
	var err error
	for i := 1; i <= maxRetries; i++ {
		var conn *kafka.Conn
		conn, err = kafka.Dial("tcp", cfg.Broker)
		if err == nil {
			conn.Close()
			logger.Info("connected to kafka", zap.String("broker", cfg.Broker))
			return &kafka.Writer{
				Addr:                   kafka.TCP(cfg.Broker),
				Topic:                  cfg.Topic,
				Balancer:               &kafka.LeastBytes{},
				AllowAutoTopicCreation: true,
			}, nil
		}

		logger.Warn("kafka connection failed", zap.Int("attempt", i), zap.Int("max", maxRetries), zap.Error(err))
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("connect kafka: %w", err)
}
