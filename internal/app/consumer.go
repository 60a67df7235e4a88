package app

import (
	"context"
	"os/signal"
	"syscall"

	"campus-marketplace/internal/config"
	"campus-marketplace/internal/messaging/kafka/consumer"
	"campus-marketplace/internal/outbox"
	"campus-marketplace/internal/product"
	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer clears carts for paid checkout sessions until SIGINT or SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("[CONSUMER] Starting cart consumer...")

	// 1. Connect infrastructure; the cart cache must see the clear
	infra, cleanup, err := connectInfra(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	productService := product.NewService(product.NewRepository(dbgen.New(infra.DB)), nil, logger)
	cartService, err := newCartService(cfg, infra, productService, logger)
	if err != nil {
		return err
	}

	// 2. Setup Kafka reader
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Kafka.Broker},
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer reader.Close()
	logger.Info("[CONSUMER] Kafka reader initialized",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID),
	)

	c := consumer.New(reader, logger)
	c.Handle(outbox.EventCartClear, consumer.CartClearHandler(cartService, logger))

	// 3. Consume until shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c.Run(ctx)

	logger.Info("[CONSUMER] Stopped")
	return nil
}
