package app

import (
	"context"
	"os/signal"
	"syscall"

	"campus-marketplace/internal/config"
	"campus-marketplace/internal/messaging/kafka/producer"
	"campus-marketplace/internal/outbox"
	"campus-marketplace/internal/shared/database/dbgen"

	"go.uber.org/zap"
)

// RunWorker relays pending outbox events to kafka until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("[WORKER] Starting outbox processor...")

	// 1. Connect to database
	db, err := connectDBWithRetry(cfg.Database.URL, cfg.Database.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. Setup Kafka writer
	writer, err := connectKafkaWithRetry(cfg.Kafka, cfg.Database.MaxRetries, logger)
	if err != nil {
		return err
	}
	defer writer.Close()
	logger.Info("[WORKER] Kafka writer initialized", zap.String("topic", cfg.Kafka.Topic))

	// 3. Start processor
	outboxRepo := outbox.NewRepository(dbgen.New(db))
	processor := producer.NewProcessor(outboxRepo, writer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processor.Run(ctx)

	logger.Info("[WORKER] Stopped")
	return nil
}
