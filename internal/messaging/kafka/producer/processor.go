package producer

import (
	"context"
	"time"

	"campus-marketplace/internal/outbox"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultBatchSize    = 10
)

type Processor struct {
	repo      outbox.Repository
	writer    MessageWriter
	interval  time.Duration
	batchSize int32
	logger    *zap.Logger
}

func NewProcessor(repo outbox.Repository, writer MessageWriter, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		repo:      repo,
		writer:    writer,
		interval:  DefaultPollInterval,
		batchSize: DefaultBatchSize,
		logger:    logger.Named("outbox.worker"),
	}
}

// Run polls the outbox until ctx is done.
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("[WORKER] outbox processor started", zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("[WORKER] outbox processor stopped")
			return
		case <-ticker.C:
			if _, err := p.ProcessPending(ctx); err != nil {
				p.logger.Error("[WORKER] error processing events", zap.Error(err))
			}
		}
	}
}

// ProcessPending publishes one batch and returns how many events were sent.
// A failed publish marks the event FAILED so it is retried on a later poll.
func (p *Processor) ProcessPending(ctx context.Context) (int, error) {
	events, err := p.repo.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	p.logger.Info("[WORKER] processing pending events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		logger := p.logger.With(
			zap.String("event_id", event.ID.String()),
			zap.String("event_type", event.EventType),
			zap.Int32("attempts", event.Attempts),
		)

		if err := publishEvent(ctx, p.writer, event); err != nil {
			logger.Warn("[WORKER] failed to publish event", zap.Error(err))
			if err := p.repo.MarkFailed(ctx, event.ID); err != nil {
				logger.Error("[WORKER] failed to mark event FAILED", zap.Error(err))
			}
			continue
		}

		if err := p.repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("[WORKER] failed to mark event SENT", zap.Error(err))
			continue
		}

		sent++
		logger.Debug("[WORKER] event sent")
	}

	return sent, nil
}
