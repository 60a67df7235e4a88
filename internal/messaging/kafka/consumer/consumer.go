package consumer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// HandlerFunc processes one message payload.
type HandlerFunc func(ctx context.Context, payload []byte) error

type Consumer struct {
	reader     MessageReader
	handlers   map[string]HandlerFunc
	backoff    time.Duration
	maxBackoff time.Duration
	logger     *zap.Logger
}

func New(reader MessageReader, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		reader:     reader,
		handlers:   make(map[string]HandlerFunc),
		backoff:    time.Second,
		maxBackoff: time.Minute,
		logger:     logger.Named("consumer"),
	}
}

// Handle registers fn for messages whose event_type header equals eventType.
func (c *Consumer) Handle(eventType string, fn HandlerFunc) {
	c.handlers[eventType] = fn
}

// Run consumes until ctx is done. A message is committed only after its
// handler succeeds; messages with no handler are committed and skipped.
// A failing handler is retried until it succeeds, and the next message is
// not fetched in the meantime, so no later offset is committed past it.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("[CONSUMER] started consuming messages")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("[CONSUMER] stopped")
				return
			}
			c.logger.Error("[CONSUMER] error fetching message", zap.Error(err))
			c.sleep(ctx, c.backoff)
			continue
		}

		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	meta := readMeta(msg)
	logger := c.logger.With(
		zap.String("event_type", meta.EventType),
		zap.String("aggregate_type", meta.AggregateType),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	fn, ok := c.handlers[meta.EventType]
	if !ok {
		logger.Debug("[CONSUMER] skipping unknown event")
		c.commit(ctx, logger, msg)
		return
	}

	attempt := 0
	err := backoff.RetryNotify(
		func() error {
			attempt++
			return fn(ctx, msg.Value)
		},
		backoff.WithContext(c.retryPolicy(), ctx),
		func(err error, next time.Duration) {
			logger.Warn("[CONSUMER] handler failed",
				zap.Int("attempt", attempt),
				zap.Duration("retry_in", next),
				zap.Error(err),
			)
		},
	)
	if err != nil {
		// uncommitted; redelivered to the next reader of this partition
		logger.Warn("[CONSUMER] stopped before handler succeeded", zap.Int("attempts", attempt), zap.Error(err))
		return
	}
	c.commit(ctx, logger, msg)
}

// retryPolicy never gives up on its own; only ctx ends the retries.
func (c *Consumer) retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.backoff
	b.MaxInterval = c.maxBackoff
	b.MaxElapsedTime = 0
	return b
}

func (c *Consumer) commit(ctx context.Context, logger *zap.Logger, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Error("[CONSUMER] error committing message", zap.Error(err))
	}
}

func (c *Consumer) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
