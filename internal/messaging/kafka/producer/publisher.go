package producer

import (
	"context"

	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func toMessage(event dbgen.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(event.AggregateID.String()),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType)},
			{Key: HeaderAggregateType, Value: []byte(event.AggregateType)},
		},
	}
}

func publishEvent(ctx context.Context, writer MessageWriter, event dbgen.OutboxEvent) error {
	return writer.WriteMessages(ctx, toMessage(event))
}
