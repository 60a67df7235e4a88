package consumer

import (
	"campus-marketplace/internal/messaging/kafka/producer"

	"github.com/segmentio/kafka-go"
)

// eventMeta is what the outbox relay stamps on every message it publishes.
type eventMeta struct {
	EventType     string
	AggregateType string
}

func readMeta(msg kafka.Message) eventMeta {
	var m eventMeta
	for _, h := range msg.Headers {
		switch h.Key {
		case producer.HeaderEventType:
			m.EventType = string(h.Value)
		case producer.HeaderAggregateType:
			m.AggregateType = string(h.Value)
		}
	}
	return m
}
