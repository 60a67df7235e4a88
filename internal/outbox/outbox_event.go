package outbox

import (
	"encoding/json"
	"fmt"

	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/google/uuid"
)

const (
	AggregateCheckout = "CHECKOUT"

	EventCartClear = "CART_CLEAR"

	// MaxAttempts matches the attempts bound in ListPendingOutbox.
	MaxAttempts = 5
)

// CartClearPayload is published once a checkout session is paid.
type CartClearPayload struct {
	UserID      string `json:"user_id"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

func NewEvent(aggregateType string, aggregateID uuid.UUID, eventType string, payload any) (dbgen.CreateOutboxEventParams, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return dbgen.CreateOutboxEventParams{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return dbgen.CreateOutboxEventParams{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       raw,
	}, nil
}
