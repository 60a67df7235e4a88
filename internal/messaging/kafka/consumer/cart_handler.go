package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-marketplace/internal/cart"
	"campus-marketplace/internal/outbox"

	"go.uber.org/zap"
)

// CartClearHandler empties the buyer's cart once their checkout is paid.
func CartClearHandler(cartService cart.Service, logger *zap.Logger) HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, payload []byte) error {
		var data outbox.CartClearPayload
		if err := json.Unmarshal(payload, &data); err != nil {
			// a payload that never decodes would block the partition forever
			logger.Error("[CONSUMER] dropping malformed CART_CLEAR payload", zap.Error(err))
			return nil
		}

		logger.Info("[CONSUMER] clearing cart",
			zap.String("user_id", data.UserID),
			zap.String("order_number", data.OrderNumber),
		)

		if _, err := cartService.ClearCart(ctx, data.UserID); err != nil {
			return fmt.Errorf("clear cart for user %s: %w", data.UserID, err)
		}

		return nil
	}
}
