package cart

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the stored aggregate: one per user, holding product references
// only. Prices and names are joined at read time.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// MaxItemQuantity caps a single line, including quantities merged by
// repeated adds.
const MaxItemQuantity = 999

// LineItem quantity is always >= 1; a product appears at most once per cart.
type LineItem struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

func (c Cart) TotalQuantity() int64 {
	var n int64
	for _, it := range c.Items {
		n += int64(it.Quantity)
	}
	return n
}

func (c Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// Find is a linear scan; carts hold tens of items at most.
func (c Cart) Find(productID uuid.UUID) (LineItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}
