package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusAvailable = "AVAILABLE"
	StatusReserved  = "RESERVED"
	StatusSold      = "SOLD"
)

// Product is the slice of a listing the cart and checkout depend on.
// ImageURL is already resolved for display.
type Product struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Status   string          `json:"status"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	SellerID    string          `json:"sellerId,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"createdAt"`
}
