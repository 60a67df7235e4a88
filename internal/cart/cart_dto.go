package cart

import "github.com/shopspring/decimal"

// AddItemRequest: quantity omitted or 0 means 1.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int32  `json:"quantity" validate:"gte=0,lte=999"`
}

type CartCountResponse struct {
	Count int64 `json:"count"`
}

type CartProductResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Status   string          `json:"status"`
}

// CartItemResponse.Product is nil when the product no longer resolves.
type CartItemResponse struct {
	ID        string               `json:"id"`
	ProductID string               `json:"productId"`
	Quantity  int32                `json:"quantity"`
	Product   *CartProductResponse `json:"product"`
	LineTotal decimal.Decimal      `json:"lineTotal"`
	AddedAt   string               `json:"addedAt"`
}

type CartResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int64              `json:"totalQuantity"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	UpdatedAt     string             `json:"updatedAt"`
}
