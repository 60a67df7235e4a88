package checkout

import (
	"context"

	"campus-marketplace/internal/cart"
)

// PaymentProvider is the hosted-checkout collaborator.
//
//go:generate mockgen -source=checkout_ports.go -destination=../mock/checkout/checkout_ports_mock.go -package=mock
type PaymentProvider interface {
	// CreateSession must honour ctx cancellation.
	CreateSession(ctx context.Context, req PaymentSessionRequest) (PaymentSession, error)
	// VerifyNotification checks the notification signature.
	VerifyNotification(n NotificationRequest) error
}

// CartReader is the part of the cart service checkout needs.
type CartReader interface {
	Snapshot(ctx context.Context, userID string) (cart.Cart, error)
}
