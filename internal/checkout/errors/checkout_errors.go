package checkouterrors

import (
	"net/http"

	"campus-marketplace/internal/pkg/apperror"
)

var (
	ErrEmptyCart = apperror.New(
		apperror.CodeInvalidInput,
		"Cart is empty, add items before checking out",
		http.StatusBadRequest,
	)

	// ErrPaymentUpstream means the provider failed or timed out; the cart is untouched.
	ErrPaymentUpstream = apperror.New(
		apperror.CodeUpstreamError,
		"Payment provider is unavailable, please try again",
		http.StatusBadGateway,
	)

	ErrCheckoutFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to create checkout session",
		http.StatusInternalServerError,
	)

	ErrSessionNotFound = apperror.New(
		apperror.CodeNotFound,
		"Checkout session not found",
		http.StatusNotFound,
	)

	ErrInvalidNotification = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid payment notification payload",
		http.StatusBadRequest,
	)

	ErrInvalidSignature = apperror.New(
		apperror.CodeForbidden,
		"Invalid payment notification signature",
		http.StatusForbidden,
	)

	ErrGrossAmountMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"Gross amount does not match checkout session",
		http.StatusBadRequest,
	)

	ErrServerKeyNotConfigured = apperror.New(
		apperror.CodeInternalError,
		"Payment provider server key is not configured",
		http.StatusInternalServerError,
	)
)
