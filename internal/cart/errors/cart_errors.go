package carterrors

import (
	"errors"
	"net/http"

	"campus-marketplace/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	ErrCartNotFound = apperror.New(
		apperror.CodeNotFound,
		"Cart not found",
		http.StatusNotFound,
	)

	ErrCartItemNotFound = apperror.New(
		apperror.CodeNotFound,
		"Item not found in cart",
		http.StatusNotFound,
	)

	ErrInvalidQty = apperror.New(
		apperror.CodeInvalidInput,
		"Quantity must be a positive number",
		http.StatusBadRequest,
	)

	ErrQuantityLimit = apperror.New(
		apperror.CodeInvalidInput,
		"Quantity per item cannot exceed 999",
		http.StatusBadRequest,
	)

	ErrInvalidProductID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid product id",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid cart request",
		http.StatusBadRequest,
	)

	// ErrCartFailed covers storage failures; the cause is logged, never rendered.
	ErrCartFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to process cart",
		http.StatusInternalServerError,
	)
)

// MapValidationError turns validator output into the matching cart error.
func MapValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return ErrInvalidRequest
	}

	switch ve[0].Field() {
	case "ProductID":
		return ErrInvalidProductID
	case "Quantity":
		if ve[0].Tag() == "lte" {
			return ErrQuantityLimit
		}
		return ErrInvalidQty
	default:
		return ErrInvalidRequest
	}
}
