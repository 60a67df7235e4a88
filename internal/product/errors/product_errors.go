package producterrors

import (
	"net/http"

	"campus-marketplace/internal/pkg/apperror"
)

var (
	ErrProductNotFound = apperror.New(
		apperror.CodeNotFound,
		"Product not found",
		http.StatusNotFound,
	)

	ErrInvalidProductID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid product id",
		http.StatusBadRequest,
	)

	ErrProductFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to load product",
		http.StatusInternalServerError,
	)
)
