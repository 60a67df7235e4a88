package apperror_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"campus-marketplace/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

var errNotFound = apperror.New(apperror.CodeNotFound, "Thing not found", http.StatusNotFound)

func TestToHTTP(t *testing.T) {
	t.Run("nil_error", func(t *testing.T) {
		res := apperror.ToHTTP(nil)
		assert.Equal(t, http.StatusOK, res.Status)
	})

	t.Run("app_error", func(t *testing.T) {
		res := apperror.ToHTTP(errNotFound)
		assert.Equal(t, http.StatusNotFound, res.Status)
		assert.Equal(t, apperror.CodeNotFound, res.Code)
		assert.Equal(t, "Thing not found", res.Message)
	})

	t.Run("wrapped_app_error", func(t *testing.T) {
		res := apperror.ToHTTP(fmt.Errorf("repo: %w", errNotFound))
		assert.Equal(t, http.StatusNotFound, res.Status)
	})

	t.Run("bare_deadline_is_gateway_timeout", func(t *testing.T) {
		res := apperror.ToHTTP(fmt.Errorf("load cart: %w", context.DeadlineExceeded))
		assert.Equal(t, http.StatusGatewayTimeout, res.Status)
		assert.Equal(t, apperror.CodeUpstreamError, res.Code)
	})

	t.Run("app_error_wins_over_deadline", func(t *testing.T) {
		res := apperror.ToHTTP(errNotFound.WithCause(context.DeadlineExceeded))
		assert.Equal(t, http.StatusNotFound, res.Status)
	})

	t.Run("unknown_error_is_hidden", func(t *testing.T) {
		res := apperror.ToHTTP(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, res.Status)
		assert.Equal(t, "internal server error", res.Message)
	})
}

func TestAppError_Wrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := errNotFound.WithCause(cause)

	assert.ErrorIs(t, err, errNotFound)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: timeout")

	res := apperror.ToHTTP(err)
	assert.Equal(t, "Thing not found", res.Message)
	assert.NotContains(t, res.Message, "dial tcp")
}
