package apperror

import (
	"context"
	"errors"
	"net/http"
)

// HTTPError is the client-facing view of an error: status, code and a
// message that never includes the underlying cause.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

var (
	internalHTTP = HTTPError{Status: http.StatusInternalServerError, Code: CodeInternalError, Message: "internal server error"}
	timeoutHTTP  = HTTPError{Status: http.StatusGatewayTimeout, Code: CodeUpstreamError, Message: "request timed out"}
)

// ToHTTP maps err for a response. The first AppError in the chain wins;
// a bare deadline becomes 504 and anything else is an opaque 500.
func ToHTTP(err error) HTTPError {
	if err == nil {
		return HTTPError{Status: http.StatusOK}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{Status: appErr.HTTPStatus, Code: appErr.Code, Message: appErr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return timeoutHTTP
	}
	return internalHTTP
}
