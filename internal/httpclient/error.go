package httpclient

import (
	goerrors "errors"
	"fmt"

	ierr "github.com/beautyops/beautyops/internal/errors"
)

// Error is a non-2xx response from a remote endpoint
type Error struct {
	*ierr.InternalError
	StatusCode int
	Response   []byte
}

func (e *Error) Unwrap() error {
	return e.InternalError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d", e.InternalError.Error(), e.StatusCode)
}

// NewError creates a new HTTP client error
func NewError(statusCode int, response []byte) *Error {
	return &Error{
		InternalError: ierr.NewInternalError(ierr.ErrCodeHTTPClient, "http client error"),
		StatusCode:    statusCode,
		Response:      response,
	}
}

// IsHTTPError checks if an error is an HTTP client error
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
