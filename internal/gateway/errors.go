package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork is returned when no HTTP response was obtained at all
	// (connection failure, timeout, canceled context).
	ErrNetwork = errors.New("network error")

	// ErrUnsupported is returned when an optional operation is invoked on a
	// gateway that does not implement it.
	ErrUnsupported = errors.New("operation not supported by gateway")
)

// StatusError is a transport failure carrying the HTTP status and the
// server-supplied message, when one was present in the response body.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// IsNotFound reports whether err is an HTTP 404 failure.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is an HTTP 401 failure.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden reports whether err is an HTTP 403 failure.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsServerError reports whether err is a 5xx failure.
func IsServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 500
}

func hasStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// UserMessage maps a gateway failure to the stable user-facing string shown
// in the store's error field. The mapping is by status only; any
// server-supplied text stays on the error itself for diagnostics.
func UserMessage(err error) string {
	var se *StatusError
	if !errors.As(err, &se) {
		return "an error occurred"
	}
	switch {
	case se.Status == http.StatusNotFound:
		return "resource not found"
	case se.Status == http.StatusBadRequest:
		return "invalid request data"
	case se.Status == http.StatusUnauthorized:
		return "unauthorized access"
	case se.Status == http.StatusForbidden:
		return "access forbidden"
	case se.Status >= 500:
		return "internal server error"
	default:
		return "an error occurred"
	}
}
