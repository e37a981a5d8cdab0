// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// ErrUnavailable marks a dependency that cannot serve the request.
var ErrUnavailable = errors.New("service unavailable")

// RespondError maps errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnavailable) {
		Problem(w, http.StatusServiceUnavailable, "Service Unavailable", err.Error())
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
