package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any *StatusError carrying a 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoRefreshToken indicates the store holds no refresh token.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrMissingAccessToken indicates a token response without an access token.
	ErrMissingAccessToken = errors.New("token response has no access token")
	// ErrNotConfigured is returned by New when a required setting is missing.
	ErrNotConfigured = errors.New("client not configured")
)

// StatusError is returned for any response outside the 2xx range. It carries
// the response as received.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

// Is reports whether target is ErrUnauthorized and the status is 401.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a
// *StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
