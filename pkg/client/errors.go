package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned when the backend answers 401.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrNoToken is returned when a login response carries no access token.
	ErrNoToken = errors.New("client: login response without access_token")
)

// APIError is a non-2xx backend response.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("client: %s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("client: %s %s: status %d: %s", e.Method, e.Path, e.Status, body)
}

// Unwrap lets errors.Is match ErrUnauthorized on 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
