package quranapi

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the caller's context was done before or
// while a request was being made. It is never retried.
var ErrCancelled = errors.New("request cancelled")

// ErrNotFound indicates the API (or CDN) answered 404 for the resource.
var ErrNotFound = errors.New("resource not found")

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// APIError is a 2xx response whose envelope code is not 200.
type APIError struct {
	Code   int
	Status string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content API error: code %d (%s)", e.Code, e.Status)
}

// IsCancelled reports whether err stems from cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
