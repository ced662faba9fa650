// Package ingest turns user input (URLs typed into the fetch box, local file
// paths) into library entries.
package ingest

import (
	"errors"
	"fmt"
)

// ValidationError reports input that was rejected before any work was done.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// FetchError reports a page that could not be turned into markdown, either
// because the request failed or because the content service answered with a
// non-2xx status.
type FetchError struct {
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "failed to fetch URL content"
	}
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, msg, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, msg)
}

func (e *FetchError) Unwrap() error { return e.Err }
