// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrNoTicker      = errors.New("no ticker configured")
	ErrStoreClosed   = errors.New("store is closed")
	ErrFeedClosed    = errors.New("feed connection closed")
	ErrDataNotFound  = errors.New("data not found")
)

// FeedError represents an error from the market data feed.
type FeedError struct {
	URL string
	Op  string
	Err error
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed error [%s] %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("feed error [%s] %s", e.Op, e.URL)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// NewFeedError creates a new FeedError.
func NewFeedError(op, url string, err error) *FeedError {
	return &FeedError{Op: op, URL: url, Err: err}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}
