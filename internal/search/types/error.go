package types

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidProviderID   = errors.New("invalid provider ID")
	ErrInvalidProviderName = errors.New("invalid provider name")
	ErrInvalidAPIHost      = errors.New("invalid API host")

	// Request errors
	ErrInvalidRequest = errors.New("invalid search request")

	// Provider errors
	ErrProviderNotFound     = errors.New("provider not found")
	ErrProviderNotAvailable = errors.New("provider not available")
	ErrProviderTimeout      = errors.New("provider timeout")
	ErrInvalidResponse      = errors.New("invalid response from provider")
	ErrMissingRequiredField = errors.New("offer missing required field")

	// Aggregation errors
	ErrNoProviderAvailable = errors.New("NoProviderAvailable")
)

// ProviderError wraps provider-specific errors. It is produced at the
// boundary of each provider call and recorded per provider; it never
// propagates out of the aggregator as a request failure on its own.
type ProviderError struct {
	Provider ProviderID
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
