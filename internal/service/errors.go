package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery    = errors.New("concept must not be empty")
	ErrInvalidQuery  = errors.New("concept must be valid UTF-8 text")
	ErrNoMatches     = errors.New("no mentions found")
	ErrMissingAPIKey = errors.New("api key is required")
)

// ExternalServiceError wraps any failure of the generative-AI provider:
// transport errors, rejected credentials, quota or error statuses.
type ExternalServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
