package domain

import (
	"errors"
	"fmt"
)

// KeyPrefix namespaces every key the service writes to the shared cache.
const KeyPrefix = "envie:"

var (
	// ErrEnvieRequired signals a search request without intent text.
	ErrEnvieRequired = errors.New("envie parameter required")
	// ErrNoKeywords signals intent text that reduced to zero significant keywords.
	ErrNoKeywords = errors.New("no significant keyword")
	// ErrInvalidParameter signals a malformed query parameter.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrGeocodeNotFound signals a city the geocoder could not resolve.
	ErrGeocodeNotFound = errors.New("geocode: location not found")
)

// ParameterError wraps ErrInvalidParameter with the offending parameter name.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidParameter.Error(), e.Name, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// NewParameterError creates an invalid parameter error.
func NewParameterError(name, reason string) error {
	return &ParameterError{Name: name, Reason: reason}
}
