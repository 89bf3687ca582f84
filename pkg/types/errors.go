// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQueryKey is returned when a query key has a missing or
	// ambiguous variable selection or an unknown level.
	ErrInvalidQueryKey = errors.New("invalid query key")

	// ErrRepositoryUnavailable wraps any failure of the evidence repository.
	// A computation that hits it produces no result.
	ErrRepositoryUnavailable = errors.New("evidence repository unavailable")

	// ErrUnknownSource is returned for a source name that matches none of
	// the six sources.
	ErrUnknownSource = errors.New("unknown evidence source")
)

// QueryKeyError describes which part of a query key is invalid.
type QueryKeyError struct {
	Field  string
	Reason string
}

func (e *QueryKeyError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidQueryKey, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidQueryKey.
func (e *QueryKeyError) Unwrap() error {
	return ErrInvalidQueryKey
}
