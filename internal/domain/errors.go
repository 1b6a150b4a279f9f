package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrKeyCollision = errors.New("idempotency key collision")
	ErrUnavailable  = errors.New("storage unavailable")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// KeyCollisionError is returned when a deterministic identifier already holds
// a row that was created under a different idempotency key. This signals
// client-side key misuse and is not retryable with the same inputs.
type KeyCollisionError struct {
	DeterministicID string
	SubmittedKey    string
}

func (e *KeyCollisionError) Error() string {
	return fmt.Sprintf("%s: id %s was created under a different key",
		ErrKeyCollision.Error(), e.DeterministicID)
}

func (e *KeyCollisionError) Unwrap() error {
	return ErrKeyCollision
}
