package model

import (
	"errors"
	"fmt"
	"strings"
)

// Token error sentinels, surfaced to magic-link visitors as non-retryable
// user-facing messages.
var (
	ErrTokenInvalid     = errors.New("TOKEN_INVALID")
	ErrTokenExpired     = errors.New("TOKEN_EXPIRED")
	ErrTokenAlreadyUsed = errors.New("TOKEN_ALREADY_USED")
)

// ErrNotFound covers unknown request/token/entity lookups.
var ErrNotFound = errors.New("NOT_FOUND")

// ValidationError carries the structured list of missing or invalid fields
// from composer validation. It blocks submission but never mutates state.
type ValidationError struct {
	Fields []string `json:"fields"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// NewValidationError builds a ValidationError from field names.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// TransitionError reports an illegal (status, action, role) combination.
// It is an integrity fault: the request state is guaranteed unchanged.
type TransitionError struct {
	Status string
	Action string
	Role   string
}

func (e *TransitionError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("illegal transition: action %q by role %q in status %q", e.Action, e.Role, e.Status)
	}
	return fmt.Sprintf("illegal transition: action %q in status %q", e.Action, e.Status)
}
