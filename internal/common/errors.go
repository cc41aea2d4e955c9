// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound             = errors.New("not found")
	ErrDuplicateEntry       = errors.New("duplicate entry")
	ErrDefaultRuleProtected = errors.New("default rules can be disabled but not deleted")

	// Rule errors.
	ErrInvalidRule  = errors.New("invalid rule")
	ErrInvalidRegex = errors.New("invalid regular expression")

	// Input errors.
	ErrNoMessages    = errors.New("no messages to review")
	ErrInvalidFormat = errors.New("unsupported input format")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
