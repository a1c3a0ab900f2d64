// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the template engine. Callers branch on them with
// errors.Is; every error returned by the services wraps exactly one.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrValidationFailed  = errors.New("validation failed")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNotActive         = errors.New("template not active")
	ErrFormatting        = errors.New("formatting failed")
	ErrInvalidInput      = errors.New("invalid input")
)

// ValidationError reports the first variable that failed validation.
type ValidationError struct {
	Variable string
	Reason   string
	Missing  bool
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return fmt.Sprintf("validation failed: missing required variable %q", e.Variable)
	}
	return fmt.Sprintf("validation failed: variable %q: %s", e.Variable, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// MissingVariable builds the error for an absent required variable.
func MissingVariable(name string) error {
	return &ValidationError{Variable: name, Reason: "required", Missing: true}
}

// ConstraintViolation builds the error for a bound or type check failure.
func ConstraintViolation(name, reason string) error {
	return &ValidationError{Variable: name, Reason: reason}
}

// FormatError reports a filter that could not format its input.
type FormatError struct {
	Filter string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format %q with filter %s: %v", e.Value, e.Filter, e.Err)
}

func (e *FormatError) Unwrap() []error { return []error{ErrFormatting, e.Err} }
