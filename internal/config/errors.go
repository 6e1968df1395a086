package config

import (
	"errors"
	"fmt"
)

// ErrInvalidSetting is matched by every ValidationError.
var ErrInvalidSetting = errors.New("invalid setting")

// ValidationError describes a setting with an unusable value.
type ValidationError struct {
	// Field is the setting name as written in config files.
	Field string
	// Value is the rejected value.
	Value any
	// Message describes the constraint.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s = %v: %s", e.Field, e.Value, e.Message)
}

// Is reports whether target is ErrInvalidSetting.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSetting
}
