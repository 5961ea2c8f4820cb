package config

import (
	"errors"
	"fmt"
)

var ErrInvalid = errors.New("invalid configuration")

// FieldError reports a rejected setting.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	if e == nil {
		return ErrInvalid.Error()
	}
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

func invalid(field string, value any, reason string) error {
	return &FieldError{Field: field, Value: value, Reason: reason}
}
