package config

import (
	"errors"
	"fmt"
)

// Error is a configuration problem: a missing or invalid setting.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.Key == "" {
		return "configuration error: " + e.Err.Error()
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Errorf builds an *Error for key.
func Errorf(key, format string, args ...any) error {
	return &Error{Key: key, Err: fmt.Errorf(format, args...)}
}

// IsConfigError reports whether err (or anything it wraps) is an *Error.
func IsConfigError(err error) bool {
	var typed *Error
	return errors.As(err, &typed)
}
