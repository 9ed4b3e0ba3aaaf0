package config

import (
	"errors"
	"fmt"
)

// ErrMissingSettings indicates the settings file was missing or could not be loaded.
var ErrMissingSettings = &Error{Message: "settings file was missing or invalid"}

// Error reports a misconfiguration. Setting names the offending key when known.
type Error struct {
	Message string
	Setting string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Setting != "" {
		return fmt.Sprintf("configuration error: %s (setting: %s)", msg, e.Setting)
	}
	return "configuration error: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsConfigError returns true if err is or wraps a configuration error.
func IsConfigError(err error) bool {
	var cfgErr *Error
	return errors.As(err, &cfgErr)
}
