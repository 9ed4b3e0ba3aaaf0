package slackapi

import (
	"errors"
	"fmt"
)

// APIError is returned when Slack answers with ok=false.
type APIError struct {
	Method   string // e.g. "conversations.list"
	Cursor   string // page cursor, for paginated calls
	Code     string // Slack error string, e.g. "invalid_auth"
	Response any    // raw error envelope, for diagnostics
}

func (e *APIError) Error() string {
	if e.Cursor != "" {
		return fmt.Sprintf("slack %s failed (cursor %q): %s", e.Method, e.Cursor, e.Code)
	}
	return fmt.Sprintf("slack %s failed: %s", e.Method, e.Code)
}

// IsAPIError returns true if err is or wraps an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// ErrorCode returns the Slack error string carried by err, or "".
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
