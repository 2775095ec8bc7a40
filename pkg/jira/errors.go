package jira

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is a non-2xx response from the tracker.
type StatusError struct {
	Status int
	Text   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tracker returned HTTP %d: %s", e.Status, e.Text)
}

// IsAuth reports whether err means the credentials are invalid or forbidden.
// Auth errors are never retried.
func IsAuth(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether err means the issue does not exist. A not-found
// is a definitive per-key failure, not a retry candidate.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// IsRateLimit reports whether err is a rate-limit signal: HTTP 429 or error
// text mentioning "rate" or "too many".
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) && se.Status == http.StatusTooManyRequests {
		return true
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "rate") || strings.Contains(text, "too many")
}

// IsRetryable reports whether err is worth another attempt: rate limits,
// server errors, and transport failures. Auth and not-found are definitive.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsAuth(err) || IsNotFound(err) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= 500
	}
	// Transport-level failure (timeout, connection reset).
	return true
}
