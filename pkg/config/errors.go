package config

import "fmt"

// Error is a configuration validation failure tied to a specific field.
// It is rejected synchronously, before any tracker I/O.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config error on %q: %s", e.Field, e.Message)
}
