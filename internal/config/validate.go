package config

import "fmt"

const maxPort = 65535

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s %s", e.Field, e.Message)
}

// ValidatePort checks that port is in the valid TCP range.
func ValidatePort(field string, port int) error {
	if port <= 0 || port > maxPort {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be between 1 and %d", maxPort)}
	}
	return nil
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
