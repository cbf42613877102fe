package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "validation failed with %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	var errs []ValidationError

	if c.Resolver.PID < 0 {
		errs = append(errs, ValidationError{
			Field:   "resolver.pid",
			Message: "pid must not be negative",
		})
	}
	if c.Resolver.Type == "" {
		errs = append(errs, ValidationError{
			Field:   "resolver.type",
			Message: "resolver type is required",
		})
	}
	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("format must be one of %s", strings.Join(Formats, ", ")),
		})
	}
	if c.Output.Limit < 0 {
		errs = append(errs, ValidationError{
			Field:   "output.limit",
			Message: "limit must not be negative",
		})
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("log level must be one of %s", strings.Join(logLevels, ", ")),
		})
	}

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}
