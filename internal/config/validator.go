package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "coordination.default_ttl_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateCoordination()...)
	errors = append(errors, c.validateMemory()...)
	errors = append(errors, c.validateRecovery()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateCoordination() []ValidationError {
	var errors []ValidationError

	if c.Coordination.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "coordination.dir",
			Value:   c.Coordination.Dir,
			Message: "must not be empty",
		})
	}

	if c.Coordination.DefaultTTLSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "coordination.default_ttl_seconds",
			Value:   c.Coordination.DefaultTTLSeconds,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateMemory() []ValidationError {
	var errors []ValidationError

	if c.Memory.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "memory.dir",
			Value:   c.Memory.Dir,
			Message: "must not be empty",
		})
	}

	if c.Memory.ArchiveDirName == "" {
		errors = append(errors, ValidationError{
			Field:   "memory.archive_dir_name",
			Value:   c.Memory.ArchiveDirName,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateRecovery() []ValidationError {
	var errors []ValidationError

	if c.Recovery.StalenessHours <= 0 {
		errors = append(errors, ValidationError{
			Field:   "recovery.staleness_hours",
			Value:   c.Recovery.StalenessHours,
			Message: "must be positive",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
