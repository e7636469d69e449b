package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Iron-Ham/hostlog/internal/stream"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "log_file.streams")
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

// maxLogSizeMB bounds every rotation size (1GB).
const maxLogSizeMB = 1000

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateLogFile()...)
	errors = append(errors, c.validateRun()...)

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// The diagnostic log always rotates, so its size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogFile validates the LogFileConfig
func (c *Config) validateLogFile() []ValidationError {
	var errors []ValidationError

	if _, err := c.LogFile.StreamClass(); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log_file.streams",
			Value:   c.LogFile.Streams,
			Message: fmt.Sprintf("must be a list of: %s", strings.Join(stream.ValidNames(), ", ")),
		})
	}

	if strings.TrimSpace(c.LogFile.TimeFormat) == "" {
		errors = append(errors, ValidationError{
			Field:   "log_file.time_format",
			Value:   c.LogFile.TimeFormat,
			Message: "must not be empty",
		})
	} else if (time.Time{}).Format(c.LogFile.TimeFormat) == c.LogFile.TimeFormat {
		// A layout with no recognised elements renders as itself
		errors = append(errors, ValidationError{
			Field:   "log_file.time_format",
			Value:   c.LogFile.TimeFormat,
			Message: "must contain at least one time element",
		})
	}

	// Zero disables rotation for log files
	if c.LogFile.MaxSizeMB < 0 || c.LogFile.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "log_file.max_size_mb",
			Value:   c.LogFile.MaxSizeMB,
			Message: fmt.Sprintf("must be between 0 and %d", maxLogSizeMB),
		})
	}

	if c.LogFile.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "log_file.max_backups",
			Value:   c.LogFile.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateRun validates the RunConfig
func (c *Config) validateRun() []ValidationError {
	var errors []ValidationError

	class, err := c.Run.StderrClass()
	if err != nil || !class.Single() {
		errors = append(errors, ValidationError{
			Field:   "run.stderr_stream",
			Value:   c.Run.StderrStream,
			Message: "must name exactly one of: output, error, warning, verbose, debug",
		})
	}

	return errors
}
