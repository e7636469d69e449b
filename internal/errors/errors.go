// Package errors provides centralized error definitions and error handling
// utilities for hostlog. It defines sentinel errors, the three error kinds the
// broadcaster distinguishes, and classification helpers.
//
// # Error Kinds
//
//   - ConfigurationError: the interceptor was wired incorrectly (attach with no
//     host or surface, interactive pass-through while unattached). These are
//     fatal to the operation and always returned to the caller.
//   - SubscriberFault: a subscriber handler returned an error or panicked
//     during dispatch. Faults are contained by the dispatcher and never reach
//     the code that performed the console write.
//   - SinkError: a collaborator (the file sink) failed to reach its
//     destination. The sink owns these; once they cross the dispatcher they
//     are treated as subscriber faults.
//
// # Usage
//
//	err := errors.NewConfigurationError("prompt", errors.ErrNotAttached)
//	if errors.IsConfiguration(err) { ... }
//
//	var fault *errors.SubscriberFault
//	if errors.As(err, &fault) { log.Warn("subscriber failed", "stream", fault.Stream) }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Wiring sentinel errors
var (
	// ErrNoHost indicates that attach was requested without a host.
	ErrNoHost = New("no host to attach to")
	// ErrNoSurface indicates that the host has no console surface installed.
	ErrNoSurface = New("host has no console surface")
	// ErrNotAttached indicates an operation that needs the real console
	// surface was invoked while the interceptor is not attached.
	ErrNotAttached = New("interceptor is not attached to a console surface")
)

// Dispatch sentinel errors
var (
	// ErrSubscriberPanic marks a subscriber fault caused by a recovered panic.
	ErrSubscriberPanic = New("subscriber panicked")
	// ErrSinkClosed indicates a write to a sink after Close.
	ErrSinkClosed = New("sink is closed")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// HostlogError is the base interface for all hostlog errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type HostlogError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// ConfigurationError
// -----------------------------------------------------------------------------

// ConfigurationError reports that the interceptor was not wired up correctly.
// It is always propagated to the caller.
//
// Example:
//
//	err := errors.NewConfigurationError("read line", errors.ErrNotAttached)
//	fmt.Println(err) // "configuration error [op=read line]: cannot read line: interceptor is not attached ..."
type ConfigurationError struct {
	baseError
	Operation string
}

// NewConfigurationError creates a ConfigurationError for the named operation.
func NewConfigurationError(operation string, cause error) *ConfigurationError {
	return &ConfigurationError{
		baseError: baseError{
			message:    "cannot " + operation,
			cause:      cause,
			severity:   SeverityCritical,
			retryable:  false,
			userFacing: true,
		},
		Operation: operation,
	}
}

// Error returns the formatted error message.
func (e *ConfigurationError) Error() string {
	var parts []string
	if e.Operation != "" {
		parts = append(parts, "op="+e.Operation)
	}
	return e.format("configuration error", parts)
}

// -----------------------------------------------------------------------------
// SubscriberFault
// -----------------------------------------------------------------------------

// SubscriberFault describes a failure raised inside a subscriber handler.
// The dispatcher builds one for every returned error or recovered panic and
// never lets it reach the writer.
type SubscriberFault struct {
	baseError
	// Subscriber is the dynamic type name of the failing subscriber.
	Subscriber string
	// Stream names the event category being delivered.
	Stream string
	// Recovered holds the panic value when the fault was a panic.
	Recovered any
	// Stack is the goroutine stack captured at recovery time.
	Stack []byte
}

// NewSubscriberFault wraps an error returned by a subscriber handler.
func NewSubscriberFault(subscriber, stream string, cause error) *SubscriberFault {
	return &SubscriberFault{
		baseError: baseError{
			message:    "handler failed",
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: false,
		},
		Subscriber: subscriber,
		Stream:     stream,
	}
}

// NewSubscriberPanic wraps a value recovered from a panicking handler.
func NewSubscriberPanic(subscriber, stream string, recovered any, stack []byte) *SubscriberFault {
	f := NewSubscriberFault(subscriber, stream, fmt.Errorf("%w: %v", ErrSubscriberPanic, recovered))
	f.Recovered = recovered
	f.Stack = stack
	return f
}

// Panicked reports whether the fault came from a recovered panic.
func (e *SubscriberFault) Panicked() bool {
	return e.Recovered != nil
}

// Error returns the formatted error message.
func (e *SubscriberFault) Error() string {
	var parts []string
	if e.Subscriber != "" {
		parts = append(parts, "subscriber="+e.Subscriber)
	}
	if e.Stream != "" {
		parts = append(parts, "stream="+e.Stream)
	}
	return e.format("subscriber fault", parts)
}

// -----------------------------------------------------------------------------
// SinkError
// -----------------------------------------------------------------------------

// SinkError reports a failure writing to a collaborator's destination.
//
// Example:
//
//	err := errors.NewSinkError("append", "/var/log/session.log", syscall.ENOSPC)
type SinkError struct {
	baseError
	Op   string
	Path string
}

// NewSinkError creates a SinkError. Sink errors are retryable: the file sink
// reopens its destination on the next write.
func NewSinkError(op, path string, cause error) *SinkError {
	return &SinkError{
		baseError: baseError{
			message:    op + " failed",
			cause:      cause,
			severity:   SeverityError,
			retryable:  true,
			userFacing: true,
		},
		Op:   op,
		Path: path,
	}
}

// Error returns the formatted error message.
func (e *SinkError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}
	return e.format("sink error", parts)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return As(err, &cfgErr)
}

// IsSubscriberFault reports whether err is (or wraps) a SubscriberFault.
func IsSubscriberFault(err error) bool {
	var fault *SubscriberFault
	return As(err, &fault)
}

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var hostErr HostlogError
	if As(err, &hostErr) {
		return hostErr.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var hostErr HostlogError
	if As(err, &hostErr) {
		return hostErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement HostlogError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var hostErr HostlogError
	if As(err, &hostErr) {
		return hostErr.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
