// Package errors provides centralized error definitions and error handling
// utilities for the ork coordination layer. It defines domain-specific errors,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides domain-specific errors for the coordination subsystems:
//   - LockError: errors related to the lock store and lock manager
//   - QueueError: errors related to the durable queue store
//   - RecoveryError: errors related to the recovery orchestrator
//   - ValidationError: invalid input or configuration
//
// A lock denial is expected control flow, not an error; it is modeled as data
// by the coordination package. The sentinel ErrLockConflict exists only so the
// CLI can map a denial to a distinct exit code via errors.Is.
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewLockError("failed to persist lock store", cause).WithPath("src/app.ts")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrLockStoreCorrupted) { ... }
//
//	var lockErr *errors.LockError
//	if errors.As(err, &lockErr) { ... }
//
//	if errors.IsRetryable(err) { ... }
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

// Lock-related sentinel errors
var (
	// ErrLockConflict indicates that a path is locked by a different holder.
	ErrLockConflict = New("path locked by another holder")
	// ErrLockStoreCorrupted indicates that the lock store file could not be parsed.
	// Callers recover by treating the store as empty; the sentinel exists for logging.
	ErrLockStoreCorrupted = New("lock store corrupted")
	// ErrCoordinationDisabled indicates that the coordination directory does not
	// exist, meaning multi-instance coordination is not enabled for this project.
	ErrCoordinationDisabled = New("coordination not enabled")
)

// Queue-related sentinel errors
var (
	// ErrQueueCorrupted indicates that a queue stream contained no parseable records.
	ErrQueueCorrupted = New("queue stream corrupted")
	// ErrUnknownQueueKind indicates a queue kind outside the fixed set.
	ErrUnknownQueueKind = New("unknown queue kind")
	// ErrArchiveFailed indicates that moving a stale queue into the archive failed.
	ErrArchiveFailed = New("queue archive failed")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// OrkError is the base interface for all ork errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type OrkError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

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

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
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

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// LockError represents errors from the lock store and lock manager.
//
// Example:
//
//	err := errors.NewLockError("failed to persist lock store", cause)
//	err = err.WithPath("src/app.ts").WithHolder("sess-A")
type LockError struct {
	baseError
	Path   string
	Holder string
}

// NewLockError creates a new LockError.
func NewLockError(message string, cause error) *LockError {
	return &LockError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithPath adds the lock target path to the error context.
func (e *LockError) WithPath(path string) *LockError {
	e.Path = path
	return e
}

// WithHolder adds the holder ID to the error context.
func (e *LockError) WithHolder(holder string) *LockError {
	e.Holder = holder
	return e
}

// WithSeverity sets the error severity.
func (e *LockError) WithSeverity(s Severity) *LockError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *LockError) WithRetryable(r bool) *LockError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *LockError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Holder != "" {
		parts = append(parts, fmt.Sprintf("holder=%s", e.Holder))
	}

	prefix := "lock error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("lock error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *LockError) Is(target error) bool {
	if _, ok := target.(*LockError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// QueueError represents errors from the durable queue store.
//
// Example:
//
//	err := errors.NewQueueError("failed to append record", cause).WithKind("graph")
type QueueError struct {
	baseError
	Kind string
}

// NewQueueError creates a new QueueError.
func NewQueueError(message string, cause error) *QueueError {
	return &QueueError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithKind adds the queue kind to the error context.
func (e *QueueError) WithKind(kind string) *QueueError {
	e.Kind = kind
	return e
}

// WithSeverity sets the error severity.
func (e *QueueError) WithSeverity(s Severity) *QueueError {
	e.severity = s
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *QueueError) WithRetryable(r bool) *QueueError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *QueueError) Error() string {
	prefix := "queue error"
	if e.Kind != "" {
		prefix = fmt.Sprintf("queue error [kind=%s]", e.Kind)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *QueueError) Is(target error) bool {
	if _, ok := target.(*QueueError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// RecoveryError represents errors from the recovery orchestrator.
//
// Example:
//
//	err := errors.NewRecoveryError("failed to archive queue", cause)
//	err = err.WithQueue("memory").WithState("per-queue-decision")
type RecoveryError struct {
	baseError
	Queue string
	State string
}

// NewRecoveryError creates a new RecoveryError.
func NewRecoveryError(message string, cause error) *RecoveryError {
	return &RecoveryError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithQueue adds the queue kind to the error context.
func (e *RecoveryError) WithQueue(queue string) *RecoveryError {
	e.Queue = queue
	return e
}

// WithState adds the orchestrator state to the error context.
func (e *RecoveryError) WithState(state string) *RecoveryError {
	e.State = state
	return e
}

// WithSeverity sets the error severity.
func (e *RecoveryError) WithSeverity(s Severity) *RecoveryError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *RecoveryError) Error() string {
	var parts []string
	if e.Queue != "" {
		parts = append(parts, fmt.Sprintf("queue=%s", e.Queue))
	}
	if e.State != "" {
		parts = append(parts, fmt.Sprintf("state=%s", e.State))
	}

	prefix := "recovery error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("recovery error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *RecoveryError) Is(target error) bool {
	if _, ok := target.(*RecoveryError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or configuration.
//
// Example:
//
//	err := errors.NewValidationError("ttl must be positive")
//	err = err.WithField("coordination.default_ttl_seconds").WithValue(-1)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    time.Sleep(backoff)
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var orkErr OrkError
	if As(err, &orkErr) {
		return orkErr.IsRetryable()
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
//
// Example:
//
//	if errors.IsUserFacing(err) {
//	    displayToUser(err.Error())
//	} else {
//	    displayToUser("An internal error occurred")
//	    log.Error("internal error", "err", err)
//	}
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var orkErr OrkError
	if As(err, &orkErr) {
		return orkErr.IsUserFacing()
	}

	var validation *ValidationError
	return As(err, &validation)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement OrkError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var orkErr OrkError
	if As(err, &orkErr) {
		return orkErr.Severity()
	}

	return SeverityError
}

// IsDomainError returns true if the error is a domain-specific error
// (LockError, QueueError, or RecoveryError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var lockErr *LockError
	var queueErr *QueueError
	var recoveryErr *RecoveryError

	return As(err, &lockErr) || As(err, &queueErr) || As(err, &recoveryErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to drain queue")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to drain queue %s", kind)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
