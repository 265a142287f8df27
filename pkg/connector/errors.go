package connector

import (
	"errors"
	"fmt"

	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

// Standard connector errors
var (
	// ErrOperationNotSupported is returned when an operation is not meaningful for a backend
	ErrOperationNotSupported = errors.New("operation not supported by this backend")

	// ErrSessionClosed is returned when attempting to use a closed session
	ErrSessionClosed = errors.New("session is closed")

	// ErrConnectionFailed is returned when a session could not be constructed
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidConfiguration is returned when the configuration is invalid
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrTableNotFound is returned when a table is not found
	ErrTableNotFound = errors.New("table not found")

	// ErrObjectNotFound is returned when a remote object is not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrConnectorNotFound is returned when no constructor is registered for a type
	ErrConnectorNotFound = errors.New("connector not found")

	// ErrExecutionFailed is returned when the backend reports a runtime failure
	ErrExecutionFailed = errors.New("execution failed")

	// ErrTransient is returned for connectivity failures that may succeed on reconnect
	ErrTransient = errors.New("transient connectivity failure")

	// ErrPermissionDenied is returned when a permission is denied
	ErrPermissionDenied = errors.New("permission denied")

	// ErrEmptyTable is returned when bulk loading a table without rows
	ErrEmptyTable = errors.New("table is empty")

	// ErrTableExists is returned when bulk loading with the fail action into an existing table
	ErrTableExists = errors.New("table already exists")

	// ErrInvalidExistsAction is returned for an unknown exists action
	ErrInvalidExistsAction = errors.New("invalid exists action")

	// ErrIncompleteRequest is returned when a streamed response ends without its end marker
	ErrIncompleteRequest = errors.New("request incomplete")
)

// DatabaseError wraps backend execution errors with additional context.
// This provides a consistent error structure across all connector types.
type DatabaseError struct {
	DatabaseType dbcapabilities.DatabaseID
	Operation    string
	Cause        error
	Context      map[string]interface{}
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	if len(e.Context) > 0 {
		return fmt.Sprintf("[%s] %s: %v (context: %v)", e.DatabaseType, e.Operation, e.Cause, e.Context)
	}
	return fmt.Sprintf("[%s] %s: %v", e.DatabaseType, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// Is reports ErrExecutionFailed for every DatabaseError.
func (e *DatabaseError) Is(target error) bool {
	return target == ErrExecutionFailed
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(dbType dbcapabilities.DatabaseID, operation string, cause error) *DatabaseError {
	return &DatabaseError{
		DatabaseType: dbType,
		Operation:    operation,
		Cause:        cause,
		Context:      make(map[string]interface{}),
	}
}

// WithContext adds context to a DatabaseError.
func (e *DatabaseError) WithContext(key string, value interface{}) *DatabaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// UnsupportedOperationError is returned when an operation is not supported.
type UnsupportedOperationError struct {
	DatabaseType dbcapabilities.DatabaseID
	Operation    string
	Reason       string
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s does not support %s: %s", e.DatabaseType, e.Operation, e.Reason)
	}
	return fmt.Sprintf("%s does not support %s", e.DatabaseType, e.Operation)
}

// Is checks if the error is ErrOperationNotSupported.
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrOperationNotSupported
}

// NewUnsupportedOperationError creates a new UnsupportedOperationError.
func NewUnsupportedOperationError(dbType dbcapabilities.DatabaseID, operation string, reason string) *UnsupportedOperationError {
	return &UnsupportedOperationError{
		DatabaseType: dbType,
		Operation:    operation,
		Reason:       reason,
	}
}

// ConnectionError is returned when a session cannot be built from a valid address.
type ConnectionError struct {
	DatabaseType dbcapabilities.DatabaseID
	Host         string
	Port         int
	Cause        error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Host == "" {
		return fmt.Sprintf("failed to connect to %s: %v", e.DatabaseType, e.Cause)
	}
	if e.Port == 0 {
		return fmt.Sprintf("failed to connect to %s at %s: %v", e.DatabaseType, e.Host, e.Cause)
	}
	return fmt.Sprintf("failed to connect to %s at %s:%d: %v", e.DatabaseType, e.Host, e.Port, e.Cause)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrConnectionFailed.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(dbType dbcapabilities.DatabaseID, host string, port int, cause error) *ConnectionError {
	return &ConnectionError{
		DatabaseType: dbType,
		Host:         host,
		Port:         port,
		Cause:        cause,
	}
}

// ConfigurationError is returned when a configuration error occurs.
type ConfigurationError struct {
	DatabaseType dbcapabilities.DatabaseID
	Field        string
	Reason       string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for %s: field '%s': %s", e.DatabaseType, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.DatabaseType, e.Reason)
}

// Is checks if the error is ErrInvalidConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(dbType dbcapabilities.DatabaseID, field string, reason string) *ConfigurationError {
	return &ConfigurationError{
		DatabaseType: dbType,
		Field:        field,
		Reason:       reason,
	}
}

// NotFoundError is returned when a remote resource is not found.
type NotFoundError struct {
	DatabaseType dbcapabilities.DatabaseID
	ResourceType string
	ResourceName string
	Message      string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found in %s: %s", e.ResourceType, e.DatabaseType, e.ResourceName)
}

// Is checks if the error is ErrTableNotFound or ErrObjectNotFound.
func (e *NotFoundError) Is(target error) bool {
	if e.ResourceType == "table" {
		return target == ErrTableNotFound
	}
	return target == ErrObjectNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(dbType dbcapabilities.DatabaseID, resourceType string, resourceName string) *NotFoundError {
	return &NotFoundError{
		DatabaseType: dbType,
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// WithMessage replaces the rendered message of a NotFoundError.
func (e *NotFoundError) WithMessage(message string) *NotFoundError {
	e.Message = message
	return e
}

// TransientError wraps a connectivity failure that one reconnect may cure.
type TransientError struct {
	DatabaseType dbcapabilities.DatabaseID
	Cause        error
}

// Error implements the error interface.
func (e *TransientError) Error() string {
	return fmt.Sprintf("[%s] transient failure: %v", e.DatabaseType, e.Cause)
}

// Unwrap returns the underlying error.
func (e *TransientError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrTransient.
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}

// NewTransientError creates a new TransientError.
func NewTransientError(dbType dbcapabilities.DatabaseID, cause error) *TransientError {
	return &TransientError{DatabaseType: dbType, Cause: cause}
}

// WrapError wraps an error with connector context.
// If the error is already a DatabaseError, it returns it as-is.
func WrapError(dbType dbcapabilities.DatabaseID, operation string, err error) error {
	if err == nil {
		return nil
	}

	// Don't double-wrap
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return err
	}

	return NewDatabaseError(dbType, operation, err)
}

// IsUnsupported checks if an error indicates an unsupported operation.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrOperationNotSupported)
}

// IsConnection checks if an error is a session construction error.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsNotFound checks if an error reports a missing table or object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound) || errors.Is(err, ErrObjectNotFound)
}

// IsExecution checks if an error is a backend execution error.
func IsExecution(err error) bool {
	return errors.Is(err, ErrExecutionFailed)
}

// IsTransient checks if an error can be retried after reconnecting.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
