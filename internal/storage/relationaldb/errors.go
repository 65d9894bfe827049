package relationaldb

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, grouped by category
var (
	// Configuration errors
	ErrMissingDSN          = errors.New("database connection string is required")
	ErrMissingPath         = errors.New("database path is required")
	ErrInvalidDriver       = errors.New("invalid database driver")
	ErrInvalidMaxOpenConns = errors.New("max open connections must be >= 0")
	ErrInvalidTimeout      = errors.New("timeout must be positive")
	ErrInvalidCompression  = errors.New("unknown compression")

	// Connection errors
	ErrDatabaseClosed = errors.New("database connection is closed")

	// Data errors
	ErrInstructionNotFound = errors.New("instruction not found")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrDataCorruption      = errors.New("data corruption detected")

	// Query errors
	ErrInvalidLimit = errors.New("invalid query limit")
)

// ErrorType represents different categories of database errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeConfiguration
	ErrorTypeConnection
	ErrorTypeTransaction
	ErrorTypeData
	ErrorTypeConstraint
	ErrorTypeQuery
	ErrorTypeSchema
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypeConnection:
		return "connection"
	case ErrorTypeTransaction:
		return "transaction"
	case ErrorTypeData:
		return "data"
	case ErrorTypeConstraint:
		return "constraint"
	case ErrorTypeQuery:
		return "query"
	case ErrorTypeSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// DatabaseError provides detailed information about database errors
type DatabaseError struct {
	Type      ErrorType `json:"type"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	Cause     error     `json:"cause,omitempty"`
	Code      string    `json:"code,omitempty"`
	Retryable bool      `json:"retryable"`
}

// Error implements the error interface
func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying cause error
func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by error code
func (e *DatabaseError) Is(target error) bool {
	switch target {
	case ErrInstructionNotFound:
		return e.Type == ErrorTypeData && e.Code == "INSTRUCTION_NOT_FOUND"
	case ErrDuplicateEntry:
		return e.Type == ErrorTypeConstraint && e.Code == "DUPLICATE_ENTRY"
	case ErrDatabaseClosed:
		return e.Type == ErrorTypeConnection && e.Code == "DATABASE_CLOSED"
	}
	return false
}

// WithCode sets the error code
func (e *DatabaseError) WithCode(code string) *DatabaseError {
	e.Code = code
	return e
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(errorType ErrorType, operation, message string, cause error) *DatabaseError {
	return &DatabaseError{
		Type:      errorType,
		Operation: operation,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryableError(errorType, cause),
	}
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeConfiguration, operation, message, cause)
}

// NewConnectionError creates a connection error
func NewConnectionError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeConnection, operation, message, cause)
}

// NewTransactionError creates a transaction error
func NewTransactionError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeTransaction, operation, message, cause)
}

// NewDataError creates a data error
func NewDataError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeData, operation, message, cause)
}

// NewConstraintError creates a constraint error
func NewConstraintError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeConstraint, operation, message, cause)
}

// NewQueryError creates a query error
func NewQueryError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeQuery, operation, message, cause)
}

// NewSchemaError creates a schema error
func NewSchemaError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeSchema, operation, message, cause)
}

func isRetryableError(errorType ErrorType, cause error) bool {
	switch errorType {
	case ErrorTypeConnection:
		return true
	case ErrorTypeTransaction, ErrorTypeQuery:
		return cause != nil && containsAny(cause.Error(), "deadlock", "timeout", "busy", "locked")
	default:
		return false
	}
}

func containsAny(s string, patterns ...string) bool {
	s = strings.ToLower(s)
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr) && dbErr.Type == ErrorTypeConnection
}

// IsQueryError checks if an error is a query error
func IsQueryError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr) && dbErr.Type == ErrorTypeQuery
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return dbErr.Retryable
	}
	return err != nil && containsAny(err.Error(), "connection refused", "connection reset", "database is locked", "deadlock", "timeout")
}

// classifyConstraint turns a unique-key failure reported by either driver
// into ErrDuplicateEntry.
func classifyConstraint(operation string, err error) error {
	if containsAny(err.Error(), "unique", "duplicate", "constraint") {
		return NewConstraintError(operation, "entry already recorded", err).WithCode("DUPLICATE_ENTRY")
	}
	return NewQueryError(operation, "statement failed", err)
}
