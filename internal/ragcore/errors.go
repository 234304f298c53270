package ragcore

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/cockroachdb/errors"
)

// FieldError describes one failed field during metadata validation.
type FieldError struct {
	Path     string
	Message  string
	Expected string
	Received string
}

// ValidationError reports that caller-supplied input failed a declared
// schema or a numeric/range precondition. Never retried by the pipeline.
type ValidationError struct {
	Op     string
	Fields []FieldError
	cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("ragline: validation failed for %s", e.Op)
	}
	return fmt.Sprintf("ragline: validation failed for %s: %s (%s)", e.Op, e.Fields[0].Path, e.Fields[0].Message)
}

func (e *ValidationError) Unwrap() error { return e.cause }

// NewValidationError builds a ValidationError carrying one or more field
// failures.
func NewValidationError(op string, fields ...FieldError) *ValidationError {
	return &ValidationError{Op: op, Fields: fields}
}

// ConfigurationError reports a missing required field or invalid value
// discovered at construction time. Always fatal; never retried.
type ConfigurationError struct {
	Component string
	Message   string
	cause     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ragline: configuration error in %s: %s", e.Component, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(component, message string) *ConfigurationError {
	return &ConfigurationError{Component: component, Message: message}
}

// DatabaseErrorCode enumerates the database failure taxonomy of spec §7.
type DatabaseErrorCode string

const (
	DBConnectionFailed    DatabaseErrorCode = "connectionFailed"
	DBQueryFailed         DatabaseErrorCode = "queryFailed"
	DBTransactionFailed   DatabaseErrorCode = "transactionFailed"
	DBTableNotFound       DatabaseErrorCode = "tableNotFound"
	DBConstraintViolation DatabaseErrorCode = "constraintViolation"
	DBTimeout             DatabaseErrorCode = "timeout"
)

// DatabaseError wraps a failure surfaced by the connection pool, the chunk
// store, or the query service, with enough operational context to diagnose
// it without leaking bound parameter values.
type DatabaseError struct {
	Code      DatabaseErrorCode
	Op        string
	Table     string
	Document  string
	underlying error
}

func (e *DatabaseError) Error() string {
	msg := fmt.Sprintf("ragline: database error (%s) during %s", e.Code, e.Op)
	if e.Table != "" {
		msg += fmt.Sprintf(" table=%s", e.Table)
	}
	if e.Document != "" {
		msg += fmt.Sprintf(" document=%s", e.Document)
	}
	return msg
}

func (e *DatabaseError) Unwrap() error { return e.underlying }

// Retriable reports whether the pipeline should retry an operation that
// failed with this error. Per spec §7, every database code is transient
// except tableNotFound and constraintViolation.
func (e *DatabaseError) Retriable() bool {
	switch e.Code {
	case DBTableNotFound, DBConstraintViolation:
		return false
	default:
		return true
	}
}

// WrapDatabaseError builds a DatabaseError from an underlying driver error,
// stamping it with operation context. A cause rooted in context.DeadlineExceeded
// is reclassified as DBTimeout regardless of the code the caller passed, since
// a deadline firing mid-query is a timeout no matter which call site saw it.
func WrapDatabaseError(code DatabaseErrorCode, op, table, document string, cause error) *DatabaseError {
	if stderrors.Is(cause, context.DeadlineExceeded) {
		code = DBTimeout
	}
	return &DatabaseError{
		Code:       code,
		Op:         op,
		Table:      table,
		Document:   document,
		underlying: errors.Wrap(cause, op),
	}
}

// APIErrorCode enumerates the embedder failure taxonomy of spec §7.
type APIErrorCode string

const (
	APIGenericError     APIErrorCode = "apiError"
	APIRateLimited       APIErrorCode = "rateLimitExceeded"
	APIInvalidInput      APIErrorCode = "invalidInput"
	APITimeout           APIErrorCode = "timeout"
	APIQuotaExceeded     APIErrorCode = "quotaExceeded"
	APIUnauthorized      APIErrorCode = "unauthorized"
)

// APIError reports a failure from the embedding provider.
type APIError struct {
	Code       APIErrorCode
	Message    string
	RetryAfter float64 // seconds; 0 when the provider gave no hint
	underlying error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ragline: embedder error (%s): %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.underlying }

// Retriable reports whether the embedder adapter (internally) or the
// pipeline (across documents) should retry. Per spec §7, rateLimitExceeded
// and transient apiError/timeout are retriable; invalidInput and
// quotaExceeded are not.
func (e *APIError) Retriable() bool {
	switch e.Code {
	case APIRateLimited, APIGenericError, APITimeout:
		return true
	default:
		return false
	}
}

// NewAPIError builds an APIError.
func NewAPIError(code APIErrorCode, message string, cause error) *APIError {
	return &APIError{Code: code, Message: message, underlying: errors.Wrap(cause, message)}
}

// OperationErrorCode enumerates higher-level logical failures.
type OperationErrorCode string

const (
	OpDocumentNotFound  OperationErrorCode = "documentNotFound"
	OpInvalidOperation  OperationErrorCode = "invalidOperation"
)

// OperationError reports a contextual, non-retriable logical failure that
// doesn't fit the validation/configuration/database/API categories.
type OperationError struct {
	Code    OperationErrorCode
	Message string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("ragline: operation error (%s): %s", e.Code, e.Message)
}

// NewOperationError builds an OperationError.
func NewOperationError(code OperationErrorCode, message string) *OperationError {
	return &OperationError{Code: code, Message: message}
}
