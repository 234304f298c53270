package ragline

import "github.com/ragline/ragline/internal/ragcore"

// The error types below are type aliases over internal/ragcore so callers
// can use errors.As against a single stable taxonomy without importing the
// internal package. See spec §7.
type (
	FieldError         = ragcore.FieldError
	ValidationError    = ragcore.ValidationError
	ConfigurationError = ragcore.ConfigurationError
	DatabaseError      = ragcore.DatabaseError
	DatabaseErrorCode  = ragcore.DatabaseErrorCode
	APIError           = ragcore.APIError
	APIErrorCode       = ragcore.APIErrorCode
	OperationError     = ragcore.OperationError
	OperationErrorCode = ragcore.OperationErrorCode
)

const (
	DBConnectionFailed    = ragcore.DBConnectionFailed
	DBQueryFailed         = ragcore.DBQueryFailed
	DBTransactionFailed   = ragcore.DBTransactionFailed
	DBTableNotFound       = ragcore.DBTableNotFound
	DBConstraintViolation = ragcore.DBConstraintViolation
	DBTimeout             = ragcore.DBTimeout

	APIGenericError  = ragcore.APIGenericError
	APIRateLimited   = ragcore.APIRateLimited
	APIInvalidInput  = ragcore.APIInvalidInput
	APITimeout       = ragcore.APITimeout
	APIQuotaExceeded = ragcore.APIQuotaExceeded
	APIUnauthorized  = ragcore.APIUnauthorized

	OpDocumentNotFound = ragcore.OpDocumentNotFound
	OpInvalidOperation = ragcore.OpInvalidOperation
)
