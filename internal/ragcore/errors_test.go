package ragcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatabaseError_Retriable(t *testing.T) {
	require.True(t, (&DatabaseError{Code: DBConnectionFailed}).Retriable())
	require.True(t, (&DatabaseError{Code: DBQueryFailed}).Retriable())
	require.True(t, (&DatabaseError{Code: DBTimeout}).Retriable())
	require.False(t, (&DatabaseError{Code: DBTableNotFound}).Retriable())
	require.False(t, (&DatabaseError{Code: DBConstraintViolation}).Retriable())
}

func TestAPIError_Retriable(t *testing.T) {
	require.True(t, (&APIError{Code: APIRateLimited}).Retriable())
	require.True(t, (&APIError{Code: APIGenericError}).Retriable())
	require.True(t, (&APIError{Code: APITimeout}).Retriable())
	require.False(t, (&APIError{Code: APIInvalidInput}).Retriable())
	require.False(t, (&APIError{Code: APIQuotaExceeded}).Retriable())
	require.False(t, (&APIError{Code: APIUnauthorized}).Retriable())
}

func TestWrapDatabaseError_Unwraps(t *testing.T) {
	cause := NewOperationError(OpInvalidOperation, "boom")
	err := WrapDatabaseError(DBQueryFailed, "Store.Insert", "chunks", "doc-1", cause)
	require.Error(t, err)
	require.Contains(t, err.Error(), "queryFailed")
	require.ErrorIs(t, err.Unwrap(), cause)
}

func TestWrapDatabaseError_ReclassifiesDeadlineExceededAsTimeout(t *testing.T) {
	err := WrapDatabaseError(DBQueryFailed, "QueryService.Query", "chunks", "", context.DeadlineExceeded)
	require.Equal(t, DBTimeout, err.Code)
	require.True(t, err.Retriable())
}

func TestNewValidationError_CarriesFields(t *testing.T) {
	err := NewValidationError("Query", FieldError{Path: "limit", Message: "out of range"})
	require.Len(t, err.Fields, 1)
	require.Contains(t, err.Error(), "limit")
}
