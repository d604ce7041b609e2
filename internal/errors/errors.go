package errors

import (
	"errors"
	"fmt"
)

var (
	// Common errors
	ErrProjectNotFound      = errors.New("enabled project not found")
	ErrItemNotFound         = errors.New("enabled item not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrUnknownItemType      = errors.New("unknown item type")

	// Database errors
	ErrDatabaseConnection  = errors.New("database connection failed")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrTransactionFailed   = errors.New("transaction failed")
)

// CoercionError reports a value that could not be converted to an item's
// declared type.
type CoercionError struct {
	Value string
	Type  string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("can't convert value[%s] by type[%s]", e.Value, e.Type)
}

// FieldError reports a persisted-field validator violation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}
