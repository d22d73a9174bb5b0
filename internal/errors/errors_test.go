package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("order 7 not found")

	nfe, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "order 7 not found", nfe.Message)
	assert.Equal(t, "order 7 not found", err.Error())
}

func TestNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading order: %w", NewNotFoundError("order not found"))

	nfe, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "order not found", nfe.Message)
}

func TestNotFoundError_WithOtherError(t *testing.T) {
	nfe, ok := IsNotFoundError(errors.New("boom"))
	assert.False(t, ok)
	assert.Nil(t, nfe)
}

func TestConflictError(t *testing.T) {
	var err error = NewConflictError("order is already at the last stage")

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "order is already at the last stage", ce.Error())

	_, ok = IsNotFoundError(err)
	assert.False(t, ok)
}

func TestValidationError_Details(t *testing.T) {
	err := NewValidationError("validation failed",
		ValidationDetail{Field: "product_id", Message: "product_id is required"},
		ValidationDetail{Field: "amount", Message: "amount is required"},
	)

	ve, ok := IsValidationError(fmt.Errorf("create: %w", err))
	assert.True(t, ok)
	assert.Equal(t, "validation failed", ve.Error())
	assert.Len(t, ve.Details, 2)
	assert.Equal(t, "product_id", ve.Details[0].Field)
}

func TestInternalError(t *testing.T) {
	cause := errors.New("database is locked")
	err := NewInternalError("recording payment", cause)

	assert.Contains(t, err.Error(), "recording payment")
	assert.Contains(t, err.Error(), "database is locked")
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}
