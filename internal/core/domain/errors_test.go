package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrAuthFailed", ErrAuthFailed},
		{"ErrRunInProgress", ErrRunInProgress},
		{"ErrInvalidQuery", ErrInvalidQuery},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrSearchUnavailable", ErrSearchUnavailable},
		{"ErrConnectorUnavailable", ErrConnectorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestTypeMismatchError tests the mismatch message with and without a
// record key
func TestTypeMismatchError(t *testing.T) {
	err := &TypeMismatchError{
		Entity: EntityProjects,
		Field:  "points",
		Type:   FieldInteger,
		Value:  42.5,
		Key:    "P1",
	}
	assert.Contains(t, err.Error(), "projects.points")
	assert.Contains(t, err.Error(), "record P1")
	assert.Contains(t, err.Error(), "integer")

	noKey := &TypeMismatchError{
		Entity: EntityInvoices,
		Field:  "date",
		Type:   FieldDate,
		Value:  "tomorrow",
	}
	assert.NotContains(t, noKey.Error(), "record")
}

// TestUnknownFieldError tests wrapping of ErrInvalidQuery
func TestUnknownFieldError(t *testing.T) {
	err := &UnknownFieldError{
		Field:   "profit_margin",
		Indices: []string{"invoices", "purchases"},
	}

	assert.True(t, errors.Is(err, ErrInvalidQuery))
	assert.Contains(t, err.Error(), `"profit_margin"`)
	assert.Contains(t, err.Error(), "invoices, purchases")
}
