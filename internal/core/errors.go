package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a reference to a row that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity marks a detected ledger corruption, such as an internal
	// transaction whose mirror row cannot be located. Operations hitting it
	// abort without attempting repair.
	ErrIntegrity = errors.New("ledger integrity violation")

	ErrInvalidAmount = errors.New("invalid amount")
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field-level failures for one command. A nil or
// empty value means the command passed validation.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a failure for the given field.
func (ve *ValidationErrors) Add(field, format string, args ...any) {
	*ve = append(*ve, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// OrNil returns the collected failures as an error, or nil if none.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// ByField groups messages per field for the API error payload.
func (ve ValidationErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}
