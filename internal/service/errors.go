// Package service holds the order/transaction engine: the menu catalog,
// the order store with its state machine, the append-only ledger, the
// daily report and employee management.  Every operation runs in one
// repository.Tx and returns the repository error taxonomy, plus
// ValidationError for malformed input.
package service

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed request field.  It is never
// returned for a well-formed request that conflicts with stored state;
// those use the repository sentinels.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
