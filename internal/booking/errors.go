package booking

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation codes.
const (
	CodeMissingField     = "missing_field"
	CodeInvalidDateRange = "invalid_date_range"
	CodeInvalidPrice     = "invalid_price"
	CodeInvalidAmount    = "invalid_amount"
	CodeInvalidInput     = "invalid_input"
)

// State codes.
const (
	CodeAlreadyCheckedIn  = "already_checked_in"
	CodeNotCheckInDate    = "not_check_in_date"
	CodeInvalidTransition = "invalid_transition"
)

// domainError marks the error types the HTTP layer knows how to render.
type domainError interface {
	error
	domain()
}

// ValidationError is malformed or missing input. Nothing has been written.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"-"`
}

func (e *ValidationError) Error() string { return e.Message }
func (*ValidationError) domain()         {}

func missingField(field string) error {
	return &ValidationError{Code: CodeMissingField, Field: field, Message: field + " is required"}
}

func invalid(code, field, format string, args ...any) error {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError rejects a write whose stays overlap existing reservations.
type ConflictError struct {
	Conflicts []Conflict `json:"conflicts"`
}

func (e *ConflictError) Error() string {
	lines := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		lines = append(lines, c.Describe())
	}
	return "booking conflict: " + strings.Join(lines, "; ")
}

func (*ConflictError) domain() {}

// OverpaymentError rejects a payment larger than the remaining balance.
type OverpaymentError struct {
	Attempted decimal.Decimal `json:"attempted"`
	Remaining decimal.Decimal `json:"remaining"`
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds the remaining balance of %s", formatMoney(e.Attempted), formatMoney(e.Remaining))
}

func (*OverpaymentError) domain() {}

type NotFoundError struct {
	Resource string `json:"resource"`
	ID       uint   `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (*NotFoundError) domain() {}

// StateError is a lifecycle transition the booking's status does not allow.
type StateError struct {
	Code    string `json:"code"`
	Message string `json:"-"`
}

func (e *StateError) Error() string { return e.Message }
func (*StateError) domain()         {}

// PersistenceError wraps a store failure. Its detail is for logs only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
func (*PersistenceError) domain()         {}

// persistence wraps err unless it already is one of the typed errors above.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(domainError); ok {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
