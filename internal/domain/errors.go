package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error types for consistent error handling across the ledger.

// ErrNoState is returned by a slot that has never been written.
var ErrNoState = errors.New("no saved state")

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrOverdraft indicates total sales on a credit channel would exceed the
// opening balance of the day.
type ErrOverdraft struct {
	Channel   Channel
	Opening   decimal.Decimal
	Requested decimal.Decimal
}

func (e *ErrOverdraft) Error() string {
	return fmt.Sprintf("sales on %s would exceed opening balance: opening=%s requested=%s",
		e.Channel, e.Opening.String(), e.Requested.String())
}

// ErrPersistence indicates a durable slot read or write failed, or that the
// stored record is malformed.
type ErrPersistence struct {
	Op  string
	Err error
}

func (e *ErrPersistence) Error() string {
	return fmt.Sprintf("persistence error [%s]: %v", e.Op, e.Err)
}

func (e *ErrPersistence) Unwrap() error {
	return e.Err
}

// ErrImport indicates an interchange file was rejected.
type ErrImport struct {
	Reason string
	Err    error
}

func (e *ErrImport) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import rejected: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("import rejected: %s", e.Reason)
}

func (e *ErrImport) Unwrap() error {
	return e.Err
}

// ErrUnsupportedMedia indicates an import file of the wrong type.
type ErrUnsupportedMedia struct {
	ContentType string
	Filename    string
}

func (e *ErrUnsupportedMedia) Error() string {
	return fmt.Sprintf("unsupported import file (content-type=%q, name=%q): a JSON file is required", e.ContentType, e.Filename)
}

// ErrCircuitOpen indicates the circuit breaker in front of the slot is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
