/*
errors.go - Centralized error types for the retail domain

PURPOSE:
  All error kinds in one place. Sentinels classify, structured types
  carry enough detail for a caller to render a precise message without
  re-querying state (product name, available vs requested stock, ...).

PROPAGATION POLICY:
  Any error raised during a checkout aborts the whole unit of work.
  Nothing is recovered or retried locally; the caller sees exactly one
  typed error per failed checkout.

USAGE:
  errors.Is(err, retail.ErrInsufficientStock)

  var stockErr *retail.InsufficientStockError
  if errors.As(err, &stockErr) { ... stockErr.Available ... }

SEE ALSO:
  - checkout.go: Raises most of these
  - api/handlers.go: Maps these to HTTP statuses
*/
package retail

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProductNotFound is returned when a referenced product doesn't exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrCustomerNotFound is returned when a referenced customer doesn't exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrSaleNotFound is returned when a referenced sale doesn't exist.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrRecordNotFound is returned for missing accounting entries and
	// consumption records.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInsufficientStock is returned when a deduction would drive a
	// product's stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInsufficientBalance is returned when a deduction would drive a
	// customer's balance negative.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned for non-positive amounts on balance
	// operations.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrValidation is returned for malformed requests (empty item list,
	// non-positive quantity, negative price).
	ErrValidation = errors.New("validation failed")

	// ErrProductInUse is returned when deleting a product that sale line
	// items still reference.
	ErrProductInUse = errors.New("product referenced by sale records")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError reports a stock shortage for one product.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InsufficientBalanceError reports a balance shortage.
type InsufficientBalanceError struct {
	CustomerID string
	Available  Cents
	Required   Cents
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, required %s",
		e.Available, e.Required)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsConflict returns true for guard failures that depend on current
// state (stock, balance, reference counts) rather than request shape.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrProductInUse)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidAmount)
}
