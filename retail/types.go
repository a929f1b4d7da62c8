/*
types.go - Core entities of the retail domain

PURPOSE:
  Defines the records the system is built around: products with stock,
  customers with stored balances, sales with denormalized line items,
  the append-only balance ledger, accounting entries, and per-customer
  consumption records.

DENORMALIZATION:
  SaleLineItem.ProductName and Sale.CustomerName are point-in-time
  copies taken when the sale is created. They are NOT foreign-key views:
  renaming or deleting the source entity later must not alter the
  historical record.

MONEY:
  All amounts are Cents (integer minor-currency units). See money.go.

SEE ALSO:
  - checkout.go: Orchestrates multi-entity writes for one sale
  - store.go: Persistence interfaces for these entities
*/
package retail

import "time"

// =============================================================================
// CATALOG & CUSTOMERS
// =============================================================================

// Product is a sellable item with an available stock quantity.
//
// INVARIANT: Stock never goes negative. Any write that would make it
// negative must fail atomically with no partial effect.
type Product struct {
	ID          string
	Name        string
	Price       Cents
	Stock       int
	ImageURL    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Customer holds profile data and a stored balance.
//
// INVARIANT: Balance never goes negative.
type Customer struct {
	ID          string
	Name        string
	Phone       string
	MemberLevel int // 0 = non-member, 1-4 = membership tiers
	Balance     Cents
	PetName     string
	PetType     string
	Breed       string
	Age         int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// BALANCE LEDGER
// =============================================================================

// BalanceEntryKind classifies a balance-affecting event.
type BalanceEntryKind string

const (
	BalanceRecharge BalanceEntryKind = "RECHARGE"
	BalanceDeduct   BalanceEntryKind = "DEDUCT"
	BalanceRefund   BalanceEntryKind = "REFUND"
)

// Sign returns +1 for kinds that increase the balance, -1 otherwise.
func (k BalanceEntryKind) Sign() int {
	if k == BalanceDeduct {
		return -1
	}
	return 1
}

// BalanceEntry is one immutable row in a customer's balance history.
//
// INVARIANTS:
//   - Append-only: never edited or deleted once written.
//   - BalanceAfter = BalanceBefore + Sign()*Amount.
//   - Created only as a side effect of a balance-mutating operation.
type BalanceEntry struct {
	ID            string
	CustomerID    string
	Kind          BalanceEntryKind
	Amount        Cents // always positive
	BalanceBefore Cents
	BalanceAfter  Cents
	Description   string
	OperatorID    string
	CreatedAt     time.Time
}

// =============================================================================
// SALES
// =============================================================================

// Sale is the header of one completed checkout.
//
// A nil-equivalent CustomerID (empty string) marks a walk-in sale.
// The only mutation ever applied after creation is attaching the
// accounting entry reference.
type Sale struct {
	ID                  string
	CustomerID          string // empty = walk-in
	CustomerName        string // denormalized at sale time
	TotalAmount         Cents
	SaleDate            string // YYYY-MM-DD
	PaidWithBalance     bool
	PostedToAccounting  bool
	AccountingEntryID   string // set when posted
	CreatedAt           time.Time
	Items               []SaleLineItem
}

// SaleLineItem is one product line of a sale. Immutable after creation.
type SaleLineItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string // denormalized, survives product deletion
	Quantity    int
	UnitPrice   Cents
	Subtotal    Cents // Quantity * UnitPrice
	CreatedAt   time.Time
}

// =============================================================================
// ACCOUNTING & CONSUMPTION
// =============================================================================

// AccountingEntryKind is income or expense.
type AccountingEntryKind string

const (
	AccountingIncome  AccountingEntryKind = "income"
	AccountingExpense AccountingEntryKind = "expense"
)

// AccountingEntry is one row of the financial ledger. A sale posts at
// most one income entry, referenced from the sale side.
type AccountingEntry struct {
	ID          string
	Kind        AccountingEntryKind
	Amount      Cents
	Description string
	Date        string // YYYY-MM-DD
	CreatedAt   time.Time
}

// ConsumptionRecord is one row of a customer's unified activity history.
// Created by checkouts with an associated customer, or manually.
type ConsumptionRecord struct {
	ID         string
	CustomerID string
	SaleID     string // empty when recorded manually
	Date       string // YYYY-MM-DD
	Item       string
	Amount     Cents
	CreatedAt  time.Time
}

// =============================================================================
// CHECKOUT REQUEST / CONFIRMATION
// =============================================================================

// CheckoutLine is one requested product line of a checkout.
type CheckoutLine struct {
	ProductID string
	Quantity  int
	UnitPrice Cents
}

// CheckoutRequest is the input to the checkout orchestrator.
//
// TotalAmount is supplied by the caller and trusted (not recomputed from
// the lines); only non-negativity is validated. UseBalance is meaningful
// only when CustomerID is present.
type CheckoutRequest struct {
	CustomerID         string // empty = walk-in
	CustomerName       string
	Items              []CheckoutLine
	TotalAmount        Cents
	SaleDate           string // YYYY-MM-DD
	RecordToAccounting bool
	UseBalance         bool
}

// SaleConfirmation is returned after a successful checkout.
type SaleConfirmation struct {
	SaleID      string
	TotalAmount Cents
	SaleDate    string
}
