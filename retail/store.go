/*
store.go - Persistence interfaces and pagination types

PURPOSE:
  Defines what the domain needs from storage. Each ledger is the system
  of record for its own entity and enforces its own invariants even when
  called outside the checkout orchestrator (e.g. DeductStock rejects a
  deduction that would go negative no matter who calls it).

UNIT OF WORK:
  TxStore.WithTx runs a function against a transactional view of the
  whole Store. Every write inside the function commits together or not
  at all; any error (or panic) rolls everything back. The checkout
  orchestrator wraps all five entity stores' writes in one such scope.

CONDITIONAL WRITES:
  DeductStock is the concurrency-control primitive: "decrease stock by N
  only if current stock >= N", reporting affected rows instead of taking
  a lock. A zero row count after a successful existence check means
  insufficient stock, possibly due to a concurrent checkout.

SEE ALSO:
  - store/sqlite/sqlite.go: SQLite implementation
  - checkout.go: The orchestrator consuming these interfaces
*/
package retail

import "context"

// =============================================================================
// PAGINATION
// =============================================================================

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane defaults (page 1, size 10, max 100).
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 10
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

// Offset returns the row offset for SQL LIMIT/OFFSET queries.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paged is one page of results plus the total row count.
type Paged[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// =============================================================================
// FILTERS
// =============================================================================

// DateRange filters by inclusive YYYY-MM-DD bounds; empty means unbounded.
type DateRange struct {
	Start string
	End   string
}

// AccountingFilter narrows accounting entry listings.
type AccountingFilter struct {
	Kind   AccountingEntryKind // empty = both
	Range  DateRange
	Search string // substring match on description
}

// =============================================================================
// ENTITY STORES
// =============================================================================

// ProductStore owns product records and their stock quantity.
type ProductStore interface {
	InsertProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, search string, page Page) (*Paged[Product], error)
	UpdateProduct(ctx context.Context, p *Product) error
	SetStock(ctx context.Context, id string, stock int) error

	// DeductStock decreases stock by qty only if current stock >= qty.
	// Returns the number of rows affected; 0 means the guard failed.
	// "No such product" vs "insufficient stock" is distinguished by a
	// prior GetProduct, not by this call.
	DeductStock(ctx context.Context, id string, qty int) (int64, error)

	// DeleteProduct fails with ErrProductInUse while sale line items
	// still reference the product.
	DeleteProduct(ctx context.Context, id string) error
}

// CustomerStore owns customer records, stored balances, and the
// append-only balance history.
type CustomerStore interface {
	InsertCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context, search string, memberLevel *int, page Page) (*Paged[Customer], error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id string) error

	UpdateBalance(ctx context.Context, id string, balance Cents) error

	// AppendBalanceEntry writes one immutable history row. There is no
	// update or delete for balance entries.
	AppendBalanceEntry(ctx context.Context, e *BalanceEntry) error

	// BalanceHistory returns entries newest-first.
	BalanceHistory(ctx context.Context, customerID string, page Page) (*Paged[BalanceEntry], error)
}

// SaleStore owns sale headers and their line items.
type SaleStore interface {
	InsertSale(ctx context.Context, s *Sale) error
	InsertSaleItem(ctx context.Context, item *SaleLineItem) error

	// AttachAccountingEntry records the sale's accounting linkage and
	// flips the posted flag. The only mutation a sale ever receives.
	AttachAccountingEntry(ctx context.Context, saleID, entryID string) error

	// GetSaleWithItems returns the header plus line items in insertion
	// order, fetched in one read join.
	GetSaleWithItems(ctx context.Context, id string) (*Sale, error)

	ListSales(ctx context.Context, r DateRange, page Page) (*Paged[Sale], error)
}

// AccountingStore owns income/expense records for financial reporting.
type AccountingStore interface {
	InsertAccountingEntry(ctx context.Context, e *AccountingEntry) error
	GetAccountingEntry(ctx context.Context, id string) (*AccountingEntry, error)
	ListAccountingEntries(ctx context.Context, f AccountingFilter, page Page) (*Paged[AccountingEntry], error)
	UpdateAccountingEntry(ctx context.Context, e *AccountingEntry) error
	DeleteAccountingEntry(ctx context.Context, id string) error

	Statistics(ctx context.Context, r DateRange) (*AccountingStatistics, error)
	MonthlyStatistics(ctx context.Context, year int) ([]MonthlyStatistics, error)
}

// ConsumptionStore owns per-customer activity records.
type ConsumptionStore interface {
	InsertConsumptionRecord(ctx context.Context, rec *ConsumptionRecord) error
	GetConsumptionRecord(ctx context.Context, id string) (*ConsumptionRecord, error)
	ListConsumptionRecords(ctx context.Context, customerID string, r DateRange, page Page) (*Paged[ConsumptionRecord], error)
	DeleteConsumptionRecord(ctx context.Context, id string) error
}

// Store aggregates every entity store. WithTx hands the orchestrator a
// Store whose writes all share one transaction.
type Store interface {
	ProductStore
	CustomerStore
	SaleStore
	AccountingStore
	ConsumptionStore
}

// TxStore is a Store that can open a transactional scope.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional Store. Commit happens
	// only if fn returns nil; any error rolls back every write made
	// through the transactional Store.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// REPORTING TYPES
// =============================================================================

// AccountingStatistics aggregates the ledger over a date range.
type AccountingStatistics struct {
	TotalIncome  Cents
	TotalExpense Cents
	NetIncome    Cents
	IncomeCount  int
	ExpenseCount int
}

// MonthlyStatistics is one month's income/expense totals.
type MonthlyStatistics struct {
	Month   int // 1-12
	Income  Cents
	Expense Cents
}
