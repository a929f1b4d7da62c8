/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  Amounts travel as integer minor units (cents) in amount_cents fields,
  plus a preformatted amount string ("12.50") for display. Clients never
  send or receive floats.

VALIDATION:
  Validation is done in handlers and domain services, not in DTOs. DTOs
  are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ../retail/types.go: The domain entities these project
*/
package api

import (
	"time"

	"github.com/oakmart/retail-engine/retail"
)

// =============================================================================
// SHARED
// =============================================================================

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PagedResponse wraps one page of results.
type PagedResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func pagedOf[D, T any](p *retail.Paged[T], project func(T) D) PagedResponse[D] {
	items := make([]D, len(p.Items))
	for i, it := range p.Items {
		items[i] = project(it)
	}
	return PagedResponse[D]{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
}

// =============================================================================
// PRODUCTS
// =============================================================================

// ProductDTO represents a product in API responses.
type ProductDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ProductRequest is the request to create or update a product.
type ProductRequest struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// SetStockRequest replaces a product's stock quantity.
type SetStockRequest struct {
	Stock int `json:"stock"`
}

func toProductDTO(p retail.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		PriceCents:  int64(p.Price),
		Price:       p.Price.String(),
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CUSTOMERS
// =============================================================================

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	MemberLevel  int    `json:"member_level"`
	BalanceCents int64  `json:"balance_cents"`
	Balance      string `json:"balance"`
	PetName      string `json:"pet_name,omitempty"`
	PetType      string `json:"pet_type,omitempty"`
	Breed        string `json:"breed,omitempty"`
	Age          int    `json:"age,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// CustomerRequest is the request to create or update a customer.
// Balance is intentionally absent: it changes only through the balance
// endpoints, never through profile edits.
type CustomerRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	MemberLevel int    `json:"member_level"`
	PetName     string `json:"pet_name"`
	PetType     string `json:"pet_type"`
	Breed       string `json:"breed"`
	Age         int    `json:"age"`
}

// BalanceOpRequest is the request body for recharge/deduct/refund.
type BalanceOpRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

// BalanceEntryDTO is one row of a customer's balance history.
type BalanceEntryDTO struct {
	ID                 string `json:"id"`
	CustomerID         string `json:"customer_id"`
	Kind               string `json:"kind"`
	AmountCents        int64  `json:"amount_cents"`
	Amount             string `json:"amount"`
	BalanceBeforeCents int64  `json:"balance_before_cents"`
	BalanceAfterCents  int64  `json:"balance_after_cents"`
	Description        string `json:"description,omitempty"`
	OperatorID         string `json:"operator_id,omitempty"`
	CreatedAt          string `json:"created_at"`
}

func toCustomerDTO(c retail.Customer) CustomerDTO {
	return CustomerDTO{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		MemberLevel:  c.MemberLevel,
		BalanceCents: int64(c.Balance),
		Balance:      c.Balance.String(),
		PetName:      c.PetName,
		PetType:      c.PetType,
		Breed:        c.Breed,
		Age:          c.Age,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

func toBalanceEntryDTO(e retail.BalanceEntry) BalanceEntryDTO {
	return BalanceEntryDTO{
		ID:                 e.ID,
		CustomerID:         e.CustomerID,
		Kind:               string(e.Kind),
		AmountCents:        int64(e.Amount),
		Amount:             e.Amount.String(),
		BalanceBeforeCents: int64(e.BalanceBefore),
		BalanceAfterCents:  int64(e.BalanceAfter),
		Description:        e.Description,
		OperatorID:         e.OperatorID,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SALES / CHECKOUT
// =============================================================================

// CheckoutLineRequest is one product line of a checkout request.
type CheckoutLineRequest struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// CheckoutRequest is the request body for POST /api/sales.
type CheckoutRequest struct {
	CustomerID         string                `json:"customer_id"`
	CustomerName       string                `json:"customer_name"`
	Items              []CheckoutLineRequest `json:"items"`
	TotalAmountCents   int64                 `json:"total_amount_cents"`
	SaleDate           string                `json:"sale_date"`
	RecordToAccounting bool                  `json:"record_to_accounting"`
	UseBalance         bool                  `json:"use_balance"`
}

// SaleConfirmationDTO is returned after a successful checkout.
type SaleConfirmationDTO struct {
	SaleID           string `json:"sale_id"`
	TotalAmountCents int64  `json:"total_amount_cents"`
	TotalAmount      string `json:"total_amount"`
	SaleDate         string `json:"sale_date"`
}

// SaleLineItemDTO is one product line of a recorded sale.
type SaleLineItemDTO struct {
	ID             string `json:"id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	UnitPrice      string `json:"unit_price"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	Subtotal       string `json:"subtotal"`
}

// SaleDTO is a sale header, with items when fetched individually.
type SaleDTO struct {
	ID                 string            `json:"id"`
	CustomerID         string            `json:"customer_id,omitempty"`
	CustomerName       string            `json:"customer_name"`
	TotalAmountCents   int64             `json:"total_amount_cents"`
	TotalAmount        string            `json:"total_amount"`
	SaleDate           string            `json:"sale_date"`
	PaidWithBalance    bool              `json:"paid_with_balance"`
	PostedToAccounting bool              `json:"posted_to_accounting"`
	AccountingEntryID  string            `json:"accounting_entry_id,omitempty"`
	Items              []SaleLineItemDTO `json:"items,omitempty"`
	CreatedAt          string            `json:"created_at"`
}

func toSaleDTO(s retail.Sale) SaleDTO {
	dto := SaleDTO{
		ID:                 s.ID,
		CustomerID:         s.CustomerID,
		CustomerName:       s.CustomerName,
		TotalAmountCents:   int64(s.TotalAmount),
		TotalAmount:        s.TotalAmount.String(),
		SaleDate:           s.SaleDate,
		PaidWithBalance:    s.PaidWithBalance,
		PostedToAccounting: s.PostedToAccounting,
		AccountingEntryID:  s.AccountingEntryID,
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range s.Items {
		dto.Items = append(dto.Items, SaleLineItemDTO{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: int64(item.UnitPrice),
			UnitPrice:      item.UnitPrice.String(),
			SubtotalCents:  int64(item.Subtotal),
			Subtotal:       item.Subtotal.String(),
		})
	}
	return dto
}

// =============================================================================
// ACCOUNTING
// =============================================================================

// AccountingEntryDTO represents an accounting entry in API responses.
type AccountingEntryDTO struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// AccountingEntryRequest creates or updates an accounting entry.
type AccountingEntryRequest struct {
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// StatisticsDTO aggregates the accounting ledger over a date range.
type StatisticsDTO struct {
	TotalIncomeCents  int64  `json:"total_income_cents"`
	TotalIncome       string `json:"total_income"`
	TotalExpenseCents int64  `json:"total_expense_cents"`
	TotalExpense      string `json:"total_expense"`
	NetIncomeCents    int64  `json:"net_income_cents"`
	NetIncome         string `json:"net_income"`
	IncomeCount       int    `json:"income_count"`
	ExpenseCount      int    `json:"expense_count"`
}

// MonthlyStatisticsDTO is one month's income/expense totals.
type MonthlyStatisticsDTO struct {
	Month        int    `json:"month"`
	IncomeCents  int64  `json:"income_cents"`
	Income       string `json:"income"`
	ExpenseCents int64  `json:"expense_cents"`
	Expense      string `json:"expense"`
}

func toAccountingEntryDTO(e retail.AccountingEntry) AccountingEntryDTO {
	return AccountingEntryDTO{
		ID:          e.ID,
		Kind:        string(e.Kind),
		AmountCents: int64(e.Amount),
		Amount:      e.Amount.String(),
		Description: e.Description,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CONSUMPTION RECORDS
// =============================================================================

// ConsumptionRecordDTO represents one activity row in API responses.
type ConsumptionRecordDTO struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customer_id"`
	SaleID      string `json:"sale_id,omitempty"`
	Date        string `json:"date"`
	Item        string `json:"item"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ConsumptionRecordRequest records a manual consumption entry. The
// customer comes from the URL path.
type ConsumptionRecordRequest struct {
	Date        string `json:"date"`
	Item        string `json:"item"`
	AmountCents int64  `json:"amount_cents"`
}

func toConsumptionRecordDTO(rec retail.ConsumptionRecord) ConsumptionRecordDTO {
	return ConsumptionRecordDTO{
		ID:          rec.ID,
		CustomerID:  rec.CustomerID,
		SaleID:      rec.SaleID,
		Date:        rec.Date,
		Item:        rec.Item,
		AmountCents: int64(rec.Amount),
		Amount:      rec.Amount.String(),
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}
