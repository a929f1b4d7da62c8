/*
handlers.go - HTTP API handlers for the retail operations backend

PURPOSE:
  Exposes the retail engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Sales:
    POST   /api/sales                    Checkout (atomic multi-entity write)
    GET    /api/sales                    List sales (date range, paged)
    GET    /api/sales/{id}               Sale with line items

  Products:
    GET    /api/products                 List/search products
    POST   /api/products                 Create product
    GET    /api/products/{id}            Get product
    PUT    /api/products/{id}            Update product
    PUT    /api/products/{id}/stock      Replace stock quantity
    DELETE /api/products/{id}            Delete (409 while referenced)

  Customers:
    GET    /api/customers                List/search customers
    POST   /api/customers                Create customer
    GET    /api/customers/{id}           Get customer
    PUT    /api/customers/{id}           Update profile (not balance)
    DELETE /api/customers/{id}           Delete customer
    POST   /api/customers/{id}/recharge  Add to balance
    POST   /api/customers/{id}/deduct    Remove from balance
    POST   /api/customers/{id}/refund    Return to balance
    GET    /api/customers/{id}/balance-history      Ledger, newest first
    GET    /api/customers/{id}/consumption-records  Activity records
    POST   /api/customers/{id}/consumption-records  Manual activity record

  Accounting:
    GET    /api/accounting                     List entries (kind/date/search)
    POST   /api/accounting                     Create manual entry
    GET    /api/accounting/statistics          Totals over a date range
    GET    /api/accounting/statistics/monthly  Per-month totals for a year
    GET    /api/accounting/{id}                Get entry
    PUT    /api/accounting/{id}                Update entry
    DELETE /api/accounting/{id}                Delete entry

  Consumption:
    DELETE /api/consumption/{id}         Delete record

  Health:
    GET    /api/health                   Liveness probe

OPERATOR IDENTITY:
  The optional X-Operator-ID header is recorded on balance ledger
  entries for audit.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Entity not found
  - 409: Guard failure (insufficient stock/balance, product in use)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ../retail/errors.go: The error taxonomy mapped here
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oakmart/retail-engine/retail"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    retail.TxStore
	Checkout *retail.CheckoutService
	Balance  *retail.BalanceService
}

// NewHandler creates a new handler with the given store.
func NewHandler(store retail.TxStore) *Handler {
	return &Handler{
		Store:    store,
		Checkout: retail.NewCheckoutService(store),
		Balance:  retail.NewBalanceService(store),
	}
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// CreateSale executes a checkout.
// POST /api/sales
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	domainReq := retail.CheckoutRequest{
		CustomerID:         req.CustomerID,
		CustomerName:       req.CustomerName,
		TotalAmount:        retail.Cents(req.TotalAmountCents),
		SaleDate:           req.SaleDate,
		RecordToAccounting: req.RecordToAccounting,
		UseBalance:         req.UseBalance,
	}
	for _, line := range req.Items {
		domainReq.Items = append(domainReq.Items, retail.CheckoutLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: retail.Cents(line.UnitPriceCents),
		})
	}

	conf, err := h.Checkout.Checkout(r.Context(), domainReq, operatorID(r))
	if err != nil {
		writeDomainError(w, "Checkout failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, SaleConfirmationDTO{
		SaleID:           conf.SaleID,
		TotalAmountCents: int64(conf.TotalAmount),
		TotalAmount:      conf.TotalAmount.String(),
		SaleDate:         conf.SaleDate,
	})
}

// ListSales returns sale headers, newest first.
// GET /api/sales?start=YYYY-MM-DD&end=YYYY-MM-DD&page=1&page_size=10
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Store.ListSales(r.Context(), queryDateRange(r), queryPage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales", err)
		return
	}
	writeJSON(w, http.StatusOK, pagedOf(sales, toSaleDTO))
}

// GetSale returns one sale with its line items.
// GET /api/sales/{id}
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.Store.GetSaleWithItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get sale", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(*sale))
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns products, optionally filtered by a name search.
// GET /api/products?search=&page=1&page_size=10
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context(), r.URL.Query().Get("search"), queryPage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, pagedOf(products, toProductDTO))
}

// CreateProduct creates a new product.
// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateProduct(req); err != nil {
		writeDomainError(w, "Invalid product", err)
		return
	}

	product := &retail.Product{
		Name:        req.Name,
		Price:       retail.Cents(req.PriceCents),
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	}
	if err := h.Store.InsertProduct(r.Context(), product); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(*product))
}

// GetProduct returns a single product.
// GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*product))
}

// UpdateProduct replaces a product's mutable fields.
// PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateProduct(req); err != nil {
		writeDomainError(w, "Invalid product", err)
		return
	}

	id := chi.URLParam(r, "id")
	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get product", err)
		return
	}

	product.Name = req.Name
	product.Price = retail.Cents(req.PriceCents)
	product.Stock = req.Stock
	product.ImageURL = req.ImageURL
	product.Description = req.Description
	if err := h.Store.UpdateProduct(r.Context(), product); err != nil {
		writeDomainError(w, "Failed to update product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*product))
}

// SetStock replaces a product's stock quantity.
// PUT /api/products/{id}/stock
func (h *Handler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Stock < 0 {
		writeDomainError(w, "Invalid stock", &retail.ValidationError{Field: "stock", Message: "must not be negative"})
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Store.SetStock(r.Context(), id, req.Stock); err != nil {
		writeDomainError(w, "Failed to set stock", err)
		return
	}

	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*product))
}

// DeleteProduct removes a product, failing while sales reference it.
// DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateProduct(req ProductRequest) error {
	if req.Name == "" {
		return &retail.ValidationError{Field: "name", Message: "required"}
	}
	if req.PriceCents < 0 {
		return &retail.ValidationError{Field: "price_cents", Message: "must not be negative"}
	}
	if req.Stock < 0 {
		return &retail.ValidationError{Field: "stock", Message: "must not be negative"}
	}
	return nil
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns customers, filterable by search and member level.
// GET /api/customers?search=&member_level=&page=1&page_size=10
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	var memberLevel *int
	if raw := r.URL.Query().Get("member_level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid member_level", err)
			return
		}
		memberLevel = &level
	}

	customers, err := h.Store.ListCustomers(r.Context(), r.URL.Query().Get("search"), memberLevel, queryPage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, pagedOf(customers, toCustomerDTO))
}

// CreateCustomer creates a new customer with a zero balance.
// POST /api/customers
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeDomainError(w, "Invalid customer", &retail.ValidationError{Field: "name", Message: "required"})
		return
	}

	customer := &retail.Customer{
		Name:        req.Name,
		Phone:       req.Phone,
		MemberLevel: req.MemberLevel,
		PetName:     req.PetName,
		PetType:     req.PetType,
		Breed:       req.Breed,
		Age:         req.Age,
	}
	if err := h.Store.InsertCustomer(r.Context(), customer); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(*customer))
}

// GetCustomer returns a single customer.
// GET /api/customers/{id}
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.Store.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*customer))
}

// UpdateCustomer replaces a customer's profile fields. The balance is
// untouched regardless of the request body.
// PUT /api/customers/{id}
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeDomainError(w, "Invalid customer", &retail.ValidationError{Field: "name", Message: "required"})
		return
	}

	customer, err := h.Store.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.MemberLevel = req.MemberLevel
	customer.PetName = req.PetName
	customer.PetType = req.PetType
	customer.Breed = req.Breed
	customer.Age = req.Age
	if err := h.Store.UpdateCustomer(r.Context(), customer); err != nil {
		writeDomainError(w, "Failed to update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*customer))
}

// DeleteCustomer removes a customer. Past sales keep the denormalized
// customer name.
// DELETE /api/customers/{id}
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recharge adds to a customer's balance.
// POST /api/customers/{id}/recharge
func (h *Handler) Recharge(w http.ResponseWriter, r *http.Request) {
	h.balanceOp(w, r, h.Balance.Recharge)
}

// Deduct removes from a customer's balance.
// POST /api/customers/{id}/deduct
func (h *Handler) Deduct(w http.ResponseWriter, r *http.Request) {
	h.balanceOp(w, r, h.Balance.Deduct)
}

// Refund returns funds to a customer's balance.
// POST /api/customers/{id}/refund
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	h.balanceOp(w, r, h.Balance.Refund)
}

type balanceOpFunc func(ctx context.Context, customerID string, amount retail.Cents, description, operatorID string) (*retail.Customer, error)

func (h *Handler) balanceOp(w http.ResponseWriter, r *http.Request, op balanceOpFunc) {
	var req BalanceOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	customer, err := op(r.Context(), chi.URLParam(r, "id"),
		retail.Cents(req.AmountCents), req.Description, operatorID(r))
	if err != nil {
		writeDomainError(w, "Balance operation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*customer))
}

// BalanceHistory returns the customer's ledger, newest first.
// GET /api/customers/{id}/balance-history
func (h *Handler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Balance.History(r.Context(), chi.URLParam(r, "id"), queryPage(r))
	if err != nil {
		writeDomainError(w, "Failed to get balance history", err)
		return
	}
	writeJSON(w, http.StatusOK, pagedOf(entries, toBalanceEntryDTO))
}

// ListConsumption returns the customer's consumption records.
// GET /api/customers/{id}/consumption-records?start=&end=
func (h *Handler) ListConsumption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetCustomer(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}

	records, err := h.Store.ListConsumptionRecords(r.Context(), id, queryDateRange(r), queryPage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list consumption records", err)
		return
	}
	writeJSON(w, http.StatusOK, pagedOf(records, toConsumptionRecordDTO))
}

// =============================================================================
// ACCOUNTING HANDLERS
// =============================================================================

// ListAccounting returns accounting entries, filterable by kind, date
// range, and description search.
// GET /api/accounting?kind=&start=&end=&search=
func (h *Handler) ListAccounting(w http.ResponseWriter, r *http.Request) {
	filter := retail.AccountingFilter{
		Kind:   retail.AccountingEntryKind(r.URL.Query().Get("kind")),
		Range:  queryDateRange(r),
		Search: r.URL.Query().Get("search"),
	}
	entries, err := h.Store.ListAccountingEntries(r.Context(), filter, queryPage(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounting entries", err)
		return
	}
	writeJSON(w, http.StatusOK, pagedOf(entries, toAccountingEntryDTO))
}

// CreateAccounting records a manual income or expense entry.
// POST /api/accounting
func (h *Handler) CreateAccounting(w http.ResponseWriter, r *http.Request) {
	var req AccountingEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateAccounting(req); err != nil {
		writeDomainError(w, "Invalid accounting entry", err)
		return
	}

	entry := &retail.AccountingEntry{
		Kind:        retail.AccountingEntryKind(req.Kind),
		Amount:      retail.Cents(req.AmountCents),
		Description: req.Description,
		Date:        req.Date,
	}
	if err := h.Store.InsertAccountingEntry(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create accounting entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountingEntryDTO(*entry))
}

// GetAccounting returns one accounting entry.
// GET /api/accounting/{id}
func (h *Handler) GetAccounting(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Store.GetAccountingEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get accounting entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountingEntryDTO(*entry))
}

// UpdateAccounting replaces an accounting entry's fields.
// PUT /api/accounting/{id}
func (h *Handler) UpdateAccounting(w http.ResponseWriter, r *http.Request) {
	var req AccountingEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateAccounting(req); err != nil {
		writeDomainError(w, "Invalid accounting entry", err)
		return
	}

	entry := &retail.AccountingEntry{
		ID:          chi.URLParam(r, "id"),
		Kind:        retail.AccountingEntryKind(req.Kind),
		Amount:      retail.Cents(req.AmountCents),
		Description: req.Description,
		Date:        req.Date,
	}
	if err := h.Store.UpdateAccountingEntry(r.Context(), entry); err != nil {
		writeDomainError(w, "Failed to update accounting entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountingEntryDTO(*entry))
}

// DeleteAccounting removes an accounting entry.
// DELETE /api/accounting/{id}
func (h *Handler) DeleteAccounting(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAccountingEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete accounting entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Statistics returns income/expense totals over a date range.
// GET /api/accounting/statistics?start=&end=
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Statistics(r.Context(), queryDateRange(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, StatisticsDTO{
		TotalIncomeCents:  int64(stats.TotalIncome),
		TotalIncome:       stats.TotalIncome.String(),
		TotalExpenseCents: int64(stats.TotalExpense),
		TotalExpense:      stats.TotalExpense.String(),
		NetIncomeCents:    int64(stats.NetIncome),
		NetIncome:         stats.NetIncome.String(),
		IncomeCount:       stats.IncomeCount,
		ExpenseCount:      stats.ExpenseCount,
	})
}

// MonthlyStatistics returns per-month totals for one year.
// GET /api/accounting/statistics/monthly?year=2026
func (h *Handler) MonthlyStatistics(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	months, err := h.Store.MonthlyStatistics(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute monthly statistics", err)
		return
	}

	dtos := make([]MonthlyStatisticsDTO, len(months))
	for i, m := range months {
		dtos[i] = MonthlyStatisticsDTO{
			Month:        m.Month,
			IncomeCents:  int64(m.Income),
			Income:       m.Income.String(),
			ExpenseCents: int64(m.Expense),
			Expense:      m.Expense.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func validateAccounting(req AccountingEntryRequest) error {
	kind := retail.AccountingEntryKind(req.Kind)
	if kind != retail.AccountingIncome && kind != retail.AccountingExpense {
		return &retail.ValidationError{Field: "kind", Message: "must be income or expense"}
	}
	if req.AmountCents <= 0 {
		return &retail.ValidationError{Field: "amount_cents", Message: "must be positive"}
	}
	if req.Date == "" {
		return &retail.ValidationError{Field: "date", Message: "required"}
	}
	return nil
}

// =============================================================================
// CONSUMPTION HANDLERS
// =============================================================================

// CreateConsumption records a manual consumption entry (no linked sale)
// for the customer in the path.
// POST /api/customers/{id}/consumption-records
func (h *Handler) CreateConsumption(w http.ResponseWriter, r *http.Request) {
	var req ConsumptionRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	customerID := chi.URLParam(r, "id")
	if req.Item == "" {
		writeDomainError(w, "Invalid consumption record", &retail.ValidationError{Field: "item", Message: "required"})
		return
	}
	if req.Date == "" {
		writeDomainError(w, "Invalid consumption record", &retail.ValidationError{Field: "date", Message: "required"})
		return
	}

	if _, err := h.Store.GetCustomer(r.Context(), customerID); err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}

	rec := &retail.ConsumptionRecord{
		CustomerID: customerID,
		Date:       req.Date,
		Item:       req.Item,
		Amount:     retail.Cents(req.AmountCents),
	}
	if err := h.Store.InsertConsumptionRecord(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create consumption record", err)
		return
	}
	writeJSON(w, http.StatusCreated, toConsumptionRecordDTO(*rec))
}

// DeleteConsumption removes a consumption record.
// DELETE /api/consumption/{id}
func (h *Handler) DeleteConsumption(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteConsumptionRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete consumption record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health is the liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func operatorID(r *http.Request) string {
	return r.Header.Get("X-Operator-ID")
}

func queryPage(r *http.Request) retail.Page {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return retail.Page{Number: page, Size: size}
}

func queryDateRange(r *http.Request) retail.DateRange {
	return retail.DateRange{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain error kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case retail.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case retail.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case retail.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
