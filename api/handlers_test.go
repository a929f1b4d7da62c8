package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/retail-engine/api"
	"github.com/oakmart/retail-engine/retail"
	"github.com/oakmart/retail-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)

	router := api.NewRouter(api.NewHandler(store))
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return server, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Operator-ID", "op-test")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// =============================================================================
// CHECKOUT ENDPOINT
// =============================================================================

func TestAPI_Checkout_Success(t *testing.T) {
	// GIVEN: A product with stock
	// WHEN: POST /api/sales with one line
	// THEN: 201 with a confirmation; stock is reduced

	server, store := newTestServer(t)
	ctx := context.Background()

	p := &retail.Product{Name: "Dog Food", Price: 1000, Stock: 5}
	require.NoError(t, store.InsertProduct(ctx, p))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sales", api.CheckoutRequest{
		CustomerName: "Walk-in",
		Items: []api.CheckoutLineRequest{
			{ProductID: p.ID, Quantity: 3, UnitPriceCents: 1000},
		},
		TotalAmountCents: 3000,
		SaleDate:         "2026-08-28",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conf := decode[api.SaleConfirmationDTO](t, resp)
	assert.NotEmpty(t, conf.SaleID)
	assert.EqualValues(t, 3000, conf.TotalAmountCents)
	assert.Equal(t, "30.00", conf.TotalAmount)

	after, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Stock)
}

func TestAPI_Checkout_InsufficientStock_409(t *testing.T) {
	// GIVEN: A product with stock 2
	// WHEN: Checkout requests 3
	// THEN: 409 with a detailed error body

	server, store := newTestServer(t)
	p := &retail.Product{Name: "Dog Food", Price: 1000, Stock: 2}
	require.NoError(t, store.InsertProduct(context.Background(), p))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sales", api.CheckoutRequest{
		CustomerName: "Walk-in",
		Items: []api.CheckoutLineRequest{
			{ProductID: p.ID, Quantity: 3, UnitPriceCents: 1000},
		},
		TotalAmountCents: 3000,
		SaleDate:         "2026-08-28",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode[api.ErrorResponse](t, resp)
	assert.Contains(t, body.Details, "insufficient stock")
}

func TestAPI_Checkout_Validation_400(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sales", api.CheckoutRequest{
		CustomerName:     "Walk-in",
		Items:            nil, // no lines
		TotalAmountCents: 0,
		SaleDate:         "2026-08-28",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Checkout_WithBalance_RecordsOperator(t *testing.T) {
	// GIVEN: A customer with balance and a product
	// WHEN: Checkout pays with balance
	// THEN: The ledger entry carries the X-Operator-ID header value

	server, store := newTestServer(t)
	ctx := context.Background()

	p := &retail.Product{Name: "Brush", Price: 500, Stock: 5}
	require.NoError(t, store.InsertProduct(ctx, p))
	c := &retail.Customer{Name: "Alice", Balance: 500}
	require.NoError(t, store.InsertCustomer(ctx, c))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sales", api.CheckoutRequest{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		Items: []api.CheckoutLineRequest{
			{ProductID: p.ID, Quantity: 1, UnitPriceCents: 500},
		},
		TotalAmountCents: 500,
		SaleDate:         "2026-08-28",
		UseBalance:       true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	history, err := store.BalanceHistory(ctx, c.ID, retail.Page{})
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "op-test", history.Items[0].OperatorID)
}

// =============================================================================
// SALE READS
// =============================================================================

func TestAPI_GetSale_WithItems(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()

	p := &retail.Product{Name: "Leash", Price: 1500, Stock: 5}
	require.NoError(t, store.InsertProduct(ctx, p))

	created := decode[api.SaleConfirmationDTO](t, doJSON(t, http.MethodPost, server.URL+"/api/sales", api.CheckoutRequest{
		CustomerName: "Bob",
		Items: []api.CheckoutLineRequest{
			{ProductID: p.ID, Quantity: 2, UnitPriceCents: 1500},
		},
		TotalAmountCents: 3000,
		SaleDate:         "2026-08-28",
	}))

	resp := doJSON(t, http.MethodGet, server.URL+"/api/sales/"+created.SaleID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sale := decode[api.SaleDTO](t, resp)
	assert.Equal(t, "Bob", sale.CustomerName)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Leash", sale.Items[0].ProductName)
	assert.Equal(t, "15.00", sale.Items[0].UnitPrice)
	assert.EqualValues(t, 3000, sale.Items[0].SubtotalCents)
}

func TestAPI_GetSale_Missing_404(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/sales/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// PRODUCT ENDPOINTS
// =============================================================================

func TestAPI_Product_Lifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	// Create
	resp := doJSON(t, http.MethodPost, server.URL+"/api/products", api.ProductRequest{
		Name: "Shampoo", PriceCents: 800, Stock: 12,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[api.ProductDTO](t, resp)
	assert.Equal(t, "8.00", created.Price)

	// Update
	resp = doJSON(t, http.MethodPut, server.URL+"/api/products/"+created.ID, api.ProductRequest{
		Name: "Oatmeal Shampoo", PriceCents: 950, Stock: 12,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[api.ProductDTO](t, resp)
	assert.Equal(t, "Oatmeal Shampoo", updated.Name)

	// Set stock
	resp = doJSON(t, http.MethodPut, server.URL+"/api/products/"+created.ID+"/stock", api.SetStockRequest{Stock: 40})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stocked := decode[api.ProductDTO](t, resp)
	assert.Equal(t, 40, stocked.Stock)

	// Delete
	resp = doJSON(t, http.MethodDelete, server.URL+"/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/api/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_DeleteProduct_InUse_409(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()

	p := &retail.Product{Name: "Harness", Price: 2200, Stock: 3}
	require.NoError(t, store.InsertProduct(ctx, p))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sales", api.CheckoutRequest{
		CustomerName: "Walk-in",
		Items: []api.CheckoutLineRequest{
			{ProductID: p.ID, Quantity: 1, UnitPriceCents: 2200},
		},
		TotalAmountCents: 2200,
		SaleDate:         "2026-08-28",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/products/"+p.ID, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_CreateProduct_Invalid_400(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/products", api.ProductRequest{
		Name: "", PriceCents: 100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// CUSTOMER & BALANCE ENDPOINTS
// =============================================================================

func TestAPI_Customer_BalanceFlow(t *testing.T) {
	// GIVEN: A new customer
	// WHEN: Recharge 5000, deduct 2000, then read the history
	// THEN: Balance is 3000 and the history returns newest first

	server, _ := newTestServer(t)

	created := decode[api.CustomerDTO](t, doJSON(t, http.MethodPost, server.URL+"/api/customers", api.CustomerRequest{
		Name: "Alice", Phone: "555-0001", MemberLevel: 2, PetName: "Rex", PetType: "dog",
	}))
	assert.EqualValues(t, 0, created.BalanceCents)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/customers/"+created.ID+"/recharge",
		api.BalanceOpRequest{AmountCents: 5000, Description: "card"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	afterRecharge := decode[api.CustomerDTO](t, resp)
	assert.EqualValues(t, 5000, afterRecharge.BalanceCents)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/customers/"+created.ID+"/deduct",
		api.BalanceOpRequest{AmountCents: 2000, Description: "grooming"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	afterDeduct := decode[api.CustomerDTO](t, resp)
	assert.EqualValues(t, 3000, afterDeduct.BalanceCents)
	assert.Equal(t, "30.00", afterDeduct.Balance)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/customers/"+created.ID+"/balance-history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[api.PagedResponse[api.BalanceEntryDTO]](t, resp)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "DEDUCT", history.Items[0].Kind)
	assert.Equal(t, "RECHARGE", history.Items[1].Kind)
	assert.Equal(t, "op-test", history.Items[0].OperatorID)
}

func TestAPI_Deduct_Insufficient_409(t *testing.T) {
	server, _ := newTestServer(t)

	created := decode[api.CustomerDTO](t, doJSON(t, http.MethodPost, server.URL+"/api/customers",
		api.CustomerRequest{Name: "Bob"}))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/customers/"+created.ID+"/deduct",
		api.BalanceOpRequest{AmountCents: 100})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Recharge_InvalidAmount_400(t *testing.T) {
	server, _ := newTestServer(t)

	created := decode[api.CustomerDTO](t, doJSON(t, http.MethodPost, server.URL+"/api/customers",
		api.CustomerRequest{Name: "Carol"}))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/customers/"+created.ID+"/recharge",
		api.BalanceOpRequest{AmountCents: -50})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_Customers_FilterByMemberLevel(t *testing.T) {
	server, _ := newTestServer(t)

	for i, level := range []int{1, 2, 2} {
		doJSON(t, http.MethodPost, server.URL+"/api/customers", api.CustomerRequest{
			Name: fmt.Sprintf("Customer %d", i), MemberLevel: level,
		}).Body.Close()
	}

	resp := doJSON(t, http.MethodGet, server.URL+"/api/customers?member_level=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[api.PagedResponse[api.CustomerDTO]](t, resp)
	assert.EqualValues(t, 2, page.Total)
}

// =============================================================================
// CONSUMPTION RECORD ENDPOINTS
// =============================================================================

func TestAPI_ConsumptionRecords_CreateListDelete(t *testing.T) {
	// GIVEN: A customer
	// WHEN: Recording a manual entry, listing, then deleting it
	// THEN: The record round-trips with no sale link and disappears on delete

	server, _ := newTestServer(t)

	c := decode[api.CustomerDTO](t, doJSON(t, http.MethodPost, server.URL+"/api/customers",
		api.CustomerRequest{Name: "Alice"}))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/customers/"+c.ID+"/consumption-records",
		api.ConsumptionRecordRequest{Date: "2026-08-10", Item: "nail trim", AmountCents: 1500})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[api.ConsumptionRecordDTO](t, resp)
	assert.Empty(t, created.SaleID)
	assert.Equal(t, "15.00", created.Amount)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/customers/"+c.ID+"/consumption-records", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[api.PagedResponse[api.ConsumptionRecordDTO]](t, resp)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "nail trim", page.Items[0].Item)

	resp = doJSON(t, http.MethodDelete, server.URL+"/api/consumption/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, server.URL+"/api/customers/"+c.ID+"/consumption-records", nil)
	empty := decode[api.PagedResponse[api.ConsumptionRecordDTO]](t, resp)
	assert.Empty(t, empty.Items)
}

func TestAPI_ConsumptionRecords_UnknownCustomer_404(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/customers/missing/consumption-records",
		api.ConsumptionRecordRequest{Date: "2026-08-10", Item: "bath", AmountCents: 100})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// ACCOUNTING ENDPOINTS
// =============================================================================

func TestAPI_Accounting_CreateAndStatistics(t *testing.T) {
	server, _ := newTestServer(t)

	for _, e := range []api.AccountingEntryRequest{
		{Kind: "income", AmountCents: 10000, Description: "sales", Date: "2026-08-01"},
		{Kind: "expense", AmountCents: 4000, Description: "supplies", Date: "2026-08-02"},
	} {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/accounting", e)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, server.URL+"/api/accounting/statistics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[api.StatisticsDTO](t, resp)
	assert.EqualValues(t, 10000, stats.TotalIncomeCents)
	assert.EqualValues(t, 4000, stats.TotalExpenseCents)
	assert.EqualValues(t, 6000, stats.NetIncomeCents)
	assert.Equal(t, "60.00", stats.NetIncome)
}

func TestAPI_Accounting_InvalidKind_400(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/accounting", api.AccountingEntryRequest{
		Kind: "transfer", AmountCents: 100, Date: "2026-08-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// HEALTH
// =============================================================================

func TestAPI_Health(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
