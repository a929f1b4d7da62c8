package retail_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/retail-engine/retail"
	"github.com/oakmart/retail-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestCheckout(t *testing.T) (*retail.CheckoutService, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return retail.NewCheckoutService(store), store
}

func seedProduct(t *testing.T, store *sqlite.Store, name string, price retail.Cents, stock int) *retail.Product {
	t.Helper()
	p := &retail.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, store.InsertProduct(context.Background(), p))
	return p
}

func seedCustomer(t *testing.T, store *sqlite.Store, name string, balance retail.Cents) *retail.Customer {
	t.Helper()
	c := &retail.Customer{Name: name, Balance: balance}
	require.NoError(t, store.InsertCustomer(context.Background(), c))
	return c
}

func oneLineCheckout(p *retail.Product, qty int) retail.CheckoutRequest {
	return retail.CheckoutRequest{
		CustomerName: "Walk-in",
		Items: []retail.CheckoutLine{
			{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price},
		},
		TotalAmount: p.Price * retail.Cents(qty),
		SaleDate:    "2026-08-28",
	}
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestCheckout_DeductsStockAndCreatesLineItem(t *testing.T) {
	// GIVEN: Product with stock 5, price 1000
	// WHEN: Checkout requests quantity 3
	// THEN: Stock becomes 2 and one line item with subtotal 3000 exists

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Dog Food", 1000, 5)

	conf, err := svc.Checkout(ctx, oneLineCheckout(p, 3), "op-1")
	require.NoError(t, err)
	require.NotEmpty(t, conf.SaleID)
	assert.Equal(t, retail.Cents(3000), conf.TotalAmount)

	after, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Stock)

	sale, err := store.GetSaleWithItems(ctx, conf.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Dog Food", sale.Items[0].ProductName)
	assert.Equal(t, 3, sale.Items[0].Quantity)
	assert.Equal(t, retail.Cents(3000), sale.Items[0].Subtotal)
}

func TestCheckout_MultipleLines(t *testing.T) {
	// GIVEN: Two products
	// WHEN: One checkout buys both
	// THEN: Both stocks drop and both line items preserve insertion order

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	food := seedProduct(t, store, "Cat Food", 2500, 10)
	toy := seedProduct(t, store, "Mouse Toy", 500, 4)

	req := retail.CheckoutRequest{
		CustomerName: "Walk-in",
		Items: []retail.CheckoutLine{
			{ProductID: food.ID, Quantity: 2, UnitPrice: food.Price},
			{ProductID: toy.ID, Quantity: 1, UnitPrice: toy.Price},
		},
		TotalAmount: 5500,
		SaleDate:    "2026-08-28",
	}
	conf, err := svc.Checkout(ctx, req, "")
	require.NoError(t, err)

	sale, err := store.GetSaleWithItems(ctx, conf.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "Cat Food", sale.Items[0].ProductName)
	assert.Equal(t, "Mouse Toy", sale.Items[1].ProductName)

	foodAfter, _ := store.GetProduct(ctx, food.ID)
	toyAfter, _ := store.GetProduct(ctx, toy.ID)
	assert.Equal(t, 8, foodAfter.Stock)
	assert.Equal(t, 3, toyAfter.Stock)
}

func TestCheckout_WalkIn_NoConsumptionRecord(t *testing.T) {
	// GIVEN: A walk-in checkout (no customer ID)
	// WHEN: It succeeds
	// THEN: The sale has no customer link and no consumption record exists

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Leash", 1500, 3)

	conf, err := svc.Checkout(ctx, oneLineCheckout(p, 1), "")
	require.NoError(t, err)

	sale, err := store.GetSaleWithItems(ctx, conf.SaleID)
	require.NoError(t, err)
	assert.Empty(t, sale.CustomerID)
	assert.False(t, sale.PaidWithBalance)
}

func TestCheckout_WithCustomer_CreatesConsumptionRecord(t *testing.T) {
	// GIVEN: A checkout tied to a customer
	// WHEN: It succeeds
	// THEN: One consumption record linked to the sale exists

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Shampoo", 800, 5)
	c := seedCustomer(t, store, "Alice", 0)

	req := oneLineCheckout(p, 2)
	req.CustomerID = c.ID
	req.CustomerName = c.Name

	conf, err := svc.Checkout(ctx, req, "")
	require.NoError(t, err)

	records, err := store.ListConsumptionRecords(ctx, c.ID, retail.DateRange{}, retail.Page{})
	require.NoError(t, err)
	require.Len(t, records.Items, 1)
	assert.Equal(t, conf.SaleID, records.Items[0].SaleID)
	assert.Equal(t, retail.Cents(1600), records.Items[0].Amount)
}

// =============================================================================
// STOCK GUARD
// =============================================================================

func TestCheckout_InsufficientStock_Rejected(t *testing.T) {
	// GIVEN: Product with stock 2
	// WHEN: Checkout requests quantity 3
	// THEN: It fails with InsufficientStockError and nothing persists

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Dog Food", 1000, 2)

	_, err := svc.Checkout(ctx, oneLineCheckout(p, 3), "")
	require.Error(t, err)

	var stockErr *retail.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)
	assert.ErrorIs(t, err, retail.ErrInsufficientStock)

	after, _ := store.GetProduct(ctx, p.ID)
	assert.Equal(t, 2, after.Stock, "stock must be unchanged")

	sales, err := store.ListSales(ctx, retail.DateRange{}, retail.Page{})
	require.NoError(t, err)
	assert.Zero(t, sales.Total, "no sale record may exist")
}

func TestCheckout_SecondLineFails_FirstLineRolledBack(t *testing.T) {
	// GIVEN: Two products, the second with too little stock
	// WHEN: A two-line checkout fails on the second line
	// THEN: The first product's stock is untouched and no rows persist

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	ok := seedProduct(t, store, "Collar", 900, 10)
	scarce := seedProduct(t, store, "Rare Treat", 3000, 1)

	req := retail.CheckoutRequest{
		CustomerName: "Walk-in",
		Items: []retail.CheckoutLine{
			{ProductID: ok.ID, Quantity: 5, UnitPrice: ok.Price},
			{ProductID: scarce.ID, Quantity: 2, UnitPrice: scarce.Price},
		},
		TotalAmount: 10500,
		SaleDate:    "2026-08-28",
	}
	_, err := svc.Checkout(ctx, req, "")
	require.ErrorIs(t, err, retail.ErrInsufficientStock)

	okAfter, _ := store.GetProduct(ctx, ok.ID)
	scarceAfter, _ := store.GetProduct(ctx, scarce.ID)
	assert.Equal(t, 10, okAfter.Stock)
	assert.Equal(t, 1, scarceAfter.Stock)

	sales, _ := store.ListSales(ctx, retail.DateRange{}, retail.Page{})
	assert.Zero(t, sales.Total)
}

func TestCheckout_UnknownProduct_Rejected(t *testing.T) {
	// GIVEN: A checkout referencing a product that does not exist
	// WHEN: Submitted
	// THEN: It fails with ErrProductNotFound

	svc, _ := newTestCheckout(t)

	req := retail.CheckoutRequest{
		CustomerName: "Walk-in",
		Items:        []retail.CheckoutLine{{ProductID: "missing", Quantity: 1, UnitPrice: 100}},
		TotalAmount:  100,
		SaleDate:     "2026-08-28",
	}
	_, err := svc.Checkout(context.Background(), req, "")
	assert.ErrorIs(t, err, retail.ErrProductNotFound)
}

// =============================================================================
// BALANCE PAYMENT
// =============================================================================

func TestCheckout_PayWithBalance_ExactAmount(t *testing.T) {
	// GIVEN: Customer with balance 500
	// WHEN: Checkout with useBalance=true and total 500 succeeds
	// THEN: Balance becomes 0 with one DEDUCT entry before=500 after=0

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Brush", 500, 5)
	c := seedCustomer(t, store, "Bob", 500)

	req := oneLineCheckout(p, 1)
	req.CustomerID = c.ID
	req.CustomerName = c.Name
	req.UseBalance = true

	conf, err := svc.Checkout(ctx, req, "op-7")
	require.NoError(t, err)

	after, err := store.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, retail.Cents(0), after.Balance)

	sale, _ := store.GetSaleWithItems(ctx, conf.SaleID)
	assert.True(t, sale.PaidWithBalance)

	history, err := store.BalanceHistory(ctx, c.ID, retail.Page{})
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	entry := history.Items[0]
	assert.Equal(t, retail.BalanceDeduct, entry.Kind)
	assert.Equal(t, retail.Cents(500), entry.Amount)
	assert.Equal(t, retail.Cents(500), entry.BalanceBefore)
	assert.Equal(t, retail.Cents(0), entry.BalanceAfter)
	assert.Equal(t, "op-7", entry.OperatorID)
}

func TestCheckout_InsufficientBalance_NothingPersists(t *testing.T) {
	// GIVEN: Customer with balance 0
	// WHEN: Checkout with useBalance=true and total 100
	// THEN: It fails with InsufficientBalanceError; stock is untouched
	//       even though the product validation had already passed

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Brush", 100, 5)
	c := seedCustomer(t, store, "Bob", 0)

	req := oneLineCheckout(p, 1)
	req.CustomerID = c.ID
	req.CustomerName = c.Name
	req.UseBalance = true

	_, err := svc.Checkout(ctx, req, "")
	require.Error(t, err)

	var balErr *retail.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, retail.Cents(0), balErr.Available)
	assert.Equal(t, retail.Cents(100), balErr.Required)

	after, _ := store.GetProduct(ctx, p.ID)
	assert.Equal(t, 5, after.Stock, "stock deduction must be rolled back")

	sales, _ := store.ListSales(ctx, retail.DateRange{}, retail.Page{})
	assert.Zero(t, sales.Total)

	history, _ := store.BalanceHistory(ctx, c.ID, retail.Page{})
	assert.Empty(t, history.Items)
}

func TestCheckout_UseBalanceWithoutCustomer_Ignored(t *testing.T) {
	// GIVEN: A walk-in checkout with useBalance set
	// WHEN: Submitted
	// THEN: It succeeds as a plain sale; the flag is meaningless without
	//       a customer

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Bowl", 700, 3)

	req := oneLineCheckout(p, 1)
	req.UseBalance = true

	conf, err := svc.Checkout(ctx, req, "")
	require.NoError(t, err)

	sale, _ := store.GetSaleWithItems(ctx, conf.SaleID)
	assert.False(t, sale.PaidWithBalance)
}

// =============================================================================
// ACCOUNTING POSTING
// =============================================================================

func TestCheckout_RecordToAccounting_PostsOneIncomeEntry(t *testing.T) {
	// GIVEN: A checkout with recordToAccounting=true
	// WHEN: It succeeds
	// THEN: Exactly one income entry exists, amount equals the sale
	//       total, and the sale references it

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Dog Food", 1250, 5)

	req := oneLineCheckout(p, 2)
	req.CustomerName = "Carol"
	req.RecordToAccounting = true

	conf, err := svc.Checkout(ctx, req, "")
	require.NoError(t, err)

	sale, err := store.GetSaleWithItems(ctx, conf.SaleID)
	require.NoError(t, err)
	assert.True(t, sale.PostedToAccounting)
	require.NotEmpty(t, sale.AccountingEntryID)

	entry, err := store.GetAccountingEntry(ctx, sale.AccountingEntryID)
	require.NoError(t, err)
	assert.Equal(t, retail.AccountingIncome, entry.Kind)
	assert.Equal(t, retail.Cents(2500), entry.Amount)
	assert.Equal(t, "Carol - Dog Food 12.50x2 = 25.00", entry.Description)

	entries, err := store.ListAccountingEntries(ctx, retail.AccountingFilter{}, retail.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, entries.Total)
}

func TestCheckout_WithoutRecordToAccounting_NoEntry(t *testing.T) {
	// GIVEN: A checkout with recordToAccounting=false
	// WHEN: It succeeds
	// THEN: No accounting entry is created; posting is caller-controlled

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Dog Food", 1000, 5)

	conf, err := svc.Checkout(ctx, oneLineCheckout(p, 1), "")
	require.NoError(t, err)

	sale, _ := store.GetSaleWithItems(ctx, conf.SaleID)
	assert.False(t, sale.PostedToAccounting)
	assert.Empty(t, sale.AccountingEntryID)

	entries, _ := store.ListAccountingEntries(ctx, retail.AccountingFilter{}, retail.Page{})
	assert.Zero(t, entries.Total)
}

func TestCheckout_AccountingDescription_MultiLine(t *testing.T) {
	// GIVEN: A two-line checkout posted to accounting
	// WHEN: It succeeds
	// THEN: The description lists every line joined by " + "

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	food := seedProduct(t, store, "Cat Food", 2000, 5)
	toy := seedProduct(t, store, "Mouse Toy", 300, 5)

	req := retail.CheckoutRequest{
		CustomerName: "Dave",
		Items: []retail.CheckoutLine{
			{ProductID: food.ID, Quantity: 1, UnitPrice: food.Price},
			{ProductID: toy.ID, Quantity: 3, UnitPrice: toy.Price},
		},
		TotalAmount:        2900,
		SaleDate:           "2026-08-28",
		RecordToAccounting: true,
	}
	conf, err := svc.Checkout(ctx, req, "")
	require.NoError(t, err)

	sale, _ := store.GetSaleWithItems(ctx, conf.SaleID)
	entry, err := store.GetAccountingEntry(ctx, sale.AccountingEntryID)
	require.NoError(t, err)
	assert.Equal(t, "Dave - Cat Food 20.00x1 + Mouse Toy 3.00x3 = 29.00", entry.Description)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestCheckout_Validation(t *testing.T) {
	svc, store := newTestCheckout(t)
	ctx := context.Background()
	p := seedProduct(t, store, "Bowl", 700, 3)

	cases := []struct {
		name   string
		mutate func(*retail.CheckoutRequest)
	}{
		{"missing customer name", func(r *retail.CheckoutRequest) { r.CustomerName = " " }},
		{"empty items", func(r *retail.CheckoutRequest) { r.Items = nil }},
		{"zero quantity", func(r *retail.CheckoutRequest) { r.Items[0].Quantity = 0 }},
		{"negative quantity", func(r *retail.CheckoutRequest) { r.Items[0].Quantity = -1 }},
		{"negative price", func(r *retail.CheckoutRequest) { r.Items[0].UnitPrice = -1 }},
		{"missing product id", func(r *retail.CheckoutRequest) { r.Items[0].ProductID = "" }},
		{"negative total", func(r *retail.CheckoutRequest) { r.TotalAmount = -1 }},
		{"missing sale date", func(r *retail.CheckoutRequest) { r.SaleDate = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := oneLineCheckout(p, 1)
			tc.mutate(&req)
			_, err := svc.Checkout(ctx, req, "")
			assert.ErrorIs(t, err, retail.ErrValidation)
		})
	}

	// Nothing leaked out of the failed attempts.
	sales, _ := store.ListSales(ctx, retail.DateRange{}, retail.Page{})
	assert.Zero(t, sales.Total)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestCheckout_Concurrent_NoOverselling(t *testing.T) {
	// GIVEN: Product with stock 5
	// WHEN: 20 concurrent checkouts each request quantity 1
	// THEN: Exactly 5 succeed; the rest fail with insufficient stock;
	//       final stock is 0 and exactly 5 sales exist

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Limited Treat", 1000, 5)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := oneLineCheckout(p, 1)
			req.CustomerName = fmt.Sprintf("Shopper %d", i)
			_, errs[i] = svc.Checkout(ctx, req, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, retail.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 5, succeeded)

	after, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Stock)

	sales, err := store.ListSales(ctx, retail.DateRange{}, retail.Page{Size: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 5, sales.Total)
}

func TestCheckout_Concurrent_BalanceNeverNegative(t *testing.T) {
	// GIVEN: Customer with balance 3000 and a cheap product
	// WHEN: 10 concurrent balance-paid checkouts of 1000 each race
	// THEN: Exactly 3 succeed and the final balance is 0, never negative

	svc, store := newTestCheckout(t)
	ctx := context.Background()

	p := seedProduct(t, store, "Treat", 1000, 100)
	c := seedCustomer(t, store, "Eve", 3000)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := oneLineCheckout(p, 1)
			req.CustomerID = c.ID
			req.CustomerName = c.Name
			req.UseBalance = true
			_, errs[i] = svc.Checkout(ctx, req, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, retail.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 3, succeeded)

	after, err := store.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, retail.Cents(0), after.Balance)

	// The ledger chain stays consistent under the race.
	history, err := store.BalanceHistory(ctx, c.ID, retail.Page{Size: 100})
	require.NoError(t, err)
	require.Len(t, history.Items, 3)
	for _, e := range history.Items {
		assert.Equal(t, e.BalanceBefore-e.Amount, e.BalanceAfter)
	}
}
