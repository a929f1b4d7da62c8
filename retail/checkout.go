/*
checkout.go - Sale transaction orchestrator

PURPOSE:
  Converts one checkout request into consistent, durable updates across
  four independent records: product stock, the sale and its line items,
  the optional customer balance ledger, and the optional accounting
  ledger. All writes for one checkout happen inside a single WithTx
  scope: they commit together or not at all.

WRITE SEQUENCE:
  1. Resolve and validate every product (optimistic stock pre-check)
  2. Validate balance eligibility when paying with stored balance
  3. Create the sale header
  4. Create each line item and conditionally deduct its stock
     (the authoritative guard; catches races the pre-check missed)
  5. Create a consumption record when a customer is attached
  6. Deduct the customer balance and append a DEDUCT ledger entry
     (balance is re-read here, not trusted from step 2)
  7. Post one INCOME accounting entry and attach it to the sale
  8. Return the confirmation

ORDERING:
  Stock is deducted before balance so the "can this sale physically be
  fulfilled" check sits closest to the authoritative write. Accounting
  posting runs last: it is informational and needs the finalized
  line-item data.

CONCURRENCY:
  No in-process locks. Two checkouts racing on the same product cannot
  both succeed past combined stock: the second conditional deduct sees
  the reduced stock and fails, rolling back its whole checkout. A failed
  checkout is never retried here; the caller resubmits if appropriate.

SEE ALSO:
  - store.go: TxStore / conditional-write contracts
  - balance.go: Standalone recharge/deduct outside checkouts
*/
package retail

import (
	"context"
	"fmt"
	"strings"
)

// CheckoutService coordinates the multi-entity write sequence for sales.
type CheckoutService struct {
	store TxStore
}

// NewCheckoutService creates a checkout orchestrator on the given store.
func NewCheckoutService(store TxStore) *CheckoutService {
	return &CheckoutService{store: store}
}

// consumptionLabel is the item label recorded for checkout-driven
// consumption records and balance deductions.
const consumptionLabel = "merchandise purchase"

// Checkout executes one sale as a single atomic unit of work.
// On any error, no sale, line item, stock change, balance change,
// ledger entry, consumption record, or accounting entry persists.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest, operatorID string) (*SaleConfirmation, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	var conf *SaleConfirmation
	err := s.store.WithTx(ctx, func(tx Store) error {
		// Step 1: resolve products and pre-check stock.
		products, err := resolveProducts(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		// Step 2: balance eligibility pre-check.
		payWithBalance := req.UseBalance && req.CustomerID != ""
		if payWithBalance {
			customer, err := tx.GetCustomer(ctx, req.CustomerID)
			if err != nil {
				return err
			}
			if customer.Balance < req.TotalAmount {
				return &InsufficientBalanceError{
					CustomerID: customer.ID,
					Available:  customer.Balance,
					Required:   req.TotalAmount,
				}
			}
		}

		// Step 3: sale header.
		sale := &Sale{
			CustomerID:      req.CustomerID,
			CustomerName:    req.CustomerName,
			TotalAmount:     req.TotalAmount,
			SaleDate:        req.SaleDate,
			PaidWithBalance: payWithBalance,
		}
		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}

		// Step 4: line items + authoritative stock deduction.
		if err := createItemsAndDeductStock(ctx, tx, sale.ID, req.Items, products); err != nil {
			return err
		}

		// Step 5: consumption record for the customer's history.
		if req.CustomerID != "" {
			rec := &ConsumptionRecord{
				CustomerID: req.CustomerID,
				SaleID:     sale.ID,
				Date:       req.SaleDate,
				Item:       consumptionLabel,
				Amount:     req.TotalAmount,
			}
			if err := tx.InsertConsumptionRecord(ctx, rec); err != nil {
				return err
			}
		}

		// Step 6: balance payment.
		if payWithBalance {
			if err := deductBalanceForSale(ctx, tx, req.CustomerID, req.TotalAmount, operatorID); err != nil {
				return err
			}
		}

		// Step 7: accounting posting (caller-controlled).
		if req.RecordToAccounting {
			if err := postToAccounting(ctx, tx, sale.ID, req, products); err != nil {
				return err
			}
		}

		conf = &SaleConfirmation{
			SaleID:      sale.ID,
			TotalAmount: sale.TotalAmount,
			SaleDate:    sale.SaleDate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// validateCheckout rejects malformed requests before any store access.
func validateCheckout(req CheckoutRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Message: "required"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Message: "at least one line required"}
	}
	for i, line := range req.Items {
		if line.ProductID == "" {
			return &ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "required"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be positive"}
		}
		if line.UnitPrice < 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].unit_price", i), Message: "must not be negative"}
		}
	}
	if req.TotalAmount < 0 {
		return &ValidationError{Field: "total_amount", Message: "must not be negative"}
	}
	if req.SaleDate == "" {
		return &ValidationError{Field: "sale_date", Message: "required"}
	}
	return nil
}

// resolveProducts looks up every line's product and pre-checks stock.
// This is optimistic: the conditional deduct in step 4 is authoritative.
func resolveProducts(ctx context.Context, tx Store, items []CheckoutLine) ([]*Product, error) {
	products := make([]*Product, 0, len(items))
	for _, line := range items {
		product, err := tx.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   line.Quantity,
			}
		}
		products = append(products, product)
	}
	return products, nil
}

// createItemsAndDeductStock writes one line item per request line and
// conditionally deducts its stock. A zero-row deduct means a concurrent
// checkout won the race since the pre-check; the whole unit aborts.
func createItemsAndDeductStock(ctx context.Context, tx Store, saleID string, items []CheckoutLine, products []*Product) error {
	for i, line := range items {
		product := products[i]
		item := &SaleLineItem{
			SaleID:      saleID,
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.UnitPrice * Cents(line.Quantity),
		}
		if err := tx.InsertSaleItem(ctx, item); err != nil {
			return err
		}

		rows, err := tx.DeductStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return err
		}
		if rows == 0 {
			return &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   line.Quantity,
			}
		}
	}
	return nil
}

// deductBalanceForSale re-reads the balance inside the transaction, so a
// concurrent change since the step-2 pre-check is caught here.
func deductBalanceForSale(ctx context.Context, tx Store, customerID string, amount Cents, operatorID string) error {
	customer, err := tx.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if customer.Balance < amount {
		return &InsufficientBalanceError{
			CustomerID: customer.ID,
			Available:  customer.Balance,
			Required:   amount,
		}
	}

	before := customer.Balance
	after := before - amount
	if err := tx.UpdateBalance(ctx, customerID, after); err != nil {
		return err
	}

	return tx.AppendBalanceEntry(ctx, &BalanceEntry{
		CustomerID:    customerID,
		Kind:          BalanceDeduct,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   consumptionLabel,
		OperatorID:    operatorID,
	})
}

// postToAccounting creates the sale's single INCOME entry and attaches
// its reference to the sale header.
func postToAccounting(ctx context.Context, tx Store, saleID string, req CheckoutRequest, products []*Product) error {
	entry := &AccountingEntry{
		Kind:        AccountingIncome,
		Amount:      req.TotalAmount,
		Description: accountingDescription(req.CustomerName, req.Items, products, req.TotalAmount),
		Date:        req.SaleDate,
	}
	if err := tx.InsertAccountingEntry(ctx, entry); err != nil {
		return err
	}
	return tx.AttachAccountingEntry(ctx, saleID, entry.ID)
}

// accountingDescription builds the deterministic posting description:
// "{customer} - {product} {price}x{qty} + {product2} ... = {total}".
func accountingDescription(customerName string, items []CheckoutLine, products []*Product, total Cents) string {
	var b strings.Builder
	b.WriteString(customerName)
	b.WriteString(" - ")
	for i, line := range items {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%s %sx%d", products[i].Name, line.UnitPrice, line.Quantity)
	}
	fmt.Fprintf(&b, " = %s", total)
	return b.String()
}
