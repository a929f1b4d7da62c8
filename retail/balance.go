/*
balance.go - Customer balance ledger service

PURPOSE:
  Recharge, deduct, and refund operations on a customer's stored
  balance, each paired with an immutable history entry snapshotting the
  balance before and after. The balance row and its ledger entry are
  written inside one WithTx scope so the chain can never skip a step.

INVARIANTS:
  - Amounts are strictly positive (ErrInvalidAmount otherwise).
  - Balance never goes negative: a deduct that would violate this fails
    with InsufficientBalanceError and leaves the balance unchanged.
  - Entries are append-only; corrections are REFUND entries, not edits.
*/
package retail

import "context"

// BalanceService mutates customer balances and their history.
type BalanceService struct {
	store TxStore
}

// NewBalanceService creates a balance ledger service on the given store.
func NewBalanceService(store TxStore) *BalanceService {
	return &BalanceService{store: store}
}

// Recharge adds amount to the customer's balance and appends a RECHARGE
// entry. Returns the customer with the updated balance.
func (s *BalanceService) Recharge(ctx context.Context, customerID string, amount Cents, description, operatorID string) (*Customer, error) {
	return s.apply(ctx, customerID, BalanceRecharge, amount, description, operatorID)
}

// Deduct removes amount from the customer's balance and appends a
// DEDUCT entry. Fails with InsufficientBalanceError if the balance
// cannot cover the amount.
func (s *BalanceService) Deduct(ctx context.Context, customerID string, amount Cents, description, operatorID string) (*Customer, error) {
	return s.apply(ctx, customerID, BalanceDeduct, amount, description, operatorID)
}

// Refund returns amount to the customer's balance and appends a REFUND
// entry.
func (s *BalanceService) Refund(ctx context.Context, customerID string, amount Cents, description, operatorID string) (*Customer, error) {
	return s.apply(ctx, customerID, BalanceRefund, amount, description, operatorID)
}

// History returns the customer's balance entries newest-first.
func (s *BalanceService) History(ctx context.Context, customerID string, page Page) (*Paged[BalanceEntry], error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.BalanceHistory(ctx, customerID, page)
}

func (s *BalanceService) apply(ctx context.Context, customerID string, kind BalanceEntryKind, amount Cents, description, operatorID string) (*Customer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var updated *Customer
	err := s.store.WithTx(ctx, func(tx Store) error {
		customer, err := tx.GetCustomer(ctx, customerID)
		if err != nil {
			return err
		}

		before := customer.Balance
		if kind == BalanceDeduct && before < amount {
			return &InsufficientBalanceError{
				CustomerID: customerID,
				Available:  before,
				Required:   amount,
			}
		}
		after := before + Cents(kind.Sign())*amount

		if err := tx.UpdateBalance(ctx, customerID, after); err != nil {
			return err
		}
		if err := tx.AppendBalanceEntry(ctx, &BalanceEntry{
			CustomerID:    customerID,
			Kind:          kind,
			Amount:        amount,
			BalanceBefore: before,
			BalanceAfter:  after,
			Description:   description,
			OperatorID:    operatorID,
		}); err != nil {
			return err
		}

		customer.Balance = after
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
