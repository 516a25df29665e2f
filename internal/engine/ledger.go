package engine

import (
	"context"
	"fmt"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
	"superpos/backend/internal/xid"
)

// AddExpense records an expense and the matching negative cash movement.
func (s *Service) AddExpense(ctx context.Context, req domain.ExpenseRequest) (domain.Expense, error) {
	var expense domain.Expense
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if req.Amount <= 0 {
			return domain.Snapshot{}, fmt.Errorf("%w: expense amount must be positive", store.ErrValidation)
		}
		if req.Category == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: expense category required", store.ErrValidation)
		}

		next := snap.Clone()
		expense = domain.Expense{
			ID:       xid.New("exp"),
			Category: req.Category,
			Amount:   req.Amount,
			Notes:    req.Notes,
			Date:     s.now(),
		}
		next.Expenses = append(next.Expenses, expense)
		next.CashLedger = append(next.CashLedger, domain.CashLedgerEntry{
			ID:           xid.New("cl"),
			MovementType: domain.MovementExpense,
			Amount:       -req.Amount,
			RefID:        expense.ID,
			Date:         expense.Date,
		})
		return next, nil
	})
	return expense, err
}

// PayCustomerDebt records a customer paying down their balance; the cash
// enters the drawer as a positive debt_payment movement. Overpayment is
// allowed and drives the balance negative.
func (s *Service) PayCustomerDebt(ctx context.Context, customerID string, amount float64) error {
	return s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if amount <= 0 {
			return domain.Snapshot{}, fmt.Errorf("%w: payment amount must be positive", store.ErrValidation)
		}
		next := snap.Clone()
		customer, err := findCustomer(&next, customerID)
		if err != nil {
			return domain.Snapshot{}, err
		}
		customer.Balance -= amount
		next.CashLedger = append(next.CashLedger, domain.CashLedgerEntry{
			ID:           xid.New("cl"),
			MovementType: domain.MovementDebtPayment,
			Amount:       amount,
			RefID:        customerID,
			Date:         s.now(),
		})
		return next, nil
	})
}

// CashLedger returns every recorded cash movement, oldest first.
func (s *Service) CashLedger(ctx context.Context) ([]domain.CashLedgerEntry, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.CashLedger, nil
}

// Expenses returns all recorded expenses.
func (s *Service) Expenses(ctx context.Context) ([]domain.Expense, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Expenses, nil
}
