package engine

import (
	"context"
	"fmt"
	"time"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
	"superpos/backend/internal/xid"
)

// AddPurchaseInvoice records a supplier invoice: stock goes up, the product's
// recorded purchase price is overwritten with the invoice cost (last-purchase
// costing, not weighted average), the supplier is owed total minus paid, and
// any paid amount leaves the drawer.
func (s *Service) AddPurchaseInvoice(ctx context.Context, req domain.PurchaseRequest) (domain.PurchaseInvoice, error) {
	var invoice domain.PurchaseInvoice
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		next, inv, err := applyPurchase(snap, req, s.now())
		if err != nil {
			return domain.Snapshot{}, err
		}
		invoice = inv
		return next, nil
	})
	return invoice, err
}

func applyPurchase(snap domain.Snapshot, req domain.PurchaseRequest, now time.Time) (domain.Snapshot, domain.PurchaseInvoice, error) {
	if len(req.Items) == 0 {
		return domain.Snapshot{}, domain.PurchaseInvoice{}, fmt.Errorf("%w: invoice needs at least one item", store.ErrValidation)
	}
	if req.PaidAmount < 0 {
		return domain.Snapshot{}, domain.PurchaseInvoice{}, fmt.Errorf("%w: paid amount must not be negative", store.ErrValidation)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.CostPrice < 0 {
			return domain.Snapshot{}, domain.PurchaseInvoice{}, fmt.Errorf("%w: bad quantity or cost for product %s", store.ErrValidation, item.ProductID)
		}
	}

	next := snap.Clone()

	supplier, err := findSupplier(&next, req.SupplierID)
	if err != nil {
		return domain.Snapshot{}, domain.PurchaseInvoice{}, err
	}

	total := 0.0
	for _, item := range req.Items {
		if _, err := findProduct(&next, item.ProductID); err != nil {
			return domain.Snapshot{}, domain.PurchaseInvoice{}, err
		}
		total += item.Quantity * item.CostPrice
	}

	invoice := domain.PurchaseInvoice{
		ID:          xid.New("pi"),
		SupplierID:  req.SupplierID,
		TotalAmount: total,
		PaidAmount:  req.PaidAmount,
		Date:        now,
		Items:       append([]domain.PurchaseInvoiceItem(nil), req.Items...),
	}
	next.PurchaseInvoices = append(next.PurchaseInvoices, invoice)

	supplier.Balance += total - req.PaidAmount

	for _, item := range req.Items {
		product, _ := findProduct(&next, item.ProductID)
		product.StockQuantity += item.Quantity
		product.PurchasePrice = item.CostPrice
	}

	if req.PaidAmount > 0 {
		next.CashLedger = append(next.CashLedger, domain.CashLedgerEntry{
			ID:           xid.New("cl"),
			MovementType: domain.MovementPurchaseOut,
			Amount:       -req.PaidAmount,
			RefID:        req.SupplierID,
			Date:         now,
		})
	}

	return next, invoice, nil
}

// PaySupplier settles part of a supplier balance in cash. Overpayment is
// allowed and drives the balance negative.
func (s *Service) PaySupplier(ctx context.Context, supplierID string, amount float64) error {
	return s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if amount <= 0 {
			return domain.Snapshot{}, fmt.Errorf("%w: payment amount must be positive", store.ErrValidation)
		}
		next := snap.Clone()
		supplier, err := findSupplier(&next, supplierID)
		if err != nil {
			return domain.Snapshot{}, err
		}
		supplier.Balance -= amount
		next.CashLedger = append(next.CashLedger, domain.CashLedgerEntry{
			ID:           xid.New("cl"),
			MovementType: domain.MovementSupplierPay,
			Amount:       -amount,
			RefID:        supplierID,
			Date:         s.now(),
		})
		return next, nil
	})
}

// PurchaseInvoices lists all recorded supplier invoices.
func (s *Service) PurchaseInvoices(ctx context.Context) ([]domain.PurchaseInvoice, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.PurchaseInvoices, nil
}
