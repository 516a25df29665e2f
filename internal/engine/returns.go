package engine

import (
	"context"
	"fmt"
	"time"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
	"superpos/backend/internal/xid"
)

// CreateReturn reverses a subset of a prior sale's line items: restocks the
// returned quantity and refunds unit_sell_price x qty either as drawer cash or
// as a reduction of the customer's debt. The refund is not reduced by any
// sale-level discount; the recorded unit sell price already reflects line
// discounts. Cumulative returns across calls are not tracked.
func (s *Service) CreateReturn(ctx context.Context, req domain.ReturnRequest) (domain.ReturnResult, error) {
	var result domain.ReturnResult
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		next, res, err := applyReturn(snap, req, s.now())
		if err != nil {
			return domain.Snapshot{}, err
		}
		result = res
		return next, nil
	})
	return result, err
}

func applyReturn(snap domain.Snapshot, req domain.ReturnRequest, now time.Time) (domain.Snapshot, domain.ReturnResult, error) {
	if req.Method != domain.RefundCash && req.Method != domain.RefundReduceDue {
		return domain.Snapshot{}, domain.ReturnResult{}, fmt.Errorf("%w: unknown refund method %q", store.ErrValidation, req.Method)
	}
	if len(req.Items) == 0 {
		return domain.Snapshot{}, domain.ReturnResult{}, fmt.Errorf("%w: return needs at least one item", store.ErrValidation)
	}

	next := snap.Clone()

	sale, _, err := findSale(&next, req.SaleID)
	if err != nil {
		return domain.Snapshot{}, domain.ReturnResult{}, err
	}
	if req.Method == domain.RefundReduceDue && sale.CustomerID == "" {
		return domain.Snapshot{}, domain.ReturnResult{}, fmt.Errorf("%w: reduce_due requires a sale with a customer", store.ErrValidation)
	}

	soldBySale := saleItemsOf(&next, req.SaleID)

	refundTotal := 0.0
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return domain.Snapshot{}, domain.ReturnResult{}, fmt.Errorf("%w: return quantity must be positive", store.ErrValidation)
		}

		var sold *domain.SaleItem
		for i := range soldBySale {
			if soldBySale[i].ProductID == line.ProductID {
				sold = &soldBySale[i]
				break
			}
		}
		if sold == nil {
			return domain.Snapshot{}, domain.ReturnResult{}, fmt.Errorf("%w: product %s is not on sale %s", store.ErrNotFound, line.ProductID, req.SaleID)
		}
		if line.Quantity > sold.Quantity {
			return domain.Snapshot{}, domain.ReturnResult{}, fmt.Errorf("%w: returning %.3f of %.3f sold", store.ErrValidation, line.Quantity, sold.Quantity)
		}

		refundValue := sold.UnitSellPrice * line.Quantity
		refundTotal += refundValue

		if product, err := findProduct(&next, line.ProductID); err == nil {
			product.StockQuantity += line.Quantity
		}

		switch req.Method {
		case domain.RefundCash:
			next.CashLedger = append(next.CashLedger, domain.CashLedgerEntry{
				ID:           xid.New("cl"),
				MovementType: domain.MovementReturnCashOut,
				Amount:       -refundValue,
				RefID:        req.SaleID,
				Date:         now,
			})
		case domain.RefundReduceDue:
			customer, err := findCustomer(&next, sale.CustomerID)
			if err != nil {
				return domain.Snapshot{}, domain.ReturnResult{}, err
			}
			customer.Balance -= refundValue
		}
	}

	return next, domain.ReturnResult{
		SaleID:       req.SaleID,
		RefundAmount: refundTotal,
		Method:       req.Method,
		Items:        req.Items,
	}, nil
}
