package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
	"superpos/backend/internal/xid"
)

// startingInvoiceNo is assigned to the first sale of a fresh store; every
// later sale gets max(existing)+1.
const startingInvoiceNo = 1001

// pointsPerUnit is the loyalty exchange rate in both directions: 10 points
// redeem for 1 currency unit, and 10 currency units spent earn 1 point.
const pointsPerUnit = 10

// CreateSale prices the cart, applies discount and redeemed points, decrements
// stock, posts the customer balance/points deltas, and appends the cash-in
// ledger entry, all as one snapshot transition.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleRequest) (domain.Sale, error) {
	actor, _ := ActorFromContext(ctx)

	var sale domain.Sale
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		next, created, err := applySale(snap, req, actor.Name, s.now())
		if err != nil {
			return domain.Snapshot{}, err
		}
		sale = created
		return next, nil
	})
	return sale, err
}

func applySale(snap domain.Snapshot, req domain.SaleRequest, cashierName string, now time.Time) (domain.Snapshot, domain.Sale, error) {
	if len(req.Items) == 0 {
		return domain.Snapshot{}, domain.Sale{}, fmt.Errorf("%w: sale needs at least one item", store.ErrValidation)
	}
	if req.Discount < 0 || req.PaidNow < 0 || req.PointsRedeemed < 0 {
		return domain.Snapshot{}, domain.Sale{}, fmt.Errorf("%w: discount, paid amount and points must not be negative", store.ErrValidation)
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 || line.UnitPrice < 0 {
			return domain.Snapshot{}, domain.Sale{}, fmt.Errorf("%w: bad quantity or price for product %s", store.ErrValidation, line.ProductID)
		}
	}
	if req.PointsRedeemed > 0 && req.CustomerID == "" {
		return domain.Snapshot{}, domain.Sale{}, fmt.Errorf("%w: points redemption requires a customer", store.ErrValidation)
	}

	next := snap.Clone()

	var customer *domain.Customer
	if req.CustomerID != "" {
		var err error
		customer, err = findCustomer(&next, req.CustomerID)
		if err != nil {
			return domain.Snapshot{}, domain.Sale{}, err
		}
		if req.PointsRedeemed > customer.Points {
			return domain.Snapshot{}, domain.Sale{}, fmt.Errorf("%w: customer holds %d points, %d requested", store.ErrValidation, customer.Points, req.PointsRedeemed)
		}
	}

	subtotal := 0.0
	for _, line := range req.Items {
		if _, err := findProduct(&next, line.ProductID); err != nil {
			return domain.Snapshot{}, domain.Sale{}, err
		}
		subtotal += line.UnitPrice * line.Quantity
	}

	pointsValue := float64(req.PointsRedeemed) / pointsPerUnit
	total := math.Max(0, subtotal-req.Discount-pointsValue)
	remainingDue := math.Max(0, total-req.PaidNow)
	pointsEarned := int(math.Floor(total / pointsPerUnit))

	invoiceNo := int64(startingInvoiceNo)
	for _, existing := range next.Sales {
		if existing.InvoiceNo >= invoiceNo {
			invoiceNo = existing.InvoiceNo + 1
		}
	}

	sale := domain.Sale{
		ID:             xid.New("sale"),
		InvoiceNo:      invoiceNo,
		CustomerID:     req.CustomerID,
		TotalAmount:    total,
		DiscountAmount: req.Discount,
		PaidNow:        req.PaidNow,
		RemainingDue:   remainingDue,
		PointsRedeemed: req.PointsRedeemed,
		PointsEarned:   pointsEarned,
		CashierName:    cashierName,
		CreatedAt:      now,
	}
	next.Sales = append(next.Sales, sale)

	for _, line := range req.Items {
		product, _ := findProduct(&next, line.ProductID)
		lineTotal := line.UnitPrice * line.Quantity
		next.SaleItems = append(next.SaleItems, domain.SaleItem{
			ID:            xid.New("si"),
			SaleID:        sale.ID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			Quantity:      line.Quantity,
			UnitSellPrice: line.UnitPrice,
			UnitCostPrice: product.PurchasePrice,
			LineTotal:     lineTotal,
			LineProfit:    lineTotal - product.PurchasePrice*line.Quantity,
		})
		// Stock is allowed to go negative; a later inventory audit is the
		// sanctioned correction path.
		product.StockQuantity -= line.Quantity
	}

	if customer != nil {
		customer.Balance += remainingDue
		customer.Points -= req.PointsRedeemed
		customer.Points += pointsEarned
	}

	if req.PaidNow > 0 {
		next.CashLedger = append(next.CashLedger, domain.CashLedgerEntry{
			ID:           xid.New("cl"),
			MovementType: domain.MovementSaleCashIn,
			Amount:       req.PaidNow,
			RefID:        sale.ID,
			Date:         now,
		})
	}

	return next, sale, nil
}

// UndoSale fully reverses a sale: restocks every sold quantity, unwinds the
// customer balance and points exactly as applied at sale time, and removes
// the sale, its items, and its ledger entries. The invoice sequence is not
// rolled back.
func (s *Service) UndoSale(ctx context.Context, saleID string) error {
	return s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		return applyUndoSale(snap, saleID)
	})
}

func applyUndoSale(snap domain.Snapshot, saleID string) (domain.Snapshot, error) {
	next := snap.Clone()

	sale, idx, err := findSale(&next, saleID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	for _, item := range saleItemsOf(&next, saleID) {
		if product, err := findProduct(&next, item.ProductID); err == nil {
			product.StockQuantity += item.Quantity
		}
	}

	if sale.CustomerID != "" {
		if customer, err := findCustomer(&next, sale.CustomerID); err == nil {
			customer.Balance -= sale.RemainingDue
			customer.Points -= sale.PointsEarned
			customer.Points += sale.PointsRedeemed
		}
	}

	next.Sales = append(next.Sales[:idx], next.Sales[idx+1:]...)

	kept := next.SaleItems[:0]
	for _, item := range next.SaleItems {
		if item.SaleID != saleID {
			kept = append(kept, item)
		}
	}
	next.SaleItems = kept

	keptLedger := next.CashLedger[:0]
	for _, entry := range next.CashLedger {
		if entry.RefID != saleID {
			keptLedger = append(keptLedger, entry)
		}
	}
	next.CashLedger = keptLedger

	return next, nil
}

// Sales returns all sales, newest last.
func (s *Service) Sales(ctx context.Context) ([]domain.Sale, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Sales, nil
}

// SaleItems returns the line items of one sale.
func (s *Service) SaleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	if _, _, err := findSale(&snap, saleID); err != nil {
		return nil, err
	}
	return saleItemsOf(&snap, saleID), nil
}
