package engine

import (
	"context"
	"fmt"
	"math"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
	"superpos/backend/internal/xid"
)

// StartAudit opens a draft reconciliation session. The draft lives outside the
// snapshot document and survives restarts, but never appears in exports or
// sync payloads. Only one draft may exist at a time.
func (s *Service) StartAudit(ctx context.Context) (domain.InventoryAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.ReadAudit(ctx)
	if err != nil {
		return domain.InventoryAudit{}, err
	}
	if existing != nil {
		return domain.InventoryAudit{}, fmt.Errorf("%w: an audit session is already in progress", store.ErrInvalidState)
	}

	audit := domain.InventoryAudit{
		ID:     xid.New("audit"),
		Date:   s.now(),
		Items:  []domain.AuditItem{},
		Status: domain.AuditStatusDraft,
	}
	if err := s.store.WriteAudit(ctx, &audit); err != nil {
		return domain.InventoryAudit{}, err
	}
	return audit, nil
}

// AuditSession returns the current draft, or ErrInvalidState when none exists.
func (s *Service) AuditSession(ctx context.Context) (domain.InventoryAudit, error) {
	audit, err := s.store.ReadAudit(ctx)
	if err != nil {
		return domain.InventoryAudit{}, err
	}
	if audit == nil {
		return domain.InventoryAudit{}, fmt.Errorf("%w: no audit session in progress", store.ErrInvalidState)
	}
	return *audit, nil
}

// UpdateAuditItem records the physically counted quantity for one product.
// Expected stock is re-read from the live snapshot each time the item is
// touched, so refreshing an item picks up sales made mid-audit.
func (s *Service) UpdateAuditItem(ctx context.Context, productID string, actual float64) (domain.AuditItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if actual < 0 {
		return domain.AuditItem{}, fmt.Errorf("%w: counted quantity must not be negative", store.ErrValidation)
	}

	audit, err := s.store.ReadAudit(ctx)
	if err != nil {
		return domain.AuditItem{}, err
	}
	if audit == nil {
		return domain.AuditItem{}, fmt.Errorf("%w: no audit session in progress", store.ErrInvalidState)
	}

	snap, err := s.store.Read(ctx)
	if err != nil {
		return domain.AuditItem{}, err
	}
	product, err := findProduct(&snap, productID)
	if err != nil {
		return domain.AuditItem{}, err
	}

	difference := actual - product.StockQuantity
	item := domain.AuditItem{
		ProductID:   productID,
		ProductName: product.Name,
		Expected:    product.StockQuantity,
		Actual:      actual,
		Difference:  difference,
	}
	if difference < 0 {
		item.LossValue = math.Abs(difference) * product.PurchasePrice
	}

	replaced := false
	for i := range audit.Items {
		if audit.Items[i].ProductID == productID {
			audit.Items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		audit.Items = append(audit.Items, item)
	}

	if err := s.store.WriteAudit(ctx, audit); err != nil {
		return domain.AuditItem{}, err
	}
	return item, nil
}

// CommitAudit overwrites every touched product's recorded stock with the
// counted quantity and discards the draft. The shrinkage valuation is
// informational only; no expense or ledger entry is posted.
func (s *Service) CommitAudit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	audit, err := s.store.ReadAudit(ctx)
	if err != nil {
		return err
	}
	if audit == nil {
		return fmt.Errorf("%w: no audit session in progress", store.ErrInvalidState)
	}
	if len(audit.Items) == 0 {
		return fmt.Errorf("%w: cannot commit an empty audit", store.ErrValidation)
	}

	snap, err := s.store.Read(ctx)
	if err != nil {
		return err
	}
	next := snap.Clone()
	for _, item := range audit.Items {
		if product, err := findProduct(&next, item.ProductID); err == nil {
			product.StockQuantity = item.Actual
		}
	}

	if err := s.store.Write(ctx, next); err != nil {
		return err
	}
	return s.store.WriteAudit(ctx, nil)
}

// CancelAudit discards the draft without touching the snapshot.
func (s *Service) CancelAudit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	audit, err := s.store.ReadAudit(ctx)
	if err != nil {
		return err
	}
	if audit == nil {
		return fmt.Errorf("%w: no audit session in progress", store.ErrInvalidState)
	}
	return s.store.WriteAudit(ctx, nil)
}
