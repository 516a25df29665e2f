// Package engine implements the ledger and inventory consistency processors.
// Every mutation is a pure function (snapshot, args) -> (snapshot, result,
// error); the Service serializes read-compute-write so observers only ever see
// fully consistent snapshots.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time
}

func New(st store.Store) *Service {
	return &Service{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// update runs one mutation under the engine lock: read the current snapshot,
// apply the pure transition, write the result. A transition error never
// reaches Write, so a failed validation leaves no partial state behind.
func (s *Service) update(ctx context.Context, apply func(domain.Snapshot) (domain.Snapshot, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Read(ctx)
	if err != nil {
		return err
	}
	next, err := apply(snap)
	if err != nil {
		return err
	}
	return s.store.Write(ctx, next)
}

// Snapshot returns the current committed snapshot.
func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return s.store.Read(ctx)
}

func findProduct(snap *domain.Snapshot, id string) (*domain.Product, error) {
	for i := range snap.Products {
		if snap.Products[i].ID == id {
			return &snap.Products[i], nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, id)
}

func findCustomer(snap *domain.Snapshot, id string) (*domain.Customer, error) {
	for i := range snap.Customers {
		if snap.Customers[i].ID == id {
			return &snap.Customers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: customer %s", store.ErrNotFound, id)
}

func findSupplier(snap *domain.Snapshot, id string) (*domain.Supplier, error) {
	for i := range snap.Suppliers {
		if snap.Suppliers[i].ID == id {
			return &snap.Suppliers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: supplier %s", store.ErrNotFound, id)
}

func findSale(snap *domain.Snapshot, id string) (*domain.Sale, int, error) {
	for i := range snap.Sales {
		if snap.Sales[i].ID == id {
			return &snap.Sales[i], i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: sale %s", store.ErrNotFound, id)
}

func saleItemsOf(snap *domain.Snapshot, saleID string) []domain.SaleItem {
	items := make([]domain.SaleItem, 0, 8)
	for _, it := range snap.SaleItems {
		if it.SaleID == saleID {
			items = append(items, it)
		}
	}
	return items
}
