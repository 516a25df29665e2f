package engine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
	"superpos/backend/internal/xid"
)

// Catalog maintenance: products, customers, suppliers, users and settings are
// upserted in place. Balance and stock fields on these upserts only seed new
// records; ongoing changes flow through the event processors.

func (s *Service) UpsertProduct(ctx context.Context, req domain.ProductUpsert) (domain.Product, error) {
	var product domain.Product
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if strings.TrimSpace(req.Name) == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: product name required", store.ErrValidation)
		}
		if req.PurchasePrice < 0 || req.SellPrice < 0 {
			return domain.Snapshot{}, fmt.Errorf("%w: prices must not be negative", store.ErrValidation)
		}

		next := snap.Clone()
		product = domain.Product{
			ID:             req.ID,
			Name:           strings.TrimSpace(req.Name),
			Barcode:        strings.TrimSpace(req.Barcode),
			PurchasePrice:  req.PurchasePrice,
			SellPrice:      req.SellPrice,
			StockQuantity:  req.StockQuantity,
			AlertThreshold: req.AlertThreshold,
			ShowInCatalog:  true,
		}
		if req.ShowInCatalog != nil {
			product.ShowInCatalog = *req.ShowInCatalog
		}
		if product.ID == "" {
			product.ID = xid.New("prod")
			next.Products = append(next.Products, product)
			return next, nil
		}
		for i := range next.Products {
			if next.Products[i].ID == product.ID {
				next.Products[i] = product
				return next, nil
			}
		}
		next.Products = append(next.Products, product)
		return next, nil
	})
	return product, err
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

// ProductByBarcode resolves a scanned barcode. Barcode uniqueness is the
// caller's responsibility; the first match wins.
func (s *Service) ProductByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range snap.Products {
		if p.Barcode != "" && p.Barcode == barcode {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("%w: barcode %s", store.ErrNotFound, barcode)
}

func (s *Service) UpsertCustomer(ctx context.Context, req domain.CustomerUpsert) (domain.Customer, error) {
	var customer domain.Customer
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if strings.TrimSpace(req.Name) == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: customer name required", store.ErrValidation)
		}

		next := snap.Clone()
		customer = domain.Customer{
			ID:       req.ID,
			Name:     strings.TrimSpace(req.Name),
			Phone:    strings.TrimSpace(req.Phone),
			WhatsApp: strings.TrimSpace(req.WhatsApp),
			Balance:  req.Balance,
			Points:   req.Points,
		}
		if customer.ID == "" {
			customer.ID = xid.New("cust")
			next.Customers = append(next.Customers, customer)
			return next, nil
		}
		for i := range next.Customers {
			if next.Customers[i].ID == customer.ID {
				next.Customers[i] = customer
				return next, nil
			}
		}
		next.Customers = append(next.Customers, customer)
		return next, nil
	})
	return customer, err
}

func (s *Service) Customers(ctx context.Context) ([]domain.Customer, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Customers, nil
}

func (s *Service) UpsertSupplier(ctx context.Context, req domain.SupplierUpsert) (domain.Supplier, error) {
	var supplier domain.Supplier
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if strings.TrimSpace(req.Name) == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: supplier name required", store.ErrValidation)
		}

		next := snap.Clone()
		supplier = domain.Supplier{
			ID:      req.ID,
			Name:    strings.TrimSpace(req.Name),
			Phone:   strings.TrimSpace(req.Phone),
			Balance: req.Balance,
		}
		if supplier.ID == "" {
			supplier.ID = xid.New("sup")
			next.Suppliers = append(next.Suppliers, supplier)
			return next, nil
		}
		for i := range next.Suppliers {
			if next.Suppliers[i].ID == supplier.ID {
				next.Suppliers[i] = supplier
				return next, nil
			}
		}
		next.Suppliers = append(next.Suppliers, supplier)
		return next, nil
	})
	return supplier, err
}

func (s *Service) Suppliers(ctx context.Context) ([]domain.Supplier, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Suppliers, nil
}

// UpsertUser creates or replaces a user account. The PIN is stored as a
// bcrypt hash; an empty PIN on an update keeps the existing hash.
func (s *Service) UpsertUser(ctx context.Context, req domain.UserUpsert) (domain.User, error) {
	var user domain.User
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if strings.TrimSpace(req.Name) == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: user name required", store.ErrValidation)
		}
		role := req.Role
		if role == "" {
			role = domain.RoleCashier
		}
		if role != domain.RoleAdmin && role != domain.RoleCashier {
			return domain.Snapshot{}, fmt.Errorf("%w: unknown role %q", store.ErrValidation, role)
		}

		next := snap.Clone()
		user = domain.User{ID: req.ID, Name: strings.TrimSpace(req.Name), Role: role}

		if pin := strings.TrimSpace(req.PIN); pin != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
			if err != nil {
				return domain.Snapshot{}, err
			}
			user.PIN = string(hash)
		}

		if user.ID == "" {
			if user.PIN == "" {
				return domain.Snapshot{}, fmt.Errorf("%w: new users need a PIN", store.ErrValidation)
			}
			user.ID = xid.New("user")
			next.Users = append(next.Users, user)
			return next, nil
		}
		for i := range next.Users {
			if next.Users[i].ID == user.ID {
				if user.PIN == "" {
					user.PIN = next.Users[i].PIN
				}
				next.Users[i] = user
				return next, nil
			}
		}
		if user.PIN == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: new users need a PIN", store.ErrValidation)
		}
		next.Users = append(next.Users, user)
		return next, nil
	})
	return user, err
}

func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		next := snap.Clone()
		for i := range next.Users {
			if next.Users[i].ID == userID {
				next.Users = append(next.Users[:i], next.Users[i+1:]...)
				return next, nil
			}
		}
		return domain.Snapshot{}, fmt.Errorf("%w: user %s", store.ErrNotFound, userID)
	})
}

func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	// Strip hashes before the list leaves the engine.
	users := make([]domain.User, len(snap.Users))
	for i, u := range snap.Users {
		u.PIN = ""
		users[i] = u
	}
	return users, nil
}

// Authenticate verifies a user id + PIN pair and returns the user on success.
func (s *Service) Authenticate(ctx context.Context, userID, pin string) (domain.User, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range snap.Users {
		if u.ID != userID {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PIN), []byte(pin)) != nil {
			break
		}
		u.PIN = ""
		return u, nil
	}
	return domain.User{}, fmt.Errorf("%w: invalid credentials", store.ErrValidation)
}

func (s *Service) Settings(ctx context.Context) (domain.ShopSettings, error) {
	snap, err := s.store.Read(ctx)
	if err != nil {
		return domain.ShopSettings{}, err
	}
	return snap.Settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, settings domain.ShopSettings) (domain.ShopSettings, error) {
	err := s.update(ctx, func(snap domain.Snapshot) (domain.Snapshot, error) {
		if strings.TrimSpace(settings.Name) == "" {
			return domain.Snapshot{}, fmt.Errorf("%w: shop name required", store.ErrValidation)
		}
		if settings.VATPercent < 0 || settings.VATPercent > 100 {
			return domain.Snapshot{}, fmt.Errorf("%w: VAT percent out of range", store.ErrValidation)
		}
		next := snap.Clone()
		next.Settings = settings
		return next, nil
	})
	return settings, err
}
