package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

func TestUpsertProductCreateAndUpdate(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	created, err := svc.UpsertProduct(ctx, domain.ProductUpsert{
		Name:          "Olive Oil 500ml",
		Barcode:       "6290000010",
		PurchasePrice: 5,
		SellPrice:     8,
		StockQuantity: 12,
	})
	if err != nil {
		t.Fatalf("UpsertProduct: %v", err)
	}
	if !strings.HasPrefix(created.ID, "prod-") {
		t.Fatalf("id = %q, want generated prod- id", created.ID)
	}
	if !created.ShowInCatalog {
		t.Fatal("new product should default to visible")
	}

	updated, err := svc.UpsertProduct(ctx, domain.ProductUpsert{
		ID:            created.ID,
		Name:          "Olive Oil 500ml",
		PurchasePrice: 5,
		SellPrice:     9,
		StockQuantity: 12,
	})
	if err != nil {
		t.Fatalf("UpsertProduct update: %v", err)
	}
	if updated.SellPrice != 9 {
		t.Fatalf("sell price = %v, want 9", updated.SellPrice)
	}

	products, _ := svc.Products(ctx)
	count := 0
	for _, p := range products {
		if p.ID == created.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("product appears %d times, want 1", count)
	}
}

func TestUpsertProductValidation(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.UpsertProduct(ctx, domain.ProductUpsert{Name: "  "}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("blank name err = %v, want ErrValidation", err)
	}
	if _, err := svc.UpsertProduct(ctx, domain.ProductUpsert{Name: "x", SellPrice: -1}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("negative price err = %v, want ErrValidation", err)
	}
}

func TestProductByBarcode(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	product, err := svc.ProductByBarcode(ctx, "6290000001")
	if err != nil {
		t.Fatalf("ProductByBarcode: %v", err)
	}
	if product.ID != "p-rice" {
		t.Fatalf("product = %s, want p-rice", product.ID)
	}

	if _, err := svc.ProductByBarcode(ctx, "0000000000"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// An empty scan must never match products without a barcode.
	if _, err := svc.ProductByBarcode(ctx, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty barcode err = %v, want ErrNotFound", err)
	}
}

func TestUpsertUserAndAuthenticate(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	user, err := svc.UpsertUser(ctx, domain.UserUpsert{Name: "Sami", PIN: "4321"})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if user.Role != domain.RoleCashier {
		t.Fatalf("role = %q, want cashier default", user.Role)
	}

	authed, err := svc.Authenticate(ctx, user.ID, "4321")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if authed.PIN != "" {
		t.Fatal("authenticate must not return the stored hash")
	}

	if _, err := svc.Authenticate(ctx, user.ID, "9999"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("wrong PIN err = %v, want ErrValidation", err)
	}
	if _, err := svc.Authenticate(ctx, "u-nope", "4321"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("unknown user err = %v, want ErrValidation", err)
	}
}

func TestUpsertUserKeepsPINOnBlankUpdate(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	user, err := svc.UpsertUser(ctx, domain.UserUpsert{Name: "Sami", PIN: "4321"})
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if _, err := svc.UpsertUser(ctx, domain.UserUpsert{ID: user.ID, Name: "Sami A.", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("UpsertUser update: %v", err)
	}

	authed, err := svc.Authenticate(ctx, user.ID, "4321")
	if err != nil {
		t.Fatalf("Authenticate after update: %v", err)
	}
	if authed.Name != "Sami A." || authed.Role != domain.RoleAdmin {
		t.Fatalf("user = %+v, want renamed admin", authed)
	}
}

func TestUpsertUserValidation(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.UpsertUser(ctx, domain.UserUpsert{Name: "NoPin"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("new user without PIN err = %v, want ErrValidation", err)
	}
	if _, err := svc.UpsertUser(ctx, domain.UserUpsert{Name: "x", PIN: "1", Role: "owner"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("unknown role err = %v, want ErrValidation", err)
	}
}

func TestUsersStripsHashes(t *testing.T) {
	svc := testService()
	users, err := svc.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) == 0 {
		t.Fatal("expected seeded users")
	}
	for _, u := range users {
		if u.PIN != "" {
			t.Fatalf("user %s leaks a PIN hash", u.ID)
		}
	}
}

func TestDeleteUser(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if err := svc.DeleteUser(ctx, "u-cashier"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := svc.DeleteUser(ctx, "u-cashier"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	updated, err := svc.UpdateSettings(ctx, domain.ShopSettings{Name: "Corner Shop", Currency: "USD", VATPercent: 5})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if updated.Name != "Corner Shop" {
		t.Fatalf("name = %q, want Corner Shop", updated.Name)
	}

	settings, _ := svc.Settings(ctx)
	if settings.VATPercent != 5 {
		t.Fatalf("vat = %v, want 5", settings.VATPercent)
	}

	if _, err := svc.UpdateSettings(ctx, domain.ShopSettings{Name: ""}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("blank name err = %v, want ErrValidation", err)
	}
	if _, err := svc.UpdateSettings(ctx, domain.ShopSettings{Name: "x", VATPercent: 120}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("vat out of range err = %v, want ErrValidation", err)
	}
}

func TestUpsertCustomerAndSupplier(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	customer, err := svc.UpsertCustomer(ctx, domain.CustomerUpsert{Name: "New Customer", Phone: "0590000009"})
	if err != nil {
		t.Fatalf("UpsertCustomer: %v", err)
	}
	if !strings.HasPrefix(customer.ID, "cust-") {
		t.Fatalf("id = %q, want generated cust- id", customer.ID)
	}

	supplier, err := svc.UpsertSupplier(ctx, domain.SupplierUpsert{Name: "New Supplier", Balance: 10})
	if err != nil {
		t.Fatalf("UpsertSupplier: %v", err)
	}
	if supplier.Balance != 10 {
		t.Fatalf("balance = %v, want seeded 10", supplier.Balance)
	}

	if _, err := svc.UpsertCustomer(ctx, domain.CustomerUpsert{}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("blank customer err = %v, want ErrValidation", err)
	}
	if _, err := svc.UpsertSupplier(ctx, domain.SupplierUpsert{}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("blank supplier err = %v, want ErrValidation", err)
	}
}
