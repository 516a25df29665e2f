package engine

import (
	"context"
	"errors"
	"testing"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

func sellForReturn(t *testing.T, svc *Service, customerID string, paid float64) domain.Sale {
	t.Helper()
	sale, err := svc.CreateSale(context.Background(), domain.SaleRequest{
		Items:      []domain.CartLine{{ProductID: "p-rice", Quantity: 2, UnitPrice: 6}},
		CustomerID: customerID,
		PaidNow:    paid,
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	return sale
}

func TestCreateReturnCash(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	sale := sellForReturn(t, svc, "", 12)

	result, err := svc.CreateReturn(ctx, domain.ReturnRequest{
		SaleID: sale.ID,
		Items:  []domain.ReturnLine{{ProductID: "p-rice", Quantity: 1}},
		Method: domain.RefundCash,
	})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if result.RefundAmount != 6 {
		t.Fatalf("refund = %v, want 6", result.RefundAmount)
	}

	if got := mustProduct(t, svc, "p-rice").StockQuantity; got != 79 {
		t.Fatalf("stock = %v, want 79", got)
	}

	ledger, _ := svc.CashLedger(ctx)
	if len(ledger) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(ledger))
	}
	out := ledger[1]
	if out.MovementType != domain.MovementReturnCashOut || out.Amount != -6 {
		t.Fatalf("entry = %+v, want return_cash_out of -6", out)
	}
}

func TestCreateReturnReduceDue(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	sale := sellForReturn(t, svc, "c-lina", 0)

	// 35 prior debt + 12 on credit = 47 before the return.
	if _, err := svc.CreateReturn(ctx, domain.ReturnRequest{
		SaleID: sale.ID,
		Items:  []domain.ReturnLine{{ProductID: "p-rice", Quantity: 1}},
		Method: domain.RefundReduceDue,
	}); err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}

	if got := mustCustomer(t, svc, "c-lina").Balance; got != 41 {
		t.Fatalf("balance = %v, want 41", got)
	}
	ledger, _ := svc.CashLedger(ctx)
	if len(ledger) != 0 {
		t.Fatalf("ledger entries = %d, want 0 for reduce_due", len(ledger))
	}
}

func TestCreateReturnReduceDueNeedsCustomer(t *testing.T) {
	svc := testService()
	sale := sellForReturn(t, svc, "", 12)

	_, err := svc.CreateReturn(context.Background(), domain.ReturnRequest{
		SaleID: sale.ID,
		Items:  []domain.ReturnLine{{ProductID: "p-rice", Quantity: 1}},
		Method: domain.RefundReduceDue,
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCreateReturnBoundedBySoldQuantity(t *testing.T) {
	svc := testService()
	sale := sellForReturn(t, svc, "", 12)

	_, err := svc.CreateReturn(context.Background(), domain.ReturnRequest{
		SaleID: sale.ID,
		Items:  []domain.ReturnLine{{ProductID: "p-rice", Quantity: 3}},
		Method: domain.RefundCash,
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCreateReturnUnknownSaleOrProduct(t *testing.T) {
	svc := testService()
	sale := sellForReturn(t, svc, "", 12)

	_, err := svc.CreateReturn(context.Background(), domain.ReturnRequest{
		SaleID: "sale-missing",
		Items:  []domain.ReturnLine{{ProductID: "p-rice", Quantity: 1}},
		Method: domain.RefundCash,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unknown sale err = %v, want ErrNotFound", err)
	}

	_, err = svc.CreateReturn(context.Background(), domain.ReturnRequest{
		SaleID: sale.ID,
		Items:  []domain.ReturnLine{{ProductID: "p-oil", Quantity: 1}},
		Method: domain.RefundCash,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("product off sale err = %v, want ErrNotFound", err)
	}
}

func TestCreateReturnUnknownMethod(t *testing.T) {
	svc := testService()
	sale := sellForReturn(t, svc, "", 12)

	_, err := svc.CreateReturn(context.Background(), domain.ReturnRequest{
		SaleID: sale.ID,
		Items:  []domain.ReturnLine{{ProductID: "p-rice", Quantity: 1}},
		Method: "store_credit",
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
