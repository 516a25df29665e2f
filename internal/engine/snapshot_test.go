package engine

import (
	"context"
	"errors"
	"testing"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

func TestExportExcludesDraftAudit(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.StartAudit(ctx); err != nil {
		t.Fatalf("StartAudit: %v", err)
	}
	if _, err := svc.UpdateAuditItem(ctx, "p-rice", 50); err != nil {
		t.Fatalf("UpdateAuditItem: %v", err)
	}

	// The export round-trips through JSON in real use; the draft must not be
	// reachable from the document at all.
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}
	for _, p := range snap.Products {
		if p.ID == "p-rice" && p.StockQuantity != 80 {
			t.Fatalf("stock = %v, want 80: draft leaked into the export", p.StockQuantity)
		}
	}
}

func TestImportReplacesAndRebasesVersion(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	backupSnap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}

	if _, err := svc.CreateSale(ctx, domain.SaleRequest{
		Items:   []domain.CartLine{{ProductID: "p-rice", Quantity: 2, UnitPrice: 6}},
		PaidNow: 12,
	}); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	if err := svc.ImportSnapshot(ctx, backupSnap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}

	sales, _ := svc.Sales(ctx)
	if len(sales) != 0 {
		t.Fatalf("sales = %d, want 0 after restore", len(sales))
	}

	// The imported document is rebased, never rewinds the local version.
	current, _ := svc.Snapshot(ctx)
	if current.Version <= backupSnap.Version {
		t.Fatalf("version = %d, want above the backup's %d", current.Version, backupSnap.Version)
	}
}

func TestImportRefusesSnapshotWithoutUsers(t *testing.T) {
	svc := testService()
	err := svc.ImportSnapshot(context.Background(), domain.Snapshot{})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}
