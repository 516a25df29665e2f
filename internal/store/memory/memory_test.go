package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

func TestWriteBumpsVersion(t *testing.T) {
	s := New()
	ctx := context.Background()

	snap, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if snap.Version != 0 {
		t.Fatalf("fresh version = %d, want 0", snap.Version)
	}

	snap.Settings.Name = "Renamed"
	if err := s.Write(ctx, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}

	after, _ := s.Read(ctx)
	if after.Version != 1 {
		t.Fatalf("version = %d, want 1", after.Version)
	}
	if after.Settings.Name != "Renamed" {
		t.Fatalf("name = %q, want Renamed", after.Settings.Name)
	}
	if after.WriterID == "" {
		t.Fatal("writer id not stamped")
	}
	if after.UpdatedAt.IsZero() {
		t.Fatal("updated_at not stamped")
	}
}

func TestWriteRejectsStaleBase(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, _ := s.Read(ctx)
	second, _ := s.Read(ctx)

	if err := s.Write(ctx, first); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// second still carries the old base version.
	if err := s.Write(ctx, second); !errors.Is(err, store.ErrStaleSnapshot) {
		t.Fatalf("err = %v, want ErrStaleSnapshot", err)
	}
}

func TestReadReturnsIsolatedCopy(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	snap, _ := s.Read(ctx)
	snap.Products[0].StockQuantity = -999

	again, _ := s.Read(ctx)
	if again.Products[0].StockQuantity == -999 {
		t.Fatal("mutating a read snapshot leaked into the store")
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	s := New()
	ctx := context.Background()

	got := make(chan domain.Snapshot, 2)
	unsubscribe := s.Subscribe(func(snap domain.Snapshot) { got <- snap })

	snap, _ := s.Read(ctx)
	if err := s.Write(ctx, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case committed := <-got:
		if committed.Version != 1 {
			t.Fatalf("notified version = %d, want 1", committed.Version)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification after write")
	}

	unsubscribe()
	snap, _ = s.Read(ctx)
	if err := s.Write(ctx, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}
	select {
	case <-got:
		t.Fatal("notified after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFilePersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	ctx := context.Background()

	s, err := NewWithFile(path)
	if err != nil {
		t.Fatalf("NewWithFile: %v", err)
	}
	snap, _ := s.Read(ctx)
	snap.Settings.Name = "Persisted Shop"
	if err := s.Write(ctx, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reopened, err := NewWithFile(path)
	if err != nil {
		t.Fatalf("NewWithFile reopen: %v", err)
	}
	loaded, _ := reopened.Read(ctx)
	if loaded.Settings.Name != "Persisted Shop" {
		t.Fatalf("name = %q, want Persisted Shop", loaded.Settings.Name)
	}
	if loaded.Version != 1 {
		t.Fatalf("version = %d, want 1", loaded.Version)
	}
}

func TestFailedPersistLeavesStoreUntouched(t *testing.T) {
	s := New()
	ctx := context.Background()
	// Renaming the temp file onto an existing directory fails, so every
	// persist attempt errors.
	s.filePath = t.TempDir()

	before, _ := s.Read(ctx)

	snap, _ := s.Read(ctx)
	snap.Settings.Name = "Never Durable"
	if err := s.Write(ctx, snap); err == nil {
		t.Fatal("Write succeeded against an unwritable path")
	}

	after, _ := s.Read(ctx)
	if after.Version != before.Version {
		t.Fatalf("version = %d, want %d after failed persist", after.Version, before.Version)
	}
	if after.Settings.Name != before.Settings.Name {
		t.Fatalf("name = %q, want %q: failed write leaked into reads", after.Settings.Name, before.Settings.Name)
	}

	// The store must still accept a write once persistence works again.
	s.filePath = filepath.Join(s.filePath, "snapshot.json")
	retry, _ := s.Read(ctx)
	retry.Settings.Name = "Durable"
	if err := s.Write(ctx, retry); err != nil {
		t.Fatalf("Write after recovery: %v", err)
	}
	final, _ := s.Read(ctx)
	if final.Version != before.Version+1 || final.Settings.Name != "Durable" {
		t.Fatalf("final = v%d %q, want v%d Durable", final.Version, final.Settings.Name, before.Version+1)
	}
}

func TestAuditSlotSeparateFromSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	ctx := context.Background()

	s, err := NewWithFile(path)
	if err != nil {
		t.Fatalf("NewWithFile: %v", err)
	}

	draft, err := s.ReadAudit(ctx)
	if err != nil {
		t.Fatalf("ReadAudit: %v", err)
	}
	if draft != nil {
		t.Fatalf("fresh draft = %+v, want nil", draft)
	}

	audit := &domain.InventoryAudit{
		ID:     "audit-test",
		Date:   time.Now().UTC(),
		Items:  []domain.AuditItem{{ProductID: "p-1", Actual: 7}},
		Status: domain.AuditStatusDraft,
	}
	if err := s.WriteAudit(ctx, audit); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}

	// The draft lives in its own file; the snapshot document is untouched.
	data, err := os.ReadFile(path + ".audit")
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("audit file empty")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("snapshot file written without a snapshot write: %v", err)
	}

	// Reopen and the draft survives.
	reopened, err := NewWithFile(path)
	if err != nil {
		t.Fatalf("NewWithFile reopen: %v", err)
	}
	loaded, err := reopened.ReadAudit(ctx)
	if err != nil {
		t.Fatalf("ReadAudit reopen: %v", err)
	}
	if loaded == nil || loaded.ID != "audit-test" {
		t.Fatalf("draft = %+v, want audit-test", loaded)
	}

	if err := reopened.WriteAudit(ctx, nil); err != nil {
		t.Fatalf("WriteAudit clear: %v", err)
	}
	if _, err := os.Stat(path + ".audit"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("audit file still exists after clear: %v", err)
	}
}

func TestReadAuditReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	audit := &domain.InventoryAudit{ID: "audit-1", Items: []domain.AuditItem{{ProductID: "p-1", Actual: 3}}}
	if err := s.WriteAudit(ctx, audit); err != nil {
		t.Fatalf("WriteAudit: %v", err)
	}

	first, _ := s.ReadAudit(ctx)
	first.Items[0].Actual = 99

	second, _ := s.ReadAudit(ctx)
	if second.Items[0].Actual != 3 {
		t.Fatal("mutating a read draft leaked into the store")
	}
}

func TestDefaultSnapshotSeedsAccounts(t *testing.T) {
	s := New()
	snap, _ := s.Read(context.Background())

	if len(snap.Users) != 2 {
		t.Fatalf("users = %d, want 2", len(snap.Users))
	}
	for _, u := range snap.Users {
		if u.PIN == "" {
			t.Fatalf("user %s has no PIN hash", u.ID)
		}
	}
	if len(snap.Customers) != 1 || snap.Customers[0].ID != "walk-in" {
		t.Fatalf("customers = %+v, want the walk-in record", snap.Customers)
	}
}
