package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"superpos/backend/internal/domain"
	"superpos/backend/internal/store"
)

// Store keeps the snapshot in memory and optionally mirrors it to a JSON file
// after every write. It is the single-process store used for dev/demo mode and
// as the test double for the engine.
type Store struct {
	mu         sync.RWMutex
	snapshot   domain.Snapshot
	draftAudit *domain.InventoryAudit
	filePath   string
	writerID   string

	subMu   sync.Mutex
	subs    map[int]func(domain.Snapshot)
	nextSub int
}

func New() *Store {
	return &Store{
		snapshot: defaultSnapshot(),
		writerID: uuid.NewString(),
		subs:     make(map[int]func(domain.Snapshot)),
	}
}

// NewWithFile loads the snapshot (and any draft audit) from path when the file
// exists, and persists both there after every write.
func NewWithFile(path string) (*Store, error) {
	s := New()
	s.filePath = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}
	s.snapshot = snap

	auditData, err := os.ReadFile(s.auditPath())
	if err == nil {
		var audit domain.InventoryAudit
		if err := json.Unmarshal(auditData, &audit); err == nil {
			s.draftAudit = &audit
		}
	}
	return s, nil
}

func (s *Store) auditPath() string {
	return s.filePath + ".audit"
}

func (s *Store) Read(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone(), nil
}

func (s *Store) Write(_ context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	if snap.Version != s.snapshot.Version {
		s.mu.Unlock()
		return fmt.Errorf("%w: have v%d, write based on v%d", store.ErrStaleSnapshot, s.snapshot.Version, snap.Version)
	}
	snap.Version++
	snap.WriterID = s.writerID
	snap.UpdatedAt = time.Now().UTC()
	prev := s.snapshot
	s.snapshot = snap.Clone()

	if s.filePath != "" {
		if err := persistFile(s.filePath, s.snapshot); err != nil {
			// Restore the last durable state so readers never see a document
			// that failed to persist.
			s.snapshot = prev
			s.mu.Unlock()
			return err
		}
	}
	committed := s.snapshot.Clone()
	s.mu.Unlock()

	s.notify(committed)
	return nil
}

func (s *Store) Subscribe(fn func(domain.Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(snap domain.Snapshot) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(domain.Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) ReadAudit(_ context.Context) (*domain.InventoryAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.draftAudit == nil {
		return nil, nil
	}
	audit := *s.draftAudit
	audit.Items = append([]domain.AuditItem(nil), s.draftAudit.Items...)
	return &audit, nil
}

func (s *Store) WriteAudit(_ context.Context, audit *domain.InventoryAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if audit == nil {
		s.draftAudit = nil
		if s.filePath != "" {
			if err := os.Remove(s.auditPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		return nil
	}

	copied := *audit
	copied.Items = append([]domain.AuditItem(nil), audit.Items...)
	s.draftAudit = &copied
	if s.filePath != "" {
		return persistFile(s.auditPath(), copied)
	}
	return nil
}

func persistFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func defaultSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Settings: domain.ShopSettings{
			Name:           "SuperPOS Market",
			Phone:          "-",
			Address:        "-",
			Currency:       "USD",
			CurrencySymbol: "$",
			VATPercent:     0,
			WhatsAppFooter: "Exported automatically by SuperPOS.",
		},
		Customers: []domain.Customer{
			{ID: "walk-in", Name: "Walk-in customer", Phone: "-"},
		},
		Users:            seedUsers(),
		Products:         []domain.Product{},
		Suppliers:        []domain.Supplier{},
		Sales:            []domain.Sale{},
		SaleItems:        []domain.SaleItem{},
		PurchaseInvoices: []domain.PurchaseInvoice{},
		CashLedger:       []domain.CashLedgerEntry{},
		Expenses:         []domain.Expense{},
		CurrentShift:     domain.Shift{},
	}
}

// seedUsers builds the initial accounts for a fresh store. PINs come from
// SEED_ADMIN_PIN and SEED_CASHIER_PIN; hardcoded dev defaults are used with a
// warning when unset.
func seedUsers() []domain.User {
	adminPIN := envOr("SEED_ADMIN_PIN", "1234")
	cashierPIN := envOr("SEED_CASHIER_PIN", "0000")
	if os.Getenv("SEED_ADMIN_PIN") == "" || os.Getenv("SEED_CASHIER_PIN") == "" {
		log.Println("[memory-store] WARNING: using default dev PINs. Set SEED_ADMIN_PIN and SEED_CASHIER_PIN to override.")
	}

	users := make([]domain.User, 0, 2)
	for _, u := range []struct {
		id   string
		name string
		pin  string
		role string
	}{
		{"u-admin", "Manager", adminPIN, domain.RoleAdmin},
		{"u-cashier", "Cashier", cashierPIN, domain.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.pin), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed PIN for %s: %v", u.id, err)
		}
		users = append(users, domain.User{ID: u.id, Name: u.name, PIN: string(hash), Role: u.role})
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store preloaded with demo catalog data. Used in dev mode
// and throughout the engine tests.
func NewSeeded() *Store {
	s := New()
	s.snapshot.Products = []domain.Product{
		{ID: "p-rice", Name: "Rice 1kg", Barcode: "6290000001", PurchasePrice: 4, SellPrice: 6, StockQuantity: 80, AlertThreshold: 10, ShowInCatalog: true},
		{ID: "p-oil", Name: "Sunflower Oil 1L", Barcode: "6290000002", PurchasePrice: 7.5, SellPrice: 10, StockQuantity: 40, AlertThreshold: 8, ShowInCatalog: true},
		{ID: "p-sugar", Name: "Sugar 1kg", Barcode: "6290000003", PurchasePrice: 3, SellPrice: 4.5, StockQuantity: 60, AlertThreshold: 12, ShowInCatalog: true},
		{ID: "p-tomato", Name: "Tomatoes (kg)", Barcode: "", PurchasePrice: 1.2, SellPrice: 2.4, StockQuantity: 25.5, AlertThreshold: 5, ShowInCatalog: true},
		{ID: "p-bread", Name: "Flat Bread", Barcode: "6290000005", PurchasePrice: 0.8, SellPrice: 1.5, StockQuantity: 30, AlertThreshold: 10, ShowInCatalog: true},
	}
	s.snapshot.Customers = append(s.snapshot.Customers,
		domain.Customer{ID: "c-omar", Name: "Omar H.", Phone: "0590000001", Balance: 0, Points: 50},
		domain.Customer{ID: "c-lina", Name: "Lina S.", Phone: "0590000002", Balance: 35, Points: 12},
	)
	s.snapshot.Suppliers = []domain.Supplier{
		{ID: "s-wholesale", Name: "City Wholesale", Phone: "0599000001", Balance: 120},
		{ID: "s-farm", Name: "Valley Farms", Phone: "0599000002", Balance: 0},
	}
	return s
}
