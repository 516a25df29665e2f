package domain

import "time"

// Snapshot is the whole persisted state of one shop and the unit of storage,
// export, and remote sync. Version increases by one on every committed write;
// WriterID identifies the process that produced the write.
type Snapshot struct {
	Version   int64     `json:"version"`
	WriterID  string    `json:"writer_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	Settings         ShopSettings      `json:"settings"`
	Products         []Product         `json:"products"`
	Customers        []Customer        `json:"customers"`
	Suppliers        []Supplier        `json:"suppliers"`
	Users            []User            `json:"users"`
	Sales            []Sale            `json:"sales"`
	SaleItems        []SaleItem        `json:"saleItems"`
	PurchaseInvoices []PurchaseInvoice `json:"purchaseInvoices"`
	CashLedger       []CashLedgerEntry `json:"cashLedger"`
	Expenses         []Expense         `json:"expenses"`
	CurrentShift     Shift             `json:"currentShift"`
}

// Clone deep-copies the snapshot so processors can mutate the copy without
// aliasing slices of the committed state.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Products = append([]Product(nil), s.Products...)
	out.Customers = append([]Customer(nil), s.Customers...)
	out.Suppliers = append([]Supplier(nil), s.Suppliers...)
	out.Users = append([]User(nil), s.Users...)
	out.Sales = append([]Sale(nil), s.Sales...)
	out.SaleItems = append([]SaleItem(nil), s.SaleItems...)
	out.CashLedger = append([]CashLedgerEntry(nil), s.CashLedger...)
	out.Expenses = append([]Expense(nil), s.Expenses...)
	out.PurchaseInvoices = make([]PurchaseInvoice, len(s.PurchaseInvoices))
	for i, inv := range s.PurchaseInvoices {
		inv.Items = append([]PurchaseInvoiceItem(nil), inv.Items...)
		out.PurchaseInvoices[i] = inv
	}
	if s.CurrentShift.StartTime != nil {
		start := *s.CurrentShift.StartTime
		out.CurrentShift.StartTime = &start
	}
	return out
}
