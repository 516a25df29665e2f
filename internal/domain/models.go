package domain

import "time"

// All monetary and quantity values are float64: the shop sells weighed goods,
// so fractional quantities are first-class.

type ShopSettings struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	Currency       string  `json:"currency"`
	CurrencySymbol string  `json:"currency_symbol"`
	VATPercent     float64 `json:"vat_percent"`
	LogoURL        string  `json:"logo_url,omitempty"`
	WhatsAppFooter string  `json:"whatsapp_footer"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// PIN holds the bcrypt hash of the login PIN, never the plain value.
	PIN  string `json:"pin"`
	Role string `json:"role"`
}

type Product struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Barcode        string  `json:"barcode"`
	PurchasePrice  float64 `json:"purchase_price"`
	SellPrice      float64 `json:"sell_price"`
	StockQuantity  float64 `json:"stock_quantity"`
	AlertThreshold float64 `json:"alert_threshold"`
	ShowInCatalog  bool    `json:"show_in_catalog"`
}

type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	WhatsApp string `json:"whatsapp,omitempty"`
	// Balance is the debt the customer owes the shop. Signed: overpayments
	// push it negative (shop owes the customer).
	Balance float64 `json:"balance"`
	Points  int     `json:"points"`
}

type Supplier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	// Balance is the debt the shop owes the supplier.
	Balance float64 `json:"balance"`
}

type Sale struct {
	ID             string    `json:"id"`
	InvoiceNo      int64     `json:"invoice_no"`
	CustomerID     string    `json:"customer_id,omitempty"`
	TotalAmount    float64   `json:"total_amount"`
	DiscountAmount float64   `json:"discount_amount"`
	VATAmount      float64   `json:"vat_amount"`
	PaidNow        float64   `json:"paid_now"`
	RemainingDue   float64   `json:"remaining_due"`
	PointsRedeemed int       `json:"points_redeemed,omitempty"`
	PointsEarned   int       `json:"points_earned,omitempty"`
	CashierName    string    `json:"cashier_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SaleItem struct {
	ID            string  `json:"id"`
	SaleID        string  `json:"sale_id"`
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name,omitempty"`
	Quantity      float64 `json:"quantity"`
	UnitSellPrice float64 `json:"unit_sell_price"`
	UnitCostPrice float64 `json:"unit_cost_price"`
	LineTotal     float64 `json:"line_total"`
	LineProfit    float64 `json:"line_profit"`
}

type MovementType string

const (
	MovementSaleCashIn     MovementType = "sale_cash_in"
	MovementReturnCashOut  MovementType = "return_cash_out"
	MovementPurchaseOut    MovementType = "purchase_cash_out"
	MovementSupplierPay    MovementType = "supplier_pay"
	MovementDebtPayment    MovementType = "debt_payment"
	MovementExpense        MovementType = "expense"
)

// CashLedgerEntry is an immutable signed cash movement. Summing entries over a
// time window reconstructs expected drawer cash.
type CashLedgerEntry struct {
	ID           string       `json:"id"`
	MovementType MovementType `json:"movement_type"`
	Amount       float64      `json:"amount"`
	RefID        string       `json:"ref_id"`
	Date         time.Time    `json:"date"`
}

type Shift struct {
	IsOpen         bool       `json:"isOpen"`
	OpeningBalance float64    `json:"openingBalance"`
	StartTime      *time.Time `json:"startTime"`
	OpenedBy       string     `json:"openedBy,omitempty"`
}

type Expense struct {
	ID       string    `json:"id"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Notes    string    `json:"notes"`
	Date     time.Time `json:"date"`
}

type PurchaseInvoiceItem struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	CostPrice float64 `json:"cost_price"`
}

type PurchaseInvoice struct {
	ID          string                `json:"id"`
	SupplierID  string                `json:"supplier_id"`
	TotalAmount float64               `json:"total_amount"`
	PaidAmount  float64               `json:"paid_amount"`
	Date        time.Time             `json:"date"`
	Items       []PurchaseInvoiceItem `json:"items"`
}

const (
	AuditStatusDraft     = "draft"
	AuditStatusCommitted = "committed"
)

type AuditItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Expected    float64 `json:"expected"`
	Actual      float64 `json:"actual"`
	Difference  float64 `json:"difference"`
	LossValue   float64 `json:"loss_value"`
}

// InventoryAudit is a draft reconciliation session. It lives outside the
// snapshot document until committed, at which point its counted quantities
// overwrite recorded stock and the draft is discarded.
type InventoryAudit struct {
	ID     string      `json:"id"`
	Date   time.Time   `json:"date"`
	Items  []AuditItem `json:"items"`
	Status string      `json:"status"`
}

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)
