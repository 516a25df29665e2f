package domain

import "time"

// CartLine is one line of a sale request. UnitPrice is the discounted unit
// sell price the cashier agreed on, which may differ from the catalog price.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type SaleRequest struct {
	Items          []CartLine `json:"items"`
	Discount       float64    `json:"discount"`
	PaidNow        float64    `json:"paid_now"`
	CustomerID     string     `json:"customer_id,omitempty"`
	PointsRedeemed int        `json:"points_redeemed,omitempty"`
}

type RefundMethod string

const (
	RefundCash      RefundMethod = "cash"
	RefundReduceDue RefundMethod = "reduce_due"
)

type ReturnLine struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"qty"`
}

type ReturnRequest struct {
	SaleID string       `json:"sale_id"`
	Items  []ReturnLine `json:"items"`
	Method RefundMethod `json:"method"`
}

// ReturnResult reports what a processed return did to the books.
type ReturnResult struct {
	SaleID       string       `json:"sale_id"`
	RefundAmount float64      `json:"refund_amount"`
	Method       RefundMethod `json:"method"`
	Items        []ReturnLine `json:"items"`
}

type PurchaseRequest struct {
	SupplierID string                `json:"supplier_id"`
	Items      []PurchaseInvoiceItem `json:"items"`
	PaidAmount float64               `json:"paid_amount"`
}

type ExpenseRequest struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Notes    string  `json:"notes"`
}

type ProductUpsert struct {
	ID             string  `json:"id,omitempty"`
	Name           string  `json:"name"`
	Barcode        string  `json:"barcode"`
	PurchasePrice  float64 `json:"purchase_price"`
	SellPrice      float64 `json:"sell_price"`
	StockQuantity  float64 `json:"stock_quantity"`
	AlertThreshold float64 `json:"alert_threshold"`
	ShowInCatalog  *bool   `json:"show_in_catalog,omitempty"`
}

type CustomerUpsert struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	WhatsApp string  `json:"whatsapp,omitempty"`
	Balance  float64 `json:"balance"`
	Points   int     `json:"points"`
}

type SupplierUpsert struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Balance float64 `json:"balance"`
}

type UserUpsert struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	PIN  string `json:"pin"`
	Role string `json:"role"`
}

type LoginRequest struct {
	UserID string `json:"user_id"`
	PIN    string `json:"pin"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor identifies the authenticated user attached to a request context.
type Actor struct {
	UserID string
	Name   string
	Role   string
}

// Report is the read-only rollup derived from a snapshot and the current date.
type Report struct {
	TodaySales       float64       `json:"todaySales"`
	TodayCashIn      float64       `json:"todayCashIn"`
	TodayProfit      float64       `json:"todayProfit"`
	TodayExpenses    float64       `json:"todayExpenses"`
	NetProfit        float64       `json:"netProfit"`
	TotalReceivables float64       `json:"totalReceivables"`
	TotalPayables    float64       `json:"totalPayables"`
	LowStock         []Product     `json:"lowStock"`
	TopProducts      []TopProduct  `json:"topProducts"`
	ChartData        []ChartPoint  `json:"chartData"`
	Shift            *ShiftReport  `json:"shift,omitempty"`
}

type TopProduct struct {
	Name string  `json:"name"`
	Qty  float64 `json:"qty"`
}

type ChartPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type ShiftReport struct {
	OpeningBalance float64    `json:"openingBalance"`
	ExpectedCash   float64    `json:"expectedCash"`
	NetMovement    float64    `json:"netMovement"`
	StartTime      *time.Time `json:"startTime"`
}
