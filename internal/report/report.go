// Package report derives read-only rollups from a snapshot. Nothing here
// mutates or caches: every call recomputes from the full document.
package report

import (
	"sort"
	"time"

	"superpos/backend/internal/domain"
)

const chartDays = 7

// Build aggregates the snapshot as of now: today's sales, cash-in, profit and
// expenses, outstanding receivables/payables, the low-stock list, top sellers,
// a trailing 7-day sales series (oldest first), and the open-shift drawer
// expectation when a shift is running.
func Build(snap domain.Snapshot, now time.Time) domain.Report {
	today := now.Format("2006-01-02")

	r := domain.Report{
		LowStock:    make([]domain.Product, 0, 8),
		TopProducts: make([]domain.TopProduct, 0, 5),
		ChartData:   make([]domain.ChartPoint, 0, chartDays),
	}

	saleDay := make(map[string]string, len(snap.Sales))
	for _, sale := range snap.Sales {
		saleDay[sale.ID] = sale.CreatedAt.Format("2006-01-02")
		if saleDay[sale.ID] == today {
			r.TodaySales += sale.TotalAmount
		}
	}

	qtyToday := make(map[string]float64)
	for _, item := range snap.SaleItems {
		if saleDay[item.SaleID] != today {
			continue
		}
		r.TodayProfit += item.LineProfit
		qtyToday[item.ProductName] += item.Quantity
	}

	for _, expense := range snap.Expenses {
		if expense.Date.Format("2006-01-02") == today {
			r.TodayExpenses += expense.Amount
		}
	}
	for _, entry := range snap.CashLedger {
		if entry.MovementType == domain.MovementSaleCashIn && entry.Date.Format("2006-01-02") == today {
			r.TodayCashIn += entry.Amount
		}
	}
	r.NetProfit = r.TodayProfit - r.TodayExpenses

	for _, customer := range snap.Customers {
		r.TotalReceivables += customer.Balance
	}
	for _, supplier := range snap.Suppliers {
		r.TotalPayables += supplier.Balance
	}

	for _, product := range snap.Products {
		if product.StockQuantity <= product.AlertThreshold {
			r.LowStock = append(r.LowStock, product)
		}
	}

	for name, qty := range qtyToday {
		r.TopProducts = append(r.TopProducts, domain.TopProduct{Name: name, Qty: qty})
	}
	sort.Slice(r.TopProducts, func(i, j int) bool {
		if r.TopProducts[i].Qty == r.TopProducts[j].Qty {
			return r.TopProducts[i].Name < r.TopProducts[j].Name
		}
		return r.TopProducts[i].Qty > r.TopProducts[j].Qty
	})
	if len(r.TopProducts) > 5 {
		r.TopProducts = r.TopProducts[:5]
	}

	salesByDay := make(map[string]float64, chartDays)
	for _, sale := range snap.Sales {
		salesByDay[saleDay[sale.ID]] += sale.TotalAmount
	}
	for i := chartDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		r.ChartData = append(r.ChartData, domain.ChartPoint{Date: day, Amount: salesByDay[day]})
	}

	if snap.CurrentShift.IsOpen && snap.CurrentShift.StartTime != nil {
		start := *snap.CurrentShift.StartTime
		expected := snap.CurrentShift.OpeningBalance
		netMovement := 0.0
		for _, entry := range snap.CashLedger {
			if entry.Date.Before(start) {
				continue
			}
			expected += entry.Amount
			if entry.MovementType == domain.MovementSaleCashIn {
				netMovement += entry.Amount
			}
		}
		r.Shift = &domain.ShiftReport{
			OpeningBalance: snap.CurrentShift.OpeningBalance,
			ExpectedCash:   expected,
			NetMovement:    netMovement,
			StartTime:      snap.CurrentShift.StartTime,
		}
	}

	return r
}
