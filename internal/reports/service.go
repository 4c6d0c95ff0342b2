// Package reports aggregates sales and fulfilment figures for the admin
// dashboard. Cancelled orders are excluded from every revenue figure.
package reports

import (
	"context"
	"time"

	"flora-commerce/internal/models"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// SalesReport aggregates order revenue over a date range.
type SalesReport struct {
	Start        string          `json:"start"`
	End          string          `json:"end"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalOrders  int             `json:"total_orders"`
	DailySales   []DailySales    `json:"daily_sales"`
}

// DailySales contains metrics for a single day.
type DailySales struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"order_count"`
}

// TopProduct ranks a product by units sold within a date range.
type TopProduct struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DeliveryStatusCount is one row of the fulfilment breakdown.
type DeliveryStatusCount struct {
	Status models.DeliveryStatus `json:"status"`
	Count  int                   `json:"count"`
}

// GetSalesReport returns daily revenue and order counts for orders created in
// [start, end). Both bounds are truncated to midnight by the caller.
func (s *Service) GetSalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	type dailySalesRaw struct {
		SalesDate    time.Time       `bun:"sales_date"`
		DailyRevenue decimal.Decimal `bun:"daily_revenue"`
		OrderCount   int             `bun:"order_count"`
	}

	var dailySales []dailySalesRaw
	rawSQL := `
		SELECT
			DATE(created_at) AS sales_date,
			SUM(total_amount) AS daily_revenue,
			COUNT(*) AS order_count
		FROM orders
		WHERE
			created_at >= ?
			AND created_at < ?
			AND status != 'CANCELLED'
		GROUP BY
			DATE(created_at)
		ORDER BY
			sales_date
	`

	err := s.db.NewRaw(rawSQL, start, end).Scan(ctx, &dailySales)
	if err != nil {
		return nil, err
	}

	result := &SalesReport{
		Start:        start.Format("2006-01-02"),
		End:          end.Format("2006-01-02"),
		TotalRevenue: decimal.Zero,
		DailySales:   make([]DailySales, 0, len(dailySales)),
	}

	for _, ds := range dailySales {
		result.TotalRevenue = result.TotalRevenue.Add(ds.DailyRevenue)
		result.TotalOrders += ds.OrderCount
		result.DailySales = append(result.DailySales, DailySales{
			Date:       ds.SalesDate.Format("2006-01-02"),
			Revenue:    ds.DailyRevenue,
			OrderCount: ds.OrderCount,
		})
	}

	return result, nil
}

// GetTopProducts returns the best selling products by units sold for orders
// created in [start, end).
func (s *Service) GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}

	type topProductRaw struct {
		ProductID   int64           `bun:"product_id"`
		ProductName string          `bun:"product_name"`
		UnitsSold   int             `bun:"units_sold"`
		Revenue     decimal.Decimal `bun:"revenue"`
	}

	var rows []topProductRaw
	rawSQL := `
		SELECT
			oi.product_id,
			p.name AS product_name,
			SUM(oi.quantity) AS units_sold,
			SUM(oi.subtotal) AS revenue
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN products p ON oi.product_id = p.id
		WHERE
			o.created_at >= ?
			AND o.created_at < ?
			AND o.status != 'CANCELLED'
		GROUP BY
			oi.product_id, p.name
		ORDER BY
			units_sold DESC
		LIMIT ?
	`

	err := s.db.NewRaw(rawSQL, start, end, limit).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	result := make([]TopProduct, 0, len(rows))
	for _, row := range rows {
		result = append(result, TopProduct(row))
	}
	return result, nil
}

// GetDeliveryStatusCounts returns how many deliveries sit in each status.
func (s *Service) GetDeliveryStatusCounts(ctx context.Context) ([]DeliveryStatusCount, error) {
	type statusCountRaw struct {
		Status models.DeliveryStatus `bun:"status"`
		Count  int                   `bun:"status_count"`
	}

	var rows []statusCountRaw
	rawSQL := `
		SELECT
			status,
			COUNT(*) AS status_count
		FROM deliveries
		GROUP BY
			status
		ORDER BY
			status
	`

	err := s.db.NewRaw(rawSQL).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	result := make([]DeliveryStatusCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, DeliveryStatusCount{Status: row.Status, Count: row.Count})
	}
	return result, nil
}
