package service

import (
	"context"
	"time"

	dashboarddomain "github.com/gstbill/gstbill/internal/dashboard/domain"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var monthLabels = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p ServiceParam) dashboarddomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("dashboard.service"),
	}
}

type amountRow struct {
	At     time.Time
	Amount float64
}

// Monthly aggregates the year's invoices, payments, open receivables
// and sales orders into per-month buckets. Rows are fetched for the
// year and bucketed here, which keeps the query identical across the
// supported dialects.
func (s *Service) Monthly(ctx context.Context, year int) (dashboarddomain.MonthlySeries, error) {
	series := dashboarddomain.MonthlySeries{
		Year:        year,
		Months:      monthLabels,
		Sales:       make([]float64, 12),
		Payments:    make([]float64, 12),
		Receivables: make([]float64, 12),
		Orders:      make([]float64, 12),
		Expenses:    make([]float64, 12),
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	queries := []struct {
		sql    string
		series []float64
	}{
		{
			sql:    `SELECT invoice_date AS at, amount FROM invoices WHERE invoice_date >= ? AND invoice_date < ?`,
			series: series.Sales,
		},
		{
			sql:    `SELECT paid_at AS at, amount FROM payments WHERE paid_at >= ? AND paid_at < ?`,
			series: series.Payments,
		},
		{
			sql:    `SELECT invoice_date AS at, amount FROM invoices WHERE status <> '` + string(invoicedomain.InvoiceStatusPaid) + `' AND invoice_date >= ? AND invoice_date < ?`,
			series: series.Receivables,
		},
		{
			sql:    `SELECT order_date AS at, total_value AS amount FROM sales_orders WHERE order_date >= ? AND order_date < ?`,
			series: series.Orders,
		},
	}

	for _, q := range queries {
		var rows []amountRow
		if err := s.db.WithContext(ctx).Raw(q.sql, from, to).Scan(&rows).Error; err != nil {
			return dashboarddomain.MonthlySeries{}, err
		}
		for _, row := range rows {
			q.series[int(row.At.UTC().Month())-1] += row.Amount
		}
	}

	return series, nil
}
