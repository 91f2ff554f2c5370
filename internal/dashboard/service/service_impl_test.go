package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	paymentdomain "github.com/gstbill/gstbill/internal/payment/domain"
	salesorderdomain "github.com/gstbill/gstbill/internal/salesorder/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
		&salesorderdomain.SalesOrder{},
	))
	return db
}

func TestMonthly_BucketsByCalendarMonth(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{DB: db, Log: zap.NewNop()})

	at := func(month time.Month, day int) time.Time {
		return time.Date(2026, month, day, 12, 0, 0, 0, time.UTC)
	}

	invoices := []invoicedomain.Invoice{
		{ID: node.Generate(), CustomerName: "A", Amount: 100, Status: invoicedomain.InvoiceStatusPending, InvoiceDate: at(time.January, 5)},
		{ID: node.Generate(), CustomerName: "B", Amount: 250, Status: invoicedomain.InvoiceStatusPaid, InvoiceDate: at(time.January, 20)},
		{ID: node.Generate(), CustomerName: "C", Amount: 400, Status: invoicedomain.InvoiceStatusPartiallyPaid, InvoiceDate: at(time.March, 1)},
		// Outside the requested year.
		{ID: node.Generate(), CustomerName: "D", Amount: 999, Status: invoicedomain.InvoiceStatusPending, InvoiceDate: time.Date(2025, time.December, 31, 12, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, db.Create(&invoices).Error)

	payments := []paymentdomain.Payment{
		{ID: node.Generate(), PaymentNo: "PAY-00001", SeqNo: 1, InvoiceID: invoices[1].ID, Amount: 250, PaidAt: at(time.February, 2)},
		{ID: node.Generate(), PaymentNo: "PAY-00002", SeqNo: 2, InvoiceID: invoices[2].ID, Amount: 150, PaidAt: at(time.March, 9)},
	}
	require.NoError(t, db.Create(&payments).Error)

	orders := []salesorderdomain.SalesOrder{
		{ID: node.Generate(), SONumber: "SO-00001", SeqNo: 1, CustomerID: node.Generate(), TotalValue: 1200, Status: salesorderdomain.OrderStatusOpen, OrderDate: at(time.March, 15)},
	}
	require.NoError(t, db.Create(&orders).Error)

	series, err := svc.Monthly(context.Background(), 2026)
	require.NoError(t, err)

	require.Equal(t, 2026, series.Year)
	require.Len(t, series.Months, 12)

	require.Equal(t, 350.0, series.Sales[0])
	require.Equal(t, 0.0, series.Sales[1])
	require.Equal(t, 400.0, series.Sales[2])

	require.Equal(t, 250.0, series.Payments[1])
	require.Equal(t, 150.0, series.Payments[2])

	// Paid invoices drop out of the receivables series.
	require.Equal(t, 100.0, series.Receivables[0])
	require.Equal(t, 400.0, series.Receivables[2])

	require.Equal(t, 1200.0, series.Orders[2])

	for _, v := range series.Expenses {
		require.Equal(t, 0.0, v)
	}
}

func TestMonthly_EmptyYear(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(ServiceParam{DB: db, Log: zap.NewNop()})

	series, err := svc.Monthly(context.Background(), 2020)
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		require.Equal(t, 0.0, series.Sales[i])
		require.Equal(t, 0.0, series.Payments[i])
		require.Equal(t, 0.0, series.Receivables[i])
		require.Equal(t, 0.0, series.Orders[i])
	}
}
