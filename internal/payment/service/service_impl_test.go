package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	paymentdomain "github.com/gstbill/gstbill/internal/payment/domain"
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
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) (paymentdomain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	return svc, node
}

func seedInvoice(t *testing.T, db *gorm.DB, node *snowflake.Node, amount, receivables float64) (invoicedomain.Invoice, customerdomain.Customer) {
	t.Helper()

	customer := customerdomain.Customer{
		ID:             node.Generate(),
		Name:           "Acme Traders",
		GSTIN:          "33ZZZZZ9999Z9Z9",
		Address:        "12 Market Road",
		BillingAddress: "12 Market Road",
		Receivables:    receivables,
	}
	require.NoError(t, db.Create(&customer).Error)

	id := customer.ID
	invoice := invoicedomain.Invoice{
		ID:           node.Generate(),
		CustomerID:   &id,
		CustomerName: customer.Name,
		Amount:       amount,
		Status:       invoicedomain.InvoiceStatusPending,
		InvoiceDate:  time.Now().UTC(),
	}
	require.NoError(t, db.Create(&invoice).Error)
	return invoice, customer
}

func TestCreatePayment_ClampsToOutstandingBalance(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	invoice, customer := seedInvoice(t, db, node, 300, 300)

	payment, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    1000,
		Mode:      "UPI",
	})
	require.NoError(t, err)
	require.Equal(t, 300.0, payment.Amount)
	require.Equal(t, "PAY-00001", payment.PaymentNo)
	require.NotNil(t, payment.CustomerID)
	require.Equal(t, customer.ID, *payment.CustomerID)

	var gotInvoice invoicedomain.Invoice
	require.NoError(t, db.First(&gotInvoice, "id = ?", invoice.ID).Error)
	require.Equal(t, invoicedomain.InvoiceStatusPaid, gotInvoice.Status)

	var gotCustomer customerdomain.Customer
	require.NoError(t, db.First(&gotCustomer, "id = ?", customer.ID).Error)
	require.Equal(t, 0.0, gotCustomer.Receivables)
}

func TestCreatePayment_PartialLeavesPartiallyPaid(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	invoice, customer := seedInvoice(t, db, node, 500, 500)

	payment, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    200,
	})
	require.NoError(t, err)
	require.Equal(t, 200.0, payment.Amount)

	var gotInvoice invoicedomain.Invoice
	require.NoError(t, db.First(&gotInvoice, "id = ?", invoice.ID).Error)
	require.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, gotInvoice.Status)

	var gotCustomer customerdomain.Customer
	require.NoError(t, db.First(&gotCustomer, "id = ?", customer.ID).Error)
	require.Equal(t, 300.0, gotCustomer.Receivables)
}

func TestCreatePayment_RejectsNonPositiveAmount(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	invoice, _ := seedInvoice(t, db, node, 500, 500)

	for _, amount := range []float64{0, -10} {
		_, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
			InvoiceID: invoice.ID.String(),
			Amount:    amount,
		})
		require.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)
	}

	var count int64
	require.NoError(t, db.Model(&paymentdomain.Payment{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreatePayment_UnknownInvoice(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	_, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: node.Generate().String(),
		Amount:    100,
	})
	require.ErrorIs(t, err, paymentdomain.ErrInvoiceNotFound)
}

func TestCreatePayment_SequentialNumbering(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	invoice, _ := seedInvoice(t, db, node, 500, 500)

	first, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    100,
	})
	require.NoError(t, err)
	require.Equal(t, "PAY-00001", first.PaymentNo)

	second, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    100,
	})
	require.NoError(t, err)
	require.Equal(t, "PAY-00002", second.PaymentNo)
}

func TestCreatePayment_ReceivablesFloorAtZero(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	// Cache undercounts the real exposure; the floor keeps it at zero
	// instead of going negative.
	invoice, customer := seedInvoice(t, db, node, 500, 100)

	_, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    400,
	})
	require.NoError(t, err)

	var gotCustomer customerdomain.Customer
	require.NoError(t, db.First(&gotCustomer, "id = ?", customer.ID).Error)
	require.Equal(t, 0.0, gotCustomer.Receivables)
}

func TestRevisePayment_ClampsToBalancePlusOldAmount(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	invoice, customer := seedInvoice(t, db, node, 500, 500)

	payment, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    200,
	})
	require.NoError(t, err)

	revised, err := svc.Revise(context.Background(), payment.ID.String(), paymentdomain.RevisePaymentRequest{
		Amount: 600,
		Mode:   "NEFT",
	})
	require.NoError(t, err)
	require.Equal(t, 500.0, revised.Amount)
	require.Equal(t, "NEFT", revised.Mode)

	var gotInvoice invoicedomain.Invoice
	require.NoError(t, db.First(&gotInvoice, "id = ?", invoice.ID).Error)
	require.Equal(t, invoicedomain.InvoiceStatusPaid, gotInvoice.Status)

	var gotCustomer customerdomain.Customer
	require.NoError(t, db.First(&gotCustomer, "id = ?", customer.ID).Error)
	require.Equal(t, 0.0, gotCustomer.Receivables)
}

func TestRevisePayment_ToZeroStaysPartiallyPaid(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	invoice, customer := seedInvoice(t, db, node, 500, 500)

	payment, err := svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		InvoiceID: invoice.ID.String(),
		Amount:    200,
	})
	require.NoError(t, err)

	revised, err := svc.Revise(context.Background(), payment.ID.String(), paymentdomain.RevisePaymentRequest{
		Amount: 0,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, revised.Amount)

	// The invoice never reverts to Pending once a payment exists.
	var gotInvoice invoicedomain.Invoice
	require.NoError(t, db.First(&gotInvoice, "id = ?", invoice.ID).Error)
	require.Equal(t, invoicedomain.InvoiceStatusPartiallyPaid, gotInvoice.Status)

	var gotCustomer customerdomain.Customer
	require.NoError(t, db.First(&gotCustomer, "id = ?", customer.ID).Error)
	require.Equal(t, 500.0, gotCustomer.Receivables)
}

func TestRevisePayment_UnknownPayment(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	_, err := svc.Revise(context.Background(), node.Generate().String(), paymentdomain.RevisePaymentRequest{
		Amount: 100,
	})
	require.ErrorIs(t, err, paymentdomain.ErrNotFound)
}
