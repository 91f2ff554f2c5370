package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	categorydomain "github.com/gstbill/gstbill/internal/category/domain"
	"github.com/gstbill/gstbill/internal/config"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	paymentdomain "github.com/gstbill/gstbill/internal/payment/domain"
	productdomain "github.com/gstbill/gstbill/internal/product/domain"
	salesorderdomain "github.com/gstbill/gstbill/internal/salesorder/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sellerGSTIN = "33ABCDE1234F1Z5"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&categorydomain.Category{},
		&productdomain.Product{},
		&customerdomain.Customer{},
		&salesorderdomain.SalesOrder{},
		&salesorderdomain.SalesOrderItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
	))
	return db
}

func newTestService(t *testing.T, db *gorm.DB) (invoicedomain.Service, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Cfg:   config.Config{SellerGSTIN: sellerGSTIN},
	})
	return svc, node
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, gstin string) customerdomain.Customer {
	t.Helper()

	customer := customerdomain.Customer{
		ID:             node.Generate(),
		Name:           "Acme Traders",
		GSTIN:          gstin,
		Address:        "12 Market Road",
		BillingAddress: "12 Market Road",
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, name string, price, taxRate float64) productdomain.Product {
	t.Helper()

	category := categorydomain.Category{ID: node.Generate(), Name: "cat-" + name}
	require.NoError(t, db.Create(&category).Error)

	product := productdomain.Product{
		ID:         node.Generate(),
		Name:       name,
		Price:      price,
		TaxRate:    taxRate,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestCreateInvoice_IntraStateSplitsCGSTAndSGST(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	inv, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)

	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	require.Equal(t, 200.0, item.TaxableValue)
	require.Equal(t, 18.0, item.CGST)
	require.Equal(t, 18.0, item.SGST)
	require.Equal(t, 0.0, item.IGST)
	require.Equal(t, 236.0, item.Total)
	require.Equal(t, 236.0, inv.Amount)
	require.Equal(t, invoicedomain.InvoiceStatusPending, inv.Status)

	var got customerdomain.Customer
	require.NoError(t, db.First(&got, "id = ?", customer.ID).Error)
	require.Equal(t, 236.0, got.Receivables)
}

func TestCreateInvoice_InterStateUsesIGST(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "29AACCA1234B1Z8")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	inv, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)

	item := inv.Items[0]
	require.Equal(t, 0.0, item.CGST)
	require.Equal(t, 0.0, item.SGST)
	require.Equal(t, 36.0, item.IGST)
	require.Equal(t, 236.0, item.Total)
}

func TestCreateInvoice_WalkInBuyerSkipsReceivables(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	inv, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerName: "Walk-in Buyer",
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Nil(t, inv.CustomerID)
	require.Equal(t, "Walk-in Buyer", inv.CustomerName)

	var count int64
	require.NoError(t, db.Model(&customerdomain.Customer{}).Where("receivables > 0").Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateInvoice_PaidAtIssuanceSkipsReceivables(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	_, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Status:     invoicedomain.InvoiceStatusPaid,
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	var got customerdomain.Customer
	require.NoError(t, db.First(&got, "id = ?", customer.ID).Error)
	require.Equal(t, 0.0, got.Receivables)
}

func TestCreateInvoice_SkipsUnknownProductLines(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	inv, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 1},
			{ProductID: node.Generate().String(), Quantity: 3},
			{ProductID: "not-an-id", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	require.Equal(t, product.ID, inv.Items[0].ProductID)
}

func TestCreateInvoice_RejectsUnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	_, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: node.Generate().String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 1},
		},
	})
	require.ErrorIs(t, err, invoicedomain.ErrCustomerNotFound)
}

func seedSalesOrder(t *testing.T, db *gorm.DB, node *snowflake.Node, customer customerdomain.Customer, product productdomain.Product, ordered, invoiced int64) salesorderdomain.SalesOrder {
	t.Helper()

	order := salesorderdomain.SalesOrder{
		ID:         node.Generate(),
		SONumber:   salesorderdomain.FormatSONumber(1),
		SeqNo:      1,
		CustomerID: customer.ID,
		Status:     salesorderdomain.OrderStatusOpen,
		Items: []salesorderdomain.SalesOrderItem{
			{
				ID:          node.Generate(),
				ProductID:   product.ID,
				ProductName: product.Name,
				OrderedQty:  ordered,
				InvoicedQty: invoiced,
				UnitPrice:   product.Price,
			},
		},
	}
	order.Items[0].SalesOrderID = order.ID
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestCreateInvoice_ReconcilesSalesOrder(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)
	order := seedSalesOrder(t, db, node, customer, product, 10, 0)

	_, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customer.ID.String(),
		SalesOrderID: order.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 4},
		},
	})
	require.NoError(t, err)

	var line salesorderdomain.SalesOrderItem
	require.NoError(t, db.First(&line, "sales_order_id = ?", order.ID).Error)
	require.Equal(t, int64(4), line.InvoicedQty)

	var got salesorderdomain.SalesOrder
	require.NoError(t, db.First(&got, "id = ?", order.ID).Error)
	require.Equal(t, salesorderdomain.OrderStatusPartiallyInvoiced, got.Status)

	// Invoicing the remainder completes the order.
	_, err = svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customer.ID.String(),
		SalesOrderID: order.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 6},
		},
	})
	require.NoError(t, err)

	require.NoError(t, db.First(&got, "id = ?", order.ID).Error)
	require.Equal(t, salesorderdomain.OrderStatusCompleted, got.Status)
}

func TestCreateInvoice_ReconcileRejectsExcessQuantity(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)
	order := seedSalesOrder(t, db, node, customer, product, 10, 7)

	_, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customer.ID.String(),
		SalesOrderID: order.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 5},
		},
	})
	require.ErrorIs(t, err, salesorderdomain.ErrQuantityExceedsRemaining)

	// Nothing from the aborted transaction survives.
	var invoiceCount int64
	require.NoError(t, db.Model(&invoicedomain.Invoice{}).Count(&invoiceCount).Error)
	require.Zero(t, invoiceCount)

	var line salesorderdomain.SalesOrderItem
	require.NoError(t, db.First(&line, "sales_order_id = ?", order.ID).Error)
	require.Equal(t, int64(7), line.InvoicedQty)

	var got customerdomain.Customer
	require.NoError(t, db.First(&got, "id = ?", customer.ID).Error)
	require.Equal(t, 0.0, got.Receivables)
}

func TestCreateInvoice_ReconcileRejectsProductNotOnOrder(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	ordered := seedProduct(t, db, node, "Copper Wire", 100, 18)
	other := seedProduct(t, db, node, "PVC Conduit", 85, 12)
	order := seedSalesOrder(t, db, node, customer, ordered, 10, 0)

	_, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customer.ID.String(),
		SalesOrderID: order.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: other.ID.String(), Quantity: 1},
		},
	})
	require.ErrorIs(t, err, salesorderdomain.ErrProductNotOnOrder)

	var invoiceCount int64
	require.NoError(t, db.Model(&invoicedomain.Invoice{}).Count(&invoiceCount).Error)
	require.Zero(t, invoiceCount)
}

func TestCreateInvoice_DuplicateLinesAccumulateAgainstRemaining(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)
	order := seedSalesOrder(t, db, node, customer, product, 10, 0)

	_, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID:   customer.ID.String(),
		SalesOrderID: order.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 6},
			{ProductID: product.ID.String(), Quantity: 6},
		},
	})
	require.ErrorIs(t, err, salesorderdomain.ErrQuantityExceedsRemaining)
}

func TestBalanceOf_SubtractsAppliedPayments(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	inv, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)

	payment := paymentdomain.Payment{
		ID:        node.Generate(),
		PaymentNo: paymentdomain.FormatPaymentNo(1),
		SeqNo:     1,
		InvoiceID: inv.ID,
		Amount:    100,
	}
	require.NoError(t, db.Create(&payment).Error)

	balance, err := svc.BalanceOf(context.Background(), inv.ID.String())
	require.NoError(t, err)
	require.Equal(t, 136.0, balance)
}

func TestUpdateInvoice_RejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc, node := newTestService(t, db)

	customer := seedCustomer(t, db, node, "33ZZZZZ9999Z9Z9")
	product := seedProduct(t, db, node, "Copper Wire", 100, 18)

	inv, err := svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Lines: []invoicedomain.LineRequest{
			{ProductID: product.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), inv.ID.String(), invoicedomain.UpdateInvoiceRequest{
		CustomerName: "Acme Traders",
		Status:       "Overdue",
	})
	require.ErrorIs(t, err, invoicedomain.ErrInvalidStatus)
}
