package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gstbill/gstbill/internal/config"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
	"github.com/gstbill/gstbill/internal/gst"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	productdomain "github.com/gstbill/gstbill/internal/product/domain"
	salesorderdomain "github.com/gstbill/gstbill/internal/salesorder/domain"
	"github.com/gstbill/gstbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Cfg   config.Config
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node

	sellerState string
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,

		sellerState: gst.StateCode(p.Cfg.SellerGSTIN),
	}
}

// Create issues an invoice in one transaction: resolve the buyer,
// build the tax lines, post the receivables delta, and reconcile the
// referenced sales order. Reconciliation validates every line before
// applying any quantity increment, so a failure aborts the whole
// transaction with nothing persisted.
func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusPending
	}
	if !invoicedomain.ValidStatus(status) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	invoiceDate := req.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now().UTC()
	}

	var created invoicedomain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.resolveCustomer(ctx, tx, req)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		invoice := invoicedomain.Invoice{
			ID:          s.genID.Generate(),
			Status:      status,
			InvoiceDate: invoiceDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if customer != nil {
			id := customer.ID
			invoice.CustomerID = &id
			invoice.CustomerName = customer.Name
			invoice.CustomerGSTIN = customer.GSTIN
			invoice.CustomerAddress = customer.Address
			invoice.BillingAddress = customer.BillingAddress
		} else {
			invoice.CustomerName = strings.TrimSpace(req.CustomerName)
			invoice.CustomerGSTIN = strings.TrimSpace(req.CustomerGSTIN)
			invoice.CustomerAddress = strings.TrimSpace(req.CustomerAddress)
			invoice.BillingAddress = strings.TrimSpace(req.BillingAddress)
		}
		if invoice.CustomerName == "" {
			return invoicedomain.ErrInvalidCustomer
		}

		items, total, err := s.buildLines(ctx, tx, invoice, req.Lines)
		if err != nil {
			return err
		}
		invoice.Items = items
		invoice.Amount = gst.Round2(total)

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		// Receivables only grow for registered customers whose invoice
		// is not already settled at issuance.
		if customer != nil && invoice.Status != invoicedomain.InvoiceStatusPaid {
			err := tx.Model(&customerdomain.Customer{}).
				Where("id = ?", customer.ID).
				Updates(map[string]any{
					"receivables": gorm.Expr("receivables + ?", invoice.Amount),
					"updated_at":  now,
				}).Error
			if err != nil {
				return err
			}
		}

		if strings.TrimSpace(req.SalesOrderID) != "" {
			if err := s.reconcileSalesOrder(ctx, tx, req.SalesOrderID, invoice.Items); err != nil {
				return err
			}
		}

		created = invoice
		return nil
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", created.ID.String()),
		zap.String("customer", created.CustomerName),
		zap.Int("lines", len(created.Items)),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]invoicedomain.Invoice, error) {
	var invoices []invoicedomain.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("invoice_date DESC").
		Find(&invoices).Error
	return invoices, err
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).
		Preload("Items").
		First(&invoice, "id = ?", invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
		}
		return invoicedomain.Invoice{}, err
	}
	return invoice, nil
}

// Update edits the invoice header. Line items and payments are never
// touched here.
func (s *Service) Update(ctx context.Context, id string, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if !invoicedomain.ValidStatus(req.Status) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	updates := map[string]any{
		"customer_name":    strings.TrimSpace(req.CustomerName),
		"customer_gstin":   strings.TrimSpace(req.CustomerGSTIN),
		"customer_address": strings.TrimSpace(req.CustomerAddress),
		"billing_address":  strings.TrimSpace(req.BillingAddress),
		"amount":           req.Amount,
		"status":           req.Status,
		"updated_at":       time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(updates).Error
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	return s.GetByID(ctx, id)
}

// BalanceOf returns amount minus the sum of applied payments, rounded
// to two decimals.
func (s *Service) BalanceOf(ctx context.Context, id string) (float64, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	var paid float64
	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?`,
		invoice.ID,
	).Scan(&paid).Error
	if err != nil {
		return 0, err
	}
	return gst.Round2(invoice.Amount - paid), nil
}

func (s *Service) resolveCustomer(ctx context.Context, tx *gorm.DB, req invoicedomain.CreateInvoiceRequest) (*customerdomain.Customer, error) {
	raw := strings.TrimSpace(req.CustomerID)
	if raw == "" {
		return nil, nil
	}

	customerID, err := snowflake.ParseString(raw)
	if err != nil {
		return nil, invoicedomain.ErrCustomerNotFound
	}

	var customer customerdomain.Customer
	if err := tx.WithContext(ctx).First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// buildLines resolves each requested product and computes its tax line.
// Unknown product ids are dropped with a warning; this is the one
// lenient path in invoice creation.
func (s *Service) buildLines(ctx context.Context, tx *gorm.DB, invoice invoicedomain.Invoice, lines []invoicedomain.LineRequest) ([]invoicedomain.InvoiceItem, float64, error) {
	buyerState := gst.StateCode(invoice.CustomerGSTIN)

	var items []invoicedomain.InvoiceItem
	var total float64
	for _, line := range lines {
		productID, err := snowflake.ParseString(strings.TrimSpace(line.ProductID))
		if err != nil {
			s.log.Warn("skipping unresolved product line", zap.String("product_id", line.ProductID))
			continue
		}

		var product productdomain.Product
		if err := tx.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.log.Warn("skipping unresolved product line", zap.String("product_id", line.ProductID))
				continue
			}
			return nil, 0, err
		}

		breakdown := gst.Calculate(product.Price, line.Quantity, product.TaxRate, s.sellerState, buyerState)
		total += breakdown.Total

		items = append(items, invoicedomain.InvoiceItem{
			ID:           s.genID.Generate(),
			InvoiceID:    invoice.ID,
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     line.Quantity,
			UnitPrice:    product.Price,
			TaxRate:      product.TaxRate,
			TaxableValue: breakdown.Taxable,
			CGST:         breakdown.CGST,
			SGST:         breakdown.SGST,
			IGST:         breakdown.IGST,
			Total:        breakdown.Total,
		})
	}
	return items, total, nil
}

// reconcileSalesOrder matches the invoice items against the order's
// lines under row locks, validating every line before applying any
// increment. Two invoice items for the same product accumulate against
// the same remaining quantity.
func (s *Service) reconcileSalesOrder(ctx context.Context, tx *gorm.DB, rawOrderID string, items []invoicedomain.InvoiceItem) error {
	orderID, err := snowflake.ParseString(strings.TrimSpace(rawOrderID))
	if err != nil {
		return invoicedomain.ErrSalesOrderNotFound
	}

	var order salesorderdomain.SalesOrder
	if err := db.LockForUpdate(tx.WithContext(ctx)).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invoicedomain.ErrSalesOrderNotFound
		}
		return err
	}

	var lines []salesorderdomain.SalesOrderItem
	if err := db.LockForUpdate(tx.WithContext(ctx)).
		Where("sales_order_id = ?", order.ID).
		Find(&lines).Error; err != nil {
		return err
	}

	byProduct := make(map[snowflake.ID]*salesorderdomain.SalesOrderItem, len(lines))
	for i := range lines {
		byProduct[lines[i].ProductID] = &lines[i]
	}

	// Phase one: validate everything against the locked quantities.
	increments := make(map[snowflake.ID]int64)
	for _, item := range items {
		line, ok := byProduct[item.ProductID]
		if !ok {
			return salesorderdomain.ErrProductNotOnOrder
		}
		remaining := line.OrderedQty - line.InvoicedQty - increments[line.ID]
		if item.Quantity > remaining {
			return salesorderdomain.ErrQuantityExceedsRemaining
		}
		increments[line.ID] += item.Quantity
	}

	// Phase two: apply the increments and recompute the order status.
	for i := range lines {
		inc := increments[lines[i].ID]
		if inc == 0 {
			continue
		}
		err := tx.WithContext(ctx).
			Model(&salesorderdomain.SalesOrderItem{}).
			Where("id = ?", lines[i].ID).
			UpdateColumn("invoiced_qty", gorm.Expr("invoiced_qty + ?", inc)).Error
		if err != nil {
			return err
		}
		lines[i].InvoicedQty += inc
	}

	status := salesorderdomain.DeriveStatus(lines)
	return tx.WithContext(ctx).
		Model(&salesorderdomain.SalesOrder{}).
		Where("id = ?", order.ID).
		Update("status", status).Error
}
