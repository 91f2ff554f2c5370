package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
	"github.com/gstbill/gstbill/internal/gst"
	invoicedomain "github.com/gstbill/gstbill/internal/invoice/domain"
	paymentdomain "github.com/gstbill/gstbill/internal/payment/domain"
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
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p ServiceParam) paymentdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
	}
}

// Create applies a payment to an invoice. The requested amount is
// clamped to the outstanding balance rather than rejected; only
// non-positive requests fail. The invoice row is locked so concurrent
// payments cannot both pass the balance check.
func (s *Service) Create(ctx context.Context, req paymentdomain.CreatePaymentRequest) (paymentdomain.Payment, error) {
	if req.Amount <= 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidAmount
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil {
		return paymentdomain.Payment{}, paymentdomain.ErrInvoiceNotFound
	}

	var created paymentdomain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		balance, err := s.balanceOf(ctx, tx, invoice)
		if err != nil {
			return err
		}

		amount := req.Amount
		if amount > balance {
			amount = balance
		}

		seq, err := s.nextSeqNo(ctx, tx)
		if err != nil {
			return err
		}

		customer, err := s.resolveCustomer(ctx, tx, invoice)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		payment := paymentdomain.Payment{
			ID:        s.genID.Generate(),
			PaymentNo: paymentdomain.FormatPaymentNo(seq),
			SeqNo:     seq,
			InvoiceID: invoice.ID,
			Amount:    amount,
			Mode:      strings.TrimSpace(req.Mode),
			Reference: strings.TrimSpace(req.Reference),
			PaidAt:    now,
			CreatedAt: now,
		}
		if customer != nil {
			id := customer.ID
			payment.CustomerID = &id
		}

		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if customer != nil {
			if err := s.adjustReceivables(ctx, tx, customer.ID, -amount); err != nil {
				return err
			}
		}

		newBalance := gst.Round2(balance - amount)
		if err := s.setInvoiceStatus(ctx, tx, invoice.ID, newBalance); err != nil {
			return err
		}

		created = payment
		return nil
	})
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	s.log.Info("payment recorded",
		zap.String("payment_no", created.PaymentNo),
		zap.String("invoice_id", created.InvoiceID.String()),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}

// Revise updates a recorded payment. The new amount is clamped to the
// balance the invoice would have if the old payment were reversed. The
// invoice never reverts to Pending, even when the revised amount is
// zero; it stays Partially Paid.
func (s *Service) Revise(ctx context.Context, id string, req paymentdomain.RevisePaymentRequest) (paymentdomain.Payment, error) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidID
	}

	var revised paymentdomain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment paymentdomain.Payment
		if err := db.LockForUpdate(tx.WithContext(ctx)).First(&payment, "id = ?", paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return paymentdomain.ErrNotFound
			}
			return err
		}

		invoice, err := s.lockInvoice(ctx, tx, payment.InvoiceID)
		if err != nil {
			return err
		}

		balance, err := s.balanceOf(ctx, tx, invoice)
		if err != nil {
			return err
		}

		oldAmount := payment.Amount
		maxAllowed := gst.Round2(balance + oldAmount)
		newAmount := req.Amount
		if newAmount > maxAllowed {
			newAmount = maxAllowed
		}

		err = tx.WithContext(ctx).
			Model(&paymentdomain.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]any{
				"amount":    newAmount,
				"mode":      strings.TrimSpace(req.Mode),
				"reference": strings.TrimSpace(req.Reference),
			}).Error
		if err != nil {
			return err
		}

		if payment.CustomerID != nil {
			if err := s.adjustReceivables(ctx, tx, *payment.CustomerID, oldAmount-newAmount); err != nil {
				return err
			}
		}

		newBalance := gst.Round2(balance + oldAmount - newAmount)
		if err := s.setInvoiceStatus(ctx, tx, invoice.ID, newBalance); err != nil {
			return err
		}

		payment.Amount = newAmount
		payment.Mode = strings.TrimSpace(req.Mode)
		payment.Reference = strings.TrimSpace(req.Reference)
		revised = payment
		return nil
	})
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	s.log.Info("payment revised",
		zap.String("payment_no", revised.PaymentNo),
		zap.Float64("amount", revised.Amount),
	)
	return revised, nil
}

func (s *Service) List(ctx context.Context) ([]paymentdomain.Payment, error) {
	var payments []paymentdomain.Payment
	err := s.db.WithContext(ctx).
		Order("paid_at DESC").
		Find(&payments).Error
	return payments, err
}

func (s *Service) GetByID(ctx context.Context, id string) (paymentdomain.Payment, error) {
	paymentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidID
	}

	var payment paymentdomain.Payment
	err = s.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return paymentdomain.Payment{}, paymentdomain.ErrNotFound
		}
		return paymentdomain.Payment{}, err
	}
	return payment, nil
}

func (s *Service) lockInvoice(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	if err := db.LockForUpdate(tx.WithContext(ctx)).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, paymentdomain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) balanceOf(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice) (float64, error) {
	var paid float64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?`,
		invoice.ID,
	).Scan(&paid).Error
	if err != nil {
		return 0, err
	}
	return gst.Round2(invoice.Amount - paid), nil
}

// resolveCustomer attributes the payment to the invoice's customer,
// falling back to a name lookup for invoices issued before the customer
// link existed. Walk-in invoices yield nil.
func (s *Service) resolveCustomer(ctx context.Context, tx *gorm.DB, invoice *invoicedomain.Invoice) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	if invoice.CustomerID != nil {
		err := tx.WithContext(ctx).First(&customer, "id = ?", *invoice.CustomerID).Error
		if err == nil {
			return &customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := tx.WithContext(ctx).First(&customer, "name = ?", invoice.CustomerName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// adjustReceivables applies a delta to the customer's receivables
// cache, floored at zero, under a row lock.
func (s *Service) adjustReceivables(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, delta float64) error {
	var customer customerdomain.Customer
	if err := db.LockForUpdate(tx.WithContext(ctx)).First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	receivables := gst.Round2(customer.Receivables + delta)
	if receivables < 0 {
		receivables = 0
	}

	return tx.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{
			"receivables": receivables,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// nextSeqNo computes the next payment sequence inside the creating
// transaction. Payments are never deleted, so MAX+1 never reuses a number.
func (s *Service) nextSeqNo(ctx context.Context, tx *gorm.DB) (int64, error) {
	var next int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(seq_no), 0) + 1 FROM payments`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Service) setInvoiceStatus(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, balance float64) error {
	status := invoicedomain.InvoiceStatusPartiallyPaid
	if balance == 0 {
		status = invoicedomain.InvoiceStatusPaid
	}
	return tx.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
