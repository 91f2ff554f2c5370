package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
	ErrCustomerNotFound   = errors.New("customer_not_found")
	ErrInvalidCustomer    = errors.New("invalid_customer")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrSalesOrderNotFound = errors.New("sales_order_not_found")
)

// LineRequest asks for one product line. Unknown product ids are skipped
// with a logged warning; the line is dropped, not an error.
type LineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CreateInvoiceRequest struct {
	// CustomerID references a registered customer; when set, snapshot
	// fields below are ignored and taken from the customer record.
	CustomerID string `json:"customer_id"`

	CustomerName    string `json:"customer_name"`
	CustomerGSTIN   string `json:"customer_gstin"`
	CustomerAddress string `json:"customer_address"`
	BillingAddress  string `json:"billing_address"`

	Status       InvoiceStatus `json:"status"`
	InvoiceDate  time.Time     `json:"invoice_date"`
	SalesOrderID string        `json:"sales_order_id"`
	Lines        []LineRequest `json:"lines"`
}

type UpdateInvoiceRequest struct {
	CustomerName    string        `json:"customer_name"`
	CustomerGSTIN   string        `json:"customer_gstin"`
	CustomerAddress string        `json:"customer_address"`
	BillingAddress  string        `json:"billing_address"`
	Amount          float64       `json:"amount"`
	Status          InvoiceStatus `json:"status"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (Invoice, error)
	BalanceOf(ctx context.Context, id string) (float64, error)
}

// ValidStatus reports whether s is one of the three invoice states.
func ValidStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusPaid:
		return true
	default:
		return false
	}
}
