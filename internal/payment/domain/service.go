package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrInvoiceNotFound = errors.New("invoice_not_found")
	ErrInvalidAmount   = errors.New("invalid_amount")
)

type CreatePaymentRequest struct {
	InvoiceID string  `json:"invoice_id"`
	Amount    float64 `json:"amount"`
	Mode      string  `json:"mode"`
	Reference string  `json:"reference"`
}

type RevisePaymentRequest struct {
	Amount    float64 `json:"amount"`
	Mode      string  `json:"mode"`
	Reference string  `json:"reference"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (Payment, error)
	Revise(ctx context.Context, id string, req RevisePaymentRequest) (Payment, error)
	List(ctx context.Context) ([]Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
}
