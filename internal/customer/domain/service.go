package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)

type CreateCustomerRequest struct {
	Name           string  `json:"name"`
	GSTIN          string  `json:"gstin"`
	Address        string  `json:"address"`
	BillingAddress string  `json:"billing_address"`
	Receivables    float64 `json:"receivables"`
}

type UpdateCustomerRequest struct {
	Name           string  `json:"name"`
	GSTIN          string  `json:"gstin"`
	Address        string  `json:"address"`
	BillingAddress string  `json:"billing_address"`
	Receivables    float64 `json:"receivables"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	FindByName(ctx context.Context, name string) (*Customer, error)
	Update(ctx context.Context, id string, req UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
}
