package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
	ErrNoLines          = errors.New("no_lines")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrProductNotFound  = errors.New("product_not_found")

	// Reconciliation failures. Either aborts the whole invoice-creation
	// transaction; no partial quantity increments survive.
	ErrProductNotOnOrder        = errors.New("product_not_on_order")
	ErrQuantityExceedsRemaining = errors.New("quantity_exceeds_remaining")
)

type OrderLineRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type CreateOrderRequest struct {
	CustomerID       string             `json:"customer_id"`
	CustomerPONumber string             `json:"customer_po_number"`
	Lines            []OrderLineRequest `json:"lines"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (SalesOrder, error)
	List(ctx context.Context) ([]SalesOrder, error)
	GetByID(ctx context.Context, id string) (SalesOrder, error)
}
