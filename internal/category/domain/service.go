package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrDuplicateName = errors.New("duplicate_name")
)

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Service interface {
	Create(ctx context.Context, req CreateCategoryRequest) (Category, error)
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
	Update(ctx context.Context, id string, req UpdateCategoryRequest) (Category, error)
	Delete(ctx context.Context, id string) error
}
