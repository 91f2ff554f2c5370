package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/gstbill/gstbill/internal/category/domain"
	productdomain "github.com/gstbill/gstbill/internal/product/domain"
	"github.com/gstbill/gstbill/pkg/repository"
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
	log   *zap.Logger
	genID *snowflake.Node

	productrepo  repository.Repository[productdomain.Product]
	categoryrepo repository.Repository[categorydomain.Category]
}

func NewService(p ServiceParam) productdomain.Service {
	return &Service{
		log:   p.Log.Named("product.service"),
		genID: p.GenID,

		productrepo:  repository.ProvideStore[productdomain.Product](p.DB),
		categoryrepo: repository.ProvideStore[categorydomain.Category](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req productdomain.CreateProductRequest) (productdomain.Product, error) {
	categoryID, err := s.validate(ctx, req.Name, req.Price, req.TaxRate, req.CategoryID)
	if err != nil {
		return productdomain.Product{}, err
	}

	now := time.Now().UTC()
	product := productdomain.Product{
		ID:          s.genID.Generate(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Quantity:    req.Quantity,
		TaxRate:     req.TaxRate,
		Discount:    req.Discount,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productrepo.Create(ctx, &product); err != nil {
		return productdomain.Product{}, err
	}
	return product, nil
}

func (s *Service) List(ctx context.Context) ([]productdomain.Product, error) {
	items, err := s.productrepo.Find(ctx, &productdomain.Product{})
	if err != nil {
		return nil, err
	}

	products := make([]productdomain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (productdomain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return productdomain.Product{}, productdomain.ErrInvalidID
	}

	item, err := s.productrepo.FindOne(ctx, &productdomain.Product{ID: productID})
	if err != nil {
		return productdomain.Product{}, err
	}
	if item == nil {
		return productdomain.Product{}, productdomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req productdomain.UpdateProductRequest) (productdomain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return productdomain.Product{}, err
	}

	categoryID, err := s.validate(ctx, req.Name, req.Price, req.TaxRate, req.CategoryID)
	if err != nil {
		return productdomain.Product{}, err
	}

	updates := map[string]any{
		"name":        strings.TrimSpace(req.Name),
		"description": strings.TrimSpace(req.Description),
		"price":       req.Price,
		"quantity":    req.Quantity,
		"tax_rate":    req.TaxRate,
		"discount":    req.Discount,
		"category_id": categoryID,
		"updated_at":  time.Now().UTC(),
	}
	if err := s.productrepo.Update(ctx, product.ID.String(), updates); err != nil {
		return productdomain.Product{}, err
	}

	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.productrepo.Delete(ctx, product.ID.String())
}

func (s *Service) validate(ctx context.Context, name string, price, taxRate float64, rawCategoryID string) (snowflake.ID, error) {
	if strings.TrimSpace(name) == "" {
		return 0, productdomain.ErrInvalidName
	}
	if price < 0 {
		return 0, productdomain.ErrInvalidPrice
	}
	if taxRate < 0 {
		return 0, productdomain.ErrInvalidTaxRate
	}

	categoryID, err := snowflake.ParseString(strings.TrimSpace(rawCategoryID))
	if err != nil {
		return 0, productdomain.ErrCategoryNotFound
	}
	category, err := s.categoryrepo.FindOne(ctx, &categorydomain.Category{ID: categoryID})
	if err != nil {
		return 0, err
	}
	if category == nil {
		return 0, productdomain.ErrCategoryNotFound
	}
	return categoryID, nil
}
