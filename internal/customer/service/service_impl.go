package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/gstbill/gstbill/internal/customer/domain"
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

	customerrepo repository.Repository[customerdomain.Customer]
}

func NewService(p ServiceParam) customerdomain.Service {
	return &Service{
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,

		customerrepo: repository.ProvideStore[customerdomain.Customer](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return customerdomain.Customer{}, customerdomain.ErrInvalidName
	}

	now := time.Now().UTC()
	customer := customerdomain.Customer{
		ID:             s.genID.Generate(),
		Name:           name,
		GSTIN:          strings.TrimSpace(req.GSTIN),
		Address:        strings.TrimSpace(req.Address),
		BillingAddress: strings.TrimSpace(req.BillingAddress),
		Receivables:    req.Receivables,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.customerrepo.Create(ctx, &customer); err != nil {
		return customerdomain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context) ([]customerdomain.Customer, error) {
	items, err := s.customerrepo.Find(ctx, &customerdomain.Customer{})
	if err != nil {
		return nil, err
	}

	customers := make([]customerdomain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}
	return customers, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (customerdomain.Customer, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return customerdomain.Customer{}, customerdomain.ErrInvalidID
	}

	item, err := s.customerrepo.FindOne(ctx, &customerdomain.Customer{ID: customerID})
	if err != nil {
		return customerdomain.Customer{}, err
	}
	if item == nil {
		return customerdomain.Customer{}, customerdomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) FindByName(ctx context.Context, name string) (*customerdomain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	return s.customerrepo.FindOne(ctx, &customerdomain.Customer{Name: name})
}

func (s *Service) Update(ctx context.Context, id string, req customerdomain.UpdateCustomerRequest) (customerdomain.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return customerdomain.Customer{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return customerdomain.Customer{}, customerdomain.ErrInvalidName
	}

	updates := map[string]any{
		"name":            name,
		"gstin":           strings.TrimSpace(req.GSTIN),
		"address":         strings.TrimSpace(req.Address),
		"billing_address": strings.TrimSpace(req.BillingAddress),
		"receivables":     req.Receivables,
		"updated_at":      time.Now().UTC(),
	}
	if err := s.customerrepo.Update(ctx, customer.ID.String(), updates); err != nil {
		return customerdomain.Customer{}, err
	}

	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.customerrepo.Delete(ctx, customer.ID.String())
}
