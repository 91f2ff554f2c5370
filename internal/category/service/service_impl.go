package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/gstbill/gstbill/internal/category/domain"
	"github.com/gstbill/gstbill/pkg/db"
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

	categoryrepo repository.Repository[categorydomain.Category]
}

func NewService(p ServiceParam) categorydomain.Service {
	return &Service{
		log:   p.Log.Named("category.service"),
		genID: p.GenID,

		categoryrepo: repository.ProvideStore[categorydomain.Category](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req categorydomain.CreateCategoryRequest) (categorydomain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return categorydomain.Category{}, categorydomain.ErrInvalidName
	}

	now := time.Now().UTC()
	category := categorydomain.Category{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryrepo.Create(ctx, &category); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return categorydomain.Category{}, categorydomain.ErrDuplicateName
		}
		return categorydomain.Category{}, err
	}

	return category, nil
}

func (s *Service) List(ctx context.Context) ([]categorydomain.Category, error) {
	items, err := s.categoryrepo.Find(ctx, &categorydomain.Category{})
	if err != nil {
		return nil, err
	}

	categories := make([]categorydomain.Category, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		categories = append(categories, *item)
	}
	return categories, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (categorydomain.Category, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return categorydomain.Category{}, categorydomain.ErrInvalidID
	}

	item, err := s.categoryrepo.FindOne(ctx, &categorydomain.Category{ID: categoryID})
	if err != nil {
		return categorydomain.Category{}, err
	}
	if item == nil {
		return categorydomain.Category{}, categorydomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, req categorydomain.UpdateCategoryRequest) (categorydomain.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return categorydomain.Category{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return categorydomain.Category{}, categorydomain.ErrInvalidName
	}

	updates := map[string]any{
		"name":        name,
		"description": strings.TrimSpace(req.Description),
		"updated_at":  time.Now().UTC(),
	}
	if err := s.categoryrepo.Update(ctx, category.ID.String(), updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return categorydomain.Category{}, categorydomain.ErrDuplicateName
		}
		return categorydomain.Category{}, err
	}

	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.categoryrepo.Delete(ctx, category.ID.String())
}
