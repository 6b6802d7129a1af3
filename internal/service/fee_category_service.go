package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	"github.com/periyanachi-erp/fees-api/internal/repository"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type feeCategoryRepository interface {
	List(ctx context.Context, activeOnly bool, page, size int) ([]models.FeeCategory, int, error)
	FindByID(ctx context.Context, id string) (*models.FeeCategory, error)
	Create(ctx context.Context, category *models.FeeCategory) error
	Update(ctx context.Context, category *models.FeeCategory) error
	Delete(ctx context.Context, id string) error
}

// FeeCategoryService orchestrates CRUD workflow for fee categories.
type FeeCategoryService struct {
	repo      feeCategoryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeCategoryService constructs a FeeCategoryService.
func NewFeeCategoryService(repo feeCategoryRepository, validate *validator.Validate, logger *zap.Logger) *FeeCategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeCategoryService{repo: repo, validator: validate, logger: logger}
}

// List returns fee categories with pagination metadata.
func (s *FeeCategoryService) List(ctx context.Context, activeOnly bool, page, size int) ([]models.FeeCategory, *models.Pagination, error) {
	categories, total, err := s.repo.List(ctx, activeOnly, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee categories")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return categories, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get retrieves one fee category.
func (s *FeeCategoryService) Get(ctx context.Context, id string) (*models.FeeCategory, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get fee category")
	}
	return category, nil
}

// Create validates and stores a new fee category. The applicable_to value
// must parse to a known eligibility.
func (s *FeeCategoryService) Create(ctx context.Context, req dto.CreateFeeCategoryRequest) (*models.FeeCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee category payload")
	}
	eligibility, err := models.ParseEligibility(req.ApplicableTo)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	category := &models.FeeCategory{
		Name:         req.Name,
		Description:  req.Description,
		FeeType:      models.FeeType(req.FeeType),
		ApplicableTo: eligibility.String(),
		IsRefundable: req.IsRefundable,
		Active:       active,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("fee category %q already exists", req.Name))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee category")
	}
	s.logger.Info("fee category created", zap.String("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// Update modifies an existing fee category.
func (s *FeeCategoryService) Update(ctx context.Context, id string, req dto.UpdateFeeCategoryRequest) (*models.FeeCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee category payload")
	}
	eligibility, err := models.ParseEligibility(req.ApplicableTo)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch fee category")
	}

	category.Name = req.Name
	category.Description = req.Description
	category.FeeType = models.FeeType(req.FeeType)
	category.ApplicableTo = eligibility.String()
	category.IsRefundable = req.IsRefundable
	if req.Active != nil {
		category.Active = *req.Active
	}
	if err := s.repo.Update(ctx, category); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("fee category %q already exists", req.Name))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee category")
	}
	return category, nil
}

// Delete removes a fee category. Categories referenced by structures are
// kept and reported as a conflict.
func (s *FeeCategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return appErrors.Clone(appErrors.ErrConflict, "fee category is referenced by fee structures")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee category")
	}
	s.logger.Info("fee category deleted", zap.String("category_id", id))
	return nil
}
