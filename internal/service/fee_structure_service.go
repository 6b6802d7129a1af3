package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	"github.com/periyanachi-erp/fees-api/internal/repository"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type feeStructureRepository interface {
	List(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructureDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.FeeStructure, error)
	Create(ctx context.Context, structure *models.FeeStructure) error
	Update(ctx context.Context, structure *models.FeeStructure) error
	Delete(ctx context.Context, id string) error
}

type structureCategoryReader interface {
	FindByID(ctx context.Context, id string) (*models.FeeCategory, error)
}

// FeeStructureService orchestrates CRUD workflow for fee structures.
type FeeStructureService struct {
	repo       feeStructureRepository
	categories structureCategoryReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewFeeStructureService constructs a FeeStructureService.
func NewFeeStructureService(repo feeStructureRepository, categories structureCategoryReader, validate *validator.Validate, logger *zap.Logger) *FeeStructureService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeStructureService{repo: repo, categories: categories, validator: validate, logger: logger}
}

// List returns fee structures with pagination metadata.
func (s *FeeStructureService) List(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructureDetail, *models.Pagination, error) {
	structures, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee structures")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return structures, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get retrieves one fee structure.
func (s *FeeStructureService) Get(ctx context.Context, id string) (*models.FeeStructure, error) {
	structure, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee structure not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get fee structure")
	}
	return structure, nil
}

// Create validates and stores a new fee structure. The owning category
// must exist and the amount must not be negative. A zero amount is a
// valid waived fee.
func (s *FeeStructureService) Create(ctx context.Context, req dto.CreateFeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee structure payload")
	}
	if req.Amount.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must not be negative")
	}
	installments := req.Installments
	if installments < 1 {
		installments = 1
	}

	if _, err := s.categories.FindByID(ctx, req.FeeCategoryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify fee category")
	}

	structure := &models.FeeStructure{
		AcademicYearID: req.AcademicYearID,
		ClassName:      req.ClassName,
		Medium:         models.Medium(req.Medium),
		FeeCategoryID:  req.FeeCategoryID,
		Amount:         req.Amount,
		DueDate:        req.DueDate,
		Installments:   installments,
	}
	if err := s.repo.Create(ctx, structure); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "fee structure already defined for this year, class, medium and category")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee structure")
	}
	s.logger.Info("fee structure created",
		zap.String("structure_id", structure.ID),
		zap.String("class_name", structure.ClassName),
		zap.String("category_id", structure.FeeCategoryID))
	return structure, nil
}

// Update modifies the amount, due date and installments of a structure.
// Identity fields (year, class, medium, category) are fixed at creation.
func (s *FeeStructureService) Update(ctx context.Context, id string, req dto.UpdateFeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee structure payload")
	}
	if req.Amount.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "amount must not be negative")
	}

	structure, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	structure.Amount = req.Amount
	structure.DueDate = req.DueDate
	if req.Installments >= 1 {
		structure.Installments = req.Installments
	}
	if err := s.repo.Update(ctx, structure); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee structure")
	}
	return structure, nil
}

// Delete removes a structure unless student assignments reference it.
func (s *FeeStructureService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return appErrors.Clone(appErrors.ErrConflict, "fee structure has student assignments")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee structure")
	}
	s.logger.Info("fee structure deleted", zap.String("structure_id", id))
	return nil
}
