package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type concessionRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.FeeConcession, error)
	Create(ctx context.Context, concession *models.FeeConcession) error
	Delete(ctx context.Context, id string) error
}

type concessionStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// ConcessionService manages per-student discount windows. Concessions only
// affect assignments created or refreshed after they are granted.
type ConcessionService struct {
	repo      concessionRepository
	students  concessionStudentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConcessionService constructs a ConcessionService.
func NewConcessionService(repo concessionRepository, students concessionStudentReader, validate *validator.Validate, logger *zap.Logger) *ConcessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConcessionService{repo: repo, students: students, validator: validate, logger: logger}
}

// ListByStudent returns a student's concessions.
func (s *ConcessionService) ListByStudent(ctx context.Context, studentID string) ([]models.FeeConcession, error) {
	concessions, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list concessions")
	}
	return concessions, nil
}

// Create grants a concession to a student.
func (s *ConcessionService) Create(ctx context.Context, req dto.CreateConcessionRequest) (*models.FeeConcession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid concession payload")
	}
	if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "discount percentage must be between 0 and 100")
	}
	if req.ValidUntil != nil && req.ValidUntil.Before(req.ValidFrom) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "valid_until must not precede valid_from")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	concession := &models.FeeConcession{
		StudentID:          req.StudentID,
		ConcessionType:     req.ConcessionType,
		DiscountPercentage: req.DiscountPercentage,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
	}
	if err := s.repo.Create(ctx, concession); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create concession")
	}
	s.logger.Info("concession granted",
		zap.String("concession_id", concession.ID),
		zap.String("student_id", concession.StudentID),
		zap.String("percentage", concession.DiscountPercentage.String()))
	return concession, nil
}

// Delete revokes a concession.
func (s *ConcessionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete concession")
	}
	return nil
}
