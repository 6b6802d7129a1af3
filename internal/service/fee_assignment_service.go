package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	"github.com/periyanachi-erp/fees-api/internal/repository"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.FeeAssignmentFilter) ([]models.StudentFeeAssignmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentFeeAssignment, error)
	Upsert(ctx context.Context, assignment *models.StudentFeeAssignment) error
	BulkUpsert(ctx context.Context, assignments []models.StudentFeeAssignment) (int, int, error)
	UpdateDiscount(ctx context.Context, id string, discount decimal.Decimal) (*models.StudentFeeAssignment, error)
	Delete(ctx context.Context, id string) error
}

type assignmentStructureReader interface {
	FindByID(ctx context.Context, id string) (*models.FeeStructure, error)
}

type assignmentCategoryReader interface {
	FindByID(ctx context.Context, id string) (*models.FeeCategory, error)
}

type assignmentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListEligibleByClass(ctx context.Context, className string, eligibility models.Eligibility) ([]models.Student, error)
}

type assignmentConcessionReader interface {
	FindActiveByStudent(ctx context.Context, studentID string, day time.Time) (*models.FeeConcession, error)
}

type assignmentNotifier interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type assignmentCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// FeeAssignmentServiceConfig tunes runtime behaviour.
type FeeAssignmentServiceConfig struct {
	NotificationsEnabled bool
}

// FeeAssignmentService binds fee structures to students, individually and
// per class. Assignment is idempotent: re-running refreshes amounts but
// never erases recorded payments.
type FeeAssignmentService struct {
	repo        assignmentRepository
	structures  assignmentStructureReader
	categories  assignmentCategoryReader
	students    assignmentStudentReader
	concessions assignmentConcessionReader
	notifier    assignmentNotifier
	cache       assignmentCacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         FeeAssignmentServiceConfig
}

// NewFeeAssignmentService constructs a FeeAssignmentService.
func NewFeeAssignmentService(repo assignmentRepository, structures assignmentStructureReader, categories assignmentCategoryReader, students assignmentStudentReader, concessions assignmentConcessionReader, notifier assignmentNotifier, cache assignmentCacheInvalidator, validate *validator.Validate, logger *zap.Logger, cfg FeeAssignmentServiceConfig) *FeeAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeAssignmentService{
		repo:        repo,
		structures:  structures,
		categories:  categories,
		students:    students,
		concessions: concessions,
		notifier:    notifier,
		cache:       cache,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// List returns assignments with pagination metadata.
func (s *FeeAssignmentService) List(ctx context.Context, filter models.FeeAssignmentFilter) ([]models.StudentFeeAssignmentDetail, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee assignments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return assignments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get retrieves one assignment.
func (s *FeeAssignmentService) Get(ctx context.Context, id string) (*models.StudentFeeAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get fee assignment")
	}
	return assignment, nil
}

// Assign binds one student to a fee structure. An explicit discount wins
// over an active concession; without either the full amount is due. The
// student must match the category eligibility of the structure.
func (s *FeeAssignmentService) Assign(ctx context.Context, req dto.AssignFeeRequest) (*models.StudentFeeAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee assignment payload")
	}

	structure, category, err := s.loadStructure(ctx, req.FeeStructureID)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	eligibility, err := category.Eligibility()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "fee category has an invalid eligibility")
	}
	if !eligibility.Matches(*student) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("student is not eligible for fee category %q", category.Name))
	}

	discount, err := s.resolveDiscount(ctx, student.ID, structure.Amount, req.DiscountAmount)
	if err != nil {
		return nil, err
	}

	assignment := &models.StudentFeeAssignment{
		StudentID:      student.ID,
		FeeStructureID: structure.ID,
		OriginalAmount: structure.Amount,
		DiscountAmount: discount,
		FinalAmount:    structure.Amount.Sub(discount),
	}
	if err := s.repo.Upsert(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign fee")
	}

	s.notifyAssignment(ctx, student, category.Name, assignment.FinalAmount, structure.DueDate)
	s.invalidateClassSummary(ctx, student.ClassName)
	s.logger.Info("fee assigned",
		zap.String("assignment_id", assignment.ID),
		zap.String("student_id", student.ID),
		zap.String("structure_id", structure.ID),
		zap.String("final_amount", assignment.FinalAmount.String()))
	return assignment, nil
}

// BulkAssignByClass assigns a structure to every eligible active student of
// a class in one transaction. Individual row failures are skipped so the
// rest of the class is still processed.
func (s *FeeAssignmentService) BulkAssignByClass(ctx context.Context, req dto.BulkAssignFeeRequest) (*models.BulkAssignResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk assignment payload")
	}

	structure, category, err := s.loadStructure(ctx, req.FeeStructureID)
	if err != nil {
		return nil, err
	}
	if structure.ClassName != req.ClassName {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("fee structure belongs to class %q, not %q", structure.ClassName, req.ClassName))
	}

	eligibility, err := category.Eligibility()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "fee category has an invalid eligibility")
	}

	students, err := s.students.ListEligibleByClass(ctx, req.ClassName, eligibility)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list eligible students")
	}

	assignments := make([]models.StudentFeeAssignment, 0, len(students))
	for _, student := range students {
		discount, err := s.resolveDiscount(ctx, student.ID, structure.Amount, nil)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, models.StudentFeeAssignment{
			StudentID:      student.ID,
			FeeStructureID: structure.ID,
			OriginalAmount: structure.Amount,
			DiscountAmount: discount,
			FinalAmount:    structure.Amount.Sub(discount),
		})
	}

	processed, skipped, err := s.repo.BulkUpsert(ctx, assignments)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk assign fees")
	}

	for i := range students {
		s.notifyAssignment(ctx, &students[i], category.Name, assignments[i].FinalAmount, structure.DueDate)
	}
	s.invalidateClassSummary(ctx, req.ClassName)

	s.logger.Info("bulk fee assignment completed",
		zap.String("class_name", req.ClassName),
		zap.String("structure_id", structure.ID),
		zap.Int("processed", processed),
		zap.Int("skipped", skipped))
	return &models.BulkAssignResult{
		ClassName:      req.ClassName,
		FeeStructureID: structure.ID,
		Processed:      processed,
		Skipped:        skipped,
	}, nil
}

// UpdateDiscount adjusts the discount of one assignment. The new final
// amount must still cover what has already been paid.
func (s *FeeAssignmentService) UpdateDiscount(ctx context.Context, id string, req dto.UpdateDiscountRequest) (*models.StudentFeeAssignment, error) {
	if req.DiscountAmount.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "discount must not be negative")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DiscountAmount.GreaterThan(current.OriginalAmount) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "discount exceeds original amount")
	}

	assignment, err := s.repo.UpdateDiscount(ctx, id, req.DiscountAmount)
	if err != nil {
		if errors.Is(err, repository.ErrBalanceExceeded) {
			return nil, appErrors.Clone(appErrors.ErrBalanceExceeded, "paid amount exceeds the new final amount")
		}
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update discount")
	}
	s.invalidateForStudent(ctx, assignment.StudentID)
	return assignment, nil
}

// Delete removes an assignment without payments.
func (s *FeeAssignmentService) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPaymentsExist) {
			return appErrors.Clone(appErrors.ErrPaymentsExist, "")
		}
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "fee assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee assignment")
	}
	s.invalidateForStudent(ctx, current.StudentID)
	s.logger.Info("fee assignment deleted", zap.String("assignment_id", id))
	return nil
}

// invalidateClassSummary drops cached class summaries after a ledger
// write. Failures are logged and never fail the operation.
func (s *FeeAssignmentService) invalidateClassSummary(ctx context.Context, className string) {
	if s.cache == nil || className == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, classSummaryCachePattern(className)); err != nil {
		s.logger.Warn("failed to invalidate summary cache",
			zap.String("class_name", className), zap.Error(err))
	}
}

func (s *FeeAssignmentService) invalidateForStudent(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		s.logger.Warn("failed to resolve class for summary cache invalidation",
			zap.String("student_id", studentID), zap.Error(err))
		return
	}
	s.invalidateClassSummary(ctx, student.ClassName)
}

func (s *FeeAssignmentService) loadStructure(ctx context.Context, structureID string) (*models.FeeStructure, *models.FeeCategory, error) {
	structure, err := s.structures.FindByID(ctx, structureID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "fee structure not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch fee structure")
	}
	category, err := s.categories.FindByID(ctx, structure.FeeCategoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "fee category not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch fee category")
	}
	return structure, category, nil
}

// resolveDiscount picks the explicit discount when provided, otherwise
// derives one from the student's active concession.
func (s *FeeAssignmentService) resolveDiscount(ctx context.Context, studentID string, amount decimal.Decimal, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		if explicit.IsNegative() {
			return decimal.Zero, appErrors.Clone(appErrors.ErrValidation, "discount must not be negative")
		}
		if explicit.GreaterThan(amount) {
			return decimal.Zero, appErrors.Clone(appErrors.ErrValidation, "discount exceeds fee amount")
		}
		return *explicit, nil
	}
	if s.concessions == nil {
		return decimal.Zero, nil
	}
	concession, err := s.concessions.FindActiveByStudent(ctx, studentID, time.Now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, nil
		}
		return decimal.Zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up concession")
	}
	discount := amount.Mul(concession.DiscountPercentage).Div(decimal.NewFromInt(100)).Round(2)
	if discount.GreaterThan(amount) {
		discount = amount
	}
	return discount, nil
}

// notifyAssignment records a student-facing notification. Failures are
// logged and never fail the assignment.
func (s *FeeAssignmentService) notifyAssignment(ctx context.Context, student *models.Student, categoryName string, amount decimal.Decimal, dueDate time.Time) {
	if !s.cfg.NotificationsEnabled || s.notifier == nil {
		return
	}
	notification := &models.Notification{
		StudentID: student.ID,
		Title:     "New fee assigned",
		Body: fmt.Sprintf("%s fee of %s has been assigned to %s. Due by %s.",
			categoryName, amount.StringFixed(2), student.FullName, dueDate.Format("02 Jan 2006")),
	}
	if err := s.notifier.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to record assignment notification",
			zap.String("student_id", student.ID), zap.Error(err))
	}
}
