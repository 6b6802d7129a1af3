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
	"github.com/periyanachi-erp/fees-api/pkg/sms"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.FeePayment) (*models.StudentFeeAssignment, error)
	List(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error)
	FindByID(ctx context.Context, id string) (*models.FeePayment, error)
	FindDetailByID(ctx context.Context, id string) (*models.FeePaymentDetail, error)
}

type paymentAssignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentFeeAssignment, error)
}

type paymentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type paymentNotifier interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type paymentCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// FeePaymentServiceConfig tunes runtime behaviour.
type FeePaymentServiceConfig struct {
	ReceiptMaxRetries    int
	NotificationsEnabled bool
	SMSEnabled           bool
}

// FeePaymentService records payments. Every accepted payment commits in one
// transaction with its receipt allocation and assignment balance update;
// notifications and SMS run after commit and never affect the outcome.
type FeePaymentService struct {
	repo        paymentRepository
	assignments paymentAssignmentReader
	students    paymentStudentReader
	notifier    paymentNotifier
	sender      sms.Sender
	cache       paymentCacheInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         FeePaymentServiceConfig
}

// NewFeePaymentService constructs a FeePaymentService.
func NewFeePaymentService(repo paymentRepository, assignments paymentAssignmentReader, students paymentStudentReader, notifier paymentNotifier, sender sms.Sender, cache paymentCacheInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg FeePaymentServiceConfig) *FeePaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReceiptMaxRetries < 1 {
		cfg.ReceiptMaxRetries = 3
	}
	return &FeePaymentService{
		repo:        repo,
		assignments: assignments,
		students:    students,
		notifier:    notifier,
		sender:      sender,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// Create validates and records a payment. A payment that would push
// paid_amount beyond the final amount is rejected outright and nothing is
// written. Receipt number collisions are retried a bounded number of times.
func (s *FeePaymentService) Create(ctx context.Context, req dto.CreateFeePaymentRequest) (*models.FeePayment, *models.StudentFeeAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payment payload")
	}
	if !req.AmountPaid.IsPositive() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "amount paid must be greater than zero")
	}
	mode := models.PaymentMode(req.PaymentMode)
	if !models.ValidPaymentMode(mode) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported payment mode %q", req.PaymentMode))
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	if req.FeeAssignmentID != nil {
		target, err := s.assignments.FindByID(ctx, *req.FeeAssignmentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "fee assignment not found")
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch fee assignment")
		}
		if target.StudentID != req.StudentID {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "fee assignment belongs to a different student")
		}
		if req.AmountPaid.GreaterThan(target.Balance()) {
			return nil, nil, appErrors.Clone(appErrors.ErrBalanceExceeded,
				fmt.Sprintf("payment of %s exceeds remaining balance of %s", req.AmountPaid.StringFixed(2), target.Balance().StringFixed(2)))
		}
	}

	payment := &models.FeePayment{
		StudentID:       req.StudentID,
		FeeAssignmentID: req.FeeAssignmentID,
		AmountPaid:      req.AmountPaid,
		PaymentMode:     mode,
		Remarks:         req.Remarks,
		ProcessedBy:     req.ProcessedBy,
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}

	var assignment *models.StudentFeeAssignment
	for attempt := 1; ; attempt++ {
		assignment, err = s.repo.Create(ctx, payment)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrBalanceExceeded) {
			return nil, nil, appErrors.Clone(appErrors.ErrBalanceExceeded, "")
		}
		if repository.IsUniqueViolation(err, "") && attempt < s.cfg.ReceiptMaxRetries {
			// Two concurrent fallback allocations scanned the same
			// highest receipt. Drop the number and allocate again.
			s.logger.Warn("receipt number collision, retrying",
				zap.String("receipt_no", payment.ReceiptNo), zap.Int("attempt", attempt))
			payment.ReceiptNo = ""
			payment.ID = ""
			s.metrics.RecordReceiptRetry()
			continue
		}
		if repository.IsUniqueViolation(err, "") {
			return nil, nil, appErrors.Clone(appErrors.ErrDuplicateReceipt, "")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record fee payment")
	}

	s.metrics.RecordPayment(string(mode))
	s.afterPayment(ctx, student, payment, assignment)

	s.logger.Info("fee payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("receipt_no", payment.ReceiptNo),
		zap.String("student_id", student.ID),
		zap.String("amount", payment.AmountPaid.StringFixed(2)))
	return payment, assignment, nil
}

// List returns payments with pagination metadata.
func (s *FeePaymentService) List(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get retrieves one payment.
func (s *FeePaymentService) Get(ctx context.Context, id string) (*models.FeePayment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get fee payment")
	}
	return payment, nil
}

// GetDetail retrieves one payment with student and category context.
func (s *FeePaymentService) GetDetail(ctx context.Context, id string) (*models.FeePaymentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get fee payment")
	}
	return detail, nil
}

// afterPayment runs the post-commit side effects: notification, guardian
// SMS and summary cache invalidation. All are best effort.
func (s *FeePaymentService) afterPayment(ctx context.Context, student *models.Student, payment *models.FeePayment, assignment *models.StudentFeeAssignment) {
	if s.cfg.NotificationsEnabled && s.notifier != nil {
		body := fmt.Sprintf("Payment of %s received. Receipt %s.", payment.AmountPaid.StringFixed(2), payment.ReceiptNo)
		if assignment != nil {
			body = fmt.Sprintf("%s Remaining balance %s.", body, assignment.Balance().StringFixed(2))
		}
		notification := &models.Notification{
			StudentID: student.ID,
			Title:     "Fee payment received",
			Body:      body,
		}
		if err := s.notifier.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to record payment notification",
				zap.String("payment_id", payment.ID), zap.Error(err))
		}
	}

	if s.cfg.SMSEnabled && s.sender != nil {
		text := fmt.Sprintf("Dear parent, we received %s towards %s's fees. Receipt %s. Thank you.",
			payment.AmountPaid.StringFixed(2), student.FullName, payment.ReceiptNo)
		if !s.sender.Send(student.GuardianPhone, text) {
			s.logger.Warn("payment sms not delivered",
				zap.String("payment_id", payment.ID), zap.String("student_id", student.ID))
		}
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, classSummaryCachePattern(student.ClassName)); err != nil {
			s.logger.Warn("failed to invalidate summary cache",
				zap.String("class_name", student.ClassName), zap.Error(err))
		}
	}
}
