package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
	"github.com/periyanachi-erp/fees-api/pkg/sms"
)

type reminderStudentReader interface {
	ListWithOutstanding(ctx context.Context, className string) ([]models.Student, error)
}

type reminderAssignmentReader interface {
	List(ctx context.Context, filter models.FeeAssignmentFilter) ([]models.StudentFeeAssignmentDetail, int, error)
}

type reminderRepository interface {
	CreateReminder(ctx context.Context, reminder *models.FeeReminder) error
	ListReminders(ctx context.Context, studentID string, page, size int) ([]models.FeeReminder, int, error)
}

// ReminderService fans balance reminders out to every student of a class
// that still owes money. Delivery failures are recorded per student and
// never abort the run.
type ReminderService struct {
	students    reminderStudentReader
	assignments reminderAssignmentReader
	repo        reminderRepository
	sender      sms.Sender
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReminderService constructs a ReminderService.
func NewReminderService(students reminderStudentReader, assignments reminderAssignmentReader, repo reminderRepository, sender sms.Sender, validate *validator.Validate, logger *zap.Logger) *ReminderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{
		students:    students,
		assignments: assignments,
		repo:        repo,
		sender:      sender,
		validator:   validate,
		logger:      logger,
	}
}

// SendClassReminders sends one SMS per student with an outstanding balance.
func (s *ReminderService) SendClassReminders(ctx context.Context, req dto.SendRemindersRequest) (*dto.ReminderRunResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}

	students, err := s.students.ListWithOutstanding(ctx, req.ClassName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students with outstanding balance")
	}

	result := &dto.ReminderRunResult{ClassName: req.ClassName, Students: len(students)}
	for _, student := range students {
		balance, err := s.outstandingBalance(ctx, student.ID)
		if err != nil {
			s.logger.Warn("failed to compute balance for reminder",
				zap.String("student_id", student.ID), zap.Error(err))
			result.Failed++
			continue
		}

		message := req.Message
		if message == "" {
			message = fmt.Sprintf("Dear parent, a fee balance of %s is pending for %s. Kindly pay at the school office.",
				balance.StringFixed(2), student.FullName)
		}

		delivered := false
		if s.sender != nil {
			delivered = s.sender.Send(student.GuardianPhone, message)
		}
		status := models.ReminderStatusSent
		if delivered {
			result.Sent++
		} else {
			status = models.ReminderStatusFailed
			result.Failed++
		}

		reminder := &models.FeeReminder{
			StudentID: student.ID,
			Message:   message,
			Phone:     student.GuardianPhone,
			Status:    status,
		}
		if err := s.repo.CreateReminder(ctx, reminder); err != nil {
			s.logger.Warn("failed to record fee reminder",
				zap.String("student_id", student.ID), zap.Error(err))
		}
	}

	s.logger.Info("fee reminder run completed",
		zap.String("class_name", req.ClassName),
		zap.Int("students", result.Students),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))
	return result, nil
}

// History returns reminder history for one student.
func (s *ReminderService) History(ctx context.Context, studentID string, page, size int) ([]models.FeeReminder, *models.Pagination, error) {
	reminders, total, err := s.repo.ListReminders(ctx, studentID, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee reminders")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return reminders, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *ReminderService) outstandingBalance(ctx context.Context, studentID string) (decimal.Decimal, error) {
	assignments, _, err := s.assignments.List(ctx, models.FeeAssignmentFilter{StudentID: studentID, PageSize: 100})
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for _, a := range assignments {
		balance = balance.Add(a.Balance())
	}
	return balance, nil
}
