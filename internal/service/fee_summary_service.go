package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/periyanachi-erp/fees-api/internal/models"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type summaryRepository interface {
	ClassCollections(ctx context.Context, className string) ([]models.CategoryCollection, error)
	ClassPaidCounts(ctx context.Context, className string) (int, int, error)
}

type summaryAssignmentReader interface {
	List(ctx context.Context, filter models.FeeAssignmentFilter) ([]models.StudentFeeAssignmentDetail, int, error)
	ListAll(ctx context.Context) ([]models.StudentFeeAssignment, error)
	PaymentSums(ctx context.Context) (map[string]decimal.Decimal, error)
}

type summaryPaymentReader interface {
	List(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error)
}

type summaryStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

func classSummaryCacheKey(className string) string {
	return fmt.Sprintf("fees:summary:class:%s", className)
}

func classSummaryCachePattern(className string) string {
	return fmt.Sprintf("fees:summary:class:%s*", className)
}

// FeeSummaryService computes collection summaries, student statements and
// the ledger reconciliation audit.
type FeeSummaryService struct {
	summaries   summaryRepository
	assignments summaryAssignmentReader
	payments    summaryPaymentReader
	students    summaryStudentReader
	cache       *CacheService
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewFeeSummaryService constructs a FeeSummaryService.
func NewFeeSummaryService(summaries summaryRepository, assignments summaryAssignmentReader, payments summaryPaymentReader, students summaryStudentReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *FeeSummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeSummaryService{
		summaries:   summaries,
		assignments: assignments,
		payments:    payments,
		students:    students,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// ClassSummary aggregates collections for one class, read through the cache.
func (s *FeeSummaryService) ClassSummary(ctx context.Context, className string) (*models.ClassCollectionSummary, error) {
	if className == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class name is required")
	}

	cacheKey := classSummaryCacheKey(className)
	var cached models.ClassCollectionSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	collections, err := s.summaries.ClassCollections(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate class collections")
	}
	fullyPaid, pending, err := s.summaries.ClassPaidCounts(ctx, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count class assignments")
	}

	summary := &models.ClassCollectionSummary{
		ClassName:   className,
		Categories:  collections,
		FullyPaid:   fullyPaid,
		Pending:     pending,
		GeneratedAt: time.Now().UTC(),
	}
	for _, c := range collections {
		summary.Assigned = summary.Assigned.Add(c.Assigned)
		summary.Collected = summary.Collected.Add(c.Collected)
		summary.Outstanding = summary.Outstanding.Add(c.Outstanding)
	}

	if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache class summary", zap.String("class_name", className), zap.Error(err))
	}
	return summary, nil
}

// StudentStatement lists a student's assignments and payments with totals.
func (s *FeeSummaryService) StudentStatement(ctx context.Context, studentID string) (*models.StudentStatement, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	assignments, _, err := s.assignments.List(ctx, models.FeeAssignmentFilter{StudentID: studentID, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student assignments")
	}
	payments, _, err := s.payments.List(ctx, models.FeePaymentFilter{StudentID: studentID, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student payments")
	}

	statement := &models.StudentStatement{
		Student:     *student,
		Assignments: assignments,
		Payments:    payments,
	}
	for _, a := range assignments {
		statement.TotalDue = statement.TotalDue.Add(a.FinalAmount)
		statement.TotalPaid = statement.TotalPaid.Add(a.PaidAmount)
	}
	statement.Balance = statement.TotalDue.Sub(statement.TotalPaid)
	return statement, nil
}

// Audit reconciles every assignment against the ledger invariants and the
// recorded payments. It only reads; repairs are a manual decision.
func (s *FeeSummaryService) Audit(ctx context.Context) (*models.AuditReport, error) {
	assignments, err := s.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments for audit")
	}
	sums, err := s.assignments.PaymentSums(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum payments for audit")
	}

	report := &models.AuditReport{
		CheckedAssignments: len(assignments),
		Findings:           []models.AuditFinding{},
		GeneratedAt:        time.Now().UTC(),
	}

	for _, a := range assignments {
		expectedFinal := a.OriginalAmount.Sub(a.DiscountAmount)
		if !a.FinalAmount.Equal(expectedFinal) {
			report.Findings = append(report.Findings, finding(a, models.AuditFinalMismatch, expectedFinal, a.FinalAmount))
		}
		if a.FinalAmount.IsNegative() {
			report.Findings = append(report.Findings, finding(a, models.AuditNegativeFinal, decimal.Zero, a.FinalAmount))
		}
		if a.PaidAmount.GreaterThan(a.FinalAmount) {
			report.Findings = append(report.Findings, finding(a, models.AuditOverpaid, a.FinalAmount, a.PaidAmount))
		}
		if a.PaidAmount.IsNegative() {
			report.Findings = append(report.Findings, finding(a, models.AuditNegativePaid, decimal.Zero, a.PaidAmount))
		}
		expectedFlag := a.PaidAmount.GreaterThanOrEqual(a.FinalAmount) && a.FinalAmount.IsPositive()
		if a.IsFullyPaid != expectedFlag {
			report.Findings = append(report.Findings, finding(a, models.AuditFullyPaidFlag, a.FinalAmount, a.PaidAmount))
		}
		if sum, ok := sums[a.ID]; ok && !sum.Equal(a.PaidAmount) {
			report.Findings = append(report.Findings, finding(a, models.AuditPaymentSumDrift, sum, a.PaidAmount))
		} else if !ok && !a.PaidAmount.IsZero() {
			report.Findings = append(report.Findings, finding(a, models.AuditPaymentSumDrift, decimal.Zero, a.PaidAmount))
		}
	}

	report.Clean = len(report.Findings) == 0
	if !report.Clean {
		s.logger.Warn("ledger audit found violations", zap.Int("findings", len(report.Findings)))
	}
	return report, nil
}

func finding(a models.StudentFeeAssignment, violation models.AuditViolation, expected, actual decimal.Decimal) models.AuditFinding {
	return models.AuditFinding{
		AssignmentID: a.ID,
		StudentID:    a.StudentID,
		Violation:    violation,
		Expected:     expected,
		Actual:       actual,
	}
}
