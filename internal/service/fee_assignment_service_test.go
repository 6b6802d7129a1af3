package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	"github.com/periyanachi-erp/fees-api/internal/repository"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type stubAssignmentRepo struct {
	byID        map[string]*models.StudentFeeAssignment
	upserted    []*models.StudentFeeAssignment
	bulkBatches [][]models.StudentFeeAssignment
	updateErr   error
	deleteErr   error
}

func (s *stubAssignmentRepo) List(context.Context, models.FeeAssignmentFilter) ([]models.StudentFeeAssignmentDetail, int, error) {
	return nil, 0, nil
}

func (s *stubAssignmentRepo) FindByID(_ context.Context, id string) (*models.StudentFeeAssignment, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubAssignmentRepo) Upsert(_ context.Context, assignment *models.StudentFeeAssignment) error {
	assignment.ID = "assignment-1"
	s.upserted = append(s.upserted, assignment)
	return nil
}

func (s *stubAssignmentRepo) BulkUpsert(_ context.Context, assignments []models.StudentFeeAssignment) (int, int, error) {
	s.bulkBatches = append(s.bulkBatches, assignments)
	return len(assignments), 0, nil
}

func (s *stubAssignmentRepo) UpdateDiscount(_ context.Context, id string, discount decimal.Decimal) (*models.StudentFeeAssignment, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	a := *s.byID[id]
	a.DiscountAmount = discount
	a.FinalAmount = a.OriginalAmount.Sub(discount)
	return &a, nil
}

func (s *stubAssignmentRepo) Delete(context.Context, string) error { return s.deleteErr }

type stubStructureReader struct {
	structure *models.FeeStructure
}

func (s *stubStructureReader) FindByID(context.Context, string) (*models.FeeStructure, error) {
	if s.structure == nil {
		return nil, sql.ErrNoRows
	}
	return s.structure, nil
}

type stubCategoryReader struct {
	category *models.FeeCategory
}

func (s *stubCategoryReader) FindByID(context.Context, string) (*models.FeeCategory, error) {
	if s.category == nil {
		return nil, sql.ErrNoRows
	}
	return s.category, nil
}

type stubStudentReader struct {
	students map[string]*models.Student
	eligible []models.Student
}

func (s *stubStudentReader) FindByID(_ context.Context, id string) (*models.Student, error) {
	if st, ok := s.students[id]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubStudentReader) ListEligibleByClass(context.Context, string, models.Eligibility) ([]models.Student, error) {
	return s.eligible, nil
}

func (s *stubStudentReader) ListWithOutstanding(context.Context, string) ([]models.Student, error) {
	return s.eligible, nil
}

type stubConcessionReader struct {
	concession *models.FeeConcession
}

func (s *stubConcessionReader) FindActiveByStudent(context.Context, string, time.Time) (*models.FeeConcession, error) {
	if s.concession == nil {
		return nil, sql.ErrNoRows
	}
	return s.concession, nil
}

type stubNotifier struct {
	created []*models.Notification
	err     error
}

func (s *stubNotifier) Create(_ context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, n)
	return nil
}

func asAppError(t *testing.T, err error) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	return appErr
}

func tuitionStructure() *models.FeeStructure {
	return &models.FeeStructure{
		ID:             "fs1",
		AcademicYearID: "2026-27",
		ClassName:      "10-A",
		Medium:         models.MediumEnglish,
		FeeCategoryID:  "cat1",
		Amount:         decimal.RequireFromString("4000.00"),
		DueDate:        time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
	}
}

func dayScholar(id, class string) *models.Student {
	return &models.Student{
		ID:            id,
		FullName:      "Anitha R",
		ClassName:     class,
		SectionID:     "sec-a",
		Category:      models.StudentCategoryDayScholar,
		TransportMode: models.TransportNone,
		GuardianPhone: "9876543210",
		Active:        true,
	}
}

func newAssignmentServiceForTest(repo *stubAssignmentRepo, structures *stubStructureReader, categories *stubCategoryReader, students *stubStudentReader, concessions *stubConcessionReader, notifier *stubNotifier) *FeeAssignmentService {
	return newAssignmentServiceWithCache(repo, structures, categories, students, concessions, notifier, nil)
}

func newAssignmentServiceWithCache(repo *stubAssignmentRepo, structures *stubStructureReader, categories *stubCategoryReader, students *stubStudentReader, concessions *stubConcessionReader, notifier *stubNotifier, cache assignmentCacheInvalidator) *FeeAssignmentService {
	return NewFeeAssignmentService(repo, structures, categories, students, concessions, notifier, cache, nil, nil,
		FeeAssignmentServiceConfig{NotificationsEnabled: true})
}

func TestFeeAssignmentServiceAssignDerivesConcessionDiscount(t *testing.T) {
	repo := &stubAssignmentRepo{}
	notifier := &stubNotifier{}
	svc := newAssignmentServiceForTest(repo,
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}},
		&stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}},
		&stubConcessionReader{concession: &models.FeeConcession{
			StudentID:          "s1",
			DiscountPercentage: decimal.RequireFromString("25"),
			ValidFrom:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
		notifier)

	assignment, err := svc.Assign(context.Background(), dto.AssignFeeRequest{StudentID: "s1", FeeStructureID: "fs1"})
	require.NoError(t, err)
	assert.True(t, assignment.DiscountAmount.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, assignment.FinalAmount.Equal(decimal.RequireFromString("3000.00")))
	require.Len(t, notifier.created, 1)
	assert.Equal(t, "s1", notifier.created[0].StudentID)
}

func TestFeeAssignmentServiceAssignExplicitDiscountWins(t *testing.T) {
	repo := &stubAssignmentRepo{}
	explicit := decimal.RequireFromString("500.00")
	svc := newAssignmentServiceForTest(repo,
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}},
		&stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}},
		&stubConcessionReader{concession: &models.FeeConcession{
			StudentID:          "s1",
			DiscountPercentage: decimal.RequireFromString("50"),
			ValidFrom:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
		&stubNotifier{})

	assignment, err := svc.Assign(context.Background(), dto.AssignFeeRequest{
		StudentID:      "s1",
		FeeStructureID: "fs1",
		DiscountAmount: &explicit,
	})
	require.NoError(t, err)
	assert.True(t, assignment.DiscountAmount.Equal(explicit))
	assert.True(t, assignment.FinalAmount.Equal(decimal.RequireFromString("3500.00")))
}

func TestFeeAssignmentServiceAssignRejectsIneligibleStudent(t *testing.T) {
	svc := newAssignmentServiceForTest(&stubAssignmentRepo{},
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Hostel", ApplicableTo: "hosteller"}},
		&stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}},
		&stubConcessionReader{},
		&stubNotifier{})

	_, err := svc.Assign(context.Background(), dto.AssignFeeRequest{StudentID: "s1", FeeStructureID: "fs1"})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "not eligible")
}

func TestFeeAssignmentServiceAssignRejectsExcessDiscount(t *testing.T) {
	explicit := decimal.RequireFromString("5000.00")
	svc := newAssignmentServiceForTest(&stubAssignmentRepo{},
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}},
		&stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}},
		&stubConcessionReader{},
		&stubNotifier{})

	_, err := svc.Assign(context.Background(), dto.AssignFeeRequest{
		StudentID:      "s1",
		FeeStructureID: "fs1",
		DiscountAmount: &explicit,
	})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFeeAssignmentServiceBulkAssignRejectsClassMismatch(t *testing.T) {
	svc := newAssignmentServiceForTest(&stubAssignmentRepo{},
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}},
		&stubStudentReader{},
		&stubConcessionReader{},
		&stubNotifier{})

	_, err := svc.BulkAssignByClass(context.Background(), dto.BulkAssignFeeRequest{ClassName: "9-B", FeeStructureID: "fs1"})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "belongs to class")
}

func TestFeeAssignmentServiceBulkAssignByClass(t *testing.T) {
	repo := &stubAssignmentRepo{}
	notifier := &stubNotifier{}
	svc := newAssignmentServiceForTest(repo,
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}},
		&stubStudentReader{eligible: []models.Student{*dayScholar("s1", "10-A"), *dayScholar("s2", "10-A")}},
		&stubConcessionReader{},
		notifier)

	result, err := svc.BulkAssignByClass(context.Background(), dto.BulkAssignFeeRequest{ClassName: "10-A", FeeStructureID: "fs1"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 0, result.Skipped)
	require.Len(t, repo.bulkBatches, 1)
	assert.Len(t, repo.bulkBatches[0], 2)
	assert.Len(t, notifier.created, 2)
}

func TestFeeAssignmentServiceUpdateDiscountBalanceExceeded(t *testing.T) {
	repo := &stubAssignmentRepo{
		byID: map[string]*models.StudentFeeAssignment{"a1": {
			ID:             "a1",
			StudentID:      "s1",
			OriginalAmount: decimal.RequireFromString("5000.00"),
			FinalAmount:    decimal.RequireFromString("5000.00"),
			PaidAmount:     decimal.RequireFromString("4800.00"),
		}},
		updateErr: repository.ErrBalanceExceeded,
	}
	svc := newAssignmentServiceForTest(repo, &stubStructureReader{}, &stubCategoryReader{}, &stubStudentReader{}, &stubConcessionReader{}, &stubNotifier{})

	_, err := svc.UpdateDiscount(context.Background(), "a1", dto.UpdateDiscountRequest{DiscountAmount: decimal.RequireFromString("500.00")})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrBalanceExceeded.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrBalanceExceeded.Status, appErr.Status)
}

func TestFeeAssignmentServiceDeleteWithPayments(t *testing.T) {
	repo := &stubAssignmentRepo{
		byID: map[string]*models.StudentFeeAssignment{"a1": {
			ID:        "a1",
			StudentID: "s1",
		}},
		deleteErr: repository.ErrPaymentsExist,
	}
	svc := newAssignmentServiceForTest(repo, &stubStructureReader{}, &stubCategoryReader{}, &stubStudentReader{}, &stubConcessionReader{}, &stubNotifier{})

	err := svc.Delete(context.Background(), "a1")
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrPaymentsExist.Code, appErr.Code)
}

func TestFeeAssignmentServiceWritesInvalidateSummaryCache(t *testing.T) {
	cache := &stubCacheInvalidator{}
	repo := &stubAssignmentRepo{
		byID: map[string]*models.StudentFeeAssignment{"a1": {
			ID:             "a1",
			StudentID:      "s1",
			OriginalAmount: decimal.RequireFromString("4000.00"),
			FinalAmount:    decimal.RequireFromString("4000.00"),
		}},
	}
	svc := newAssignmentServiceWithCache(repo,
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}},
		&stubStudentReader{
			students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")},
			eligible: []models.Student{*dayScholar("s1", "10-A")},
		},
		&stubConcessionReader{},
		&stubNotifier{},
		cache)

	_, err := svc.Assign(context.Background(), dto.AssignFeeRequest{StudentID: "s1", FeeStructureID: "fs1"})
	require.NoError(t, err)

	_, err = svc.BulkAssignByClass(context.Background(), dto.BulkAssignFeeRequest{ClassName: "10-A", FeeStructureID: "fs1"})
	require.NoError(t, err)

	_, err = svc.UpdateDiscount(context.Background(), "a1", dto.UpdateDiscountRequest{DiscountAmount: decimal.RequireFromString("100.00")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "a1"))

	require.Len(t, cache.patterns, 4)
	for _, pattern := range cache.patterns {
		assert.Equal(t, "fees:summary:class:10-A*", pattern)
	}
}

func TestFeeAssignmentServiceBulkAssignDropsCachedSummary(t *testing.T) {
	summaries := &stubSummaryRepo{
		collections: []models.CategoryCollection{
			{CategoryName: "Tuition", Assigned: decimal.RequireFromString("1000"), Collected: decimal.Zero, Outstanding: decimal.RequireFromString("1000"), Students: 1},
		},
	}
	cache := NewCacheService(newMemCacheRepo(), nil, time.Minute, nil, true)
	summarySvc := NewFeeSummaryService(summaries, &stubSummaryAssignments{}, &stubPaymentRepo{}, &stubStudentReader{}, cache, time.Minute, nil)

	_, err := summarySvc.ClassSummary(context.Background(), "10-A")
	require.NoError(t, err)
	require.Equal(t, 1, summaries.calls)

	svc := newAssignmentServiceWithCache(&stubAssignmentRepo{},
		&stubStructureReader{structure: tuitionStructure()},
		&stubCategoryReader{category: &models.FeeCategory{ID: "cat1", Name: "Tuition", ApplicableTo: "all"}},
		&stubStudentReader{eligible: []models.Student{*dayScholar("s1", "10-A")}},
		&stubConcessionReader{},
		&stubNotifier{},
		cache)

	_, err = svc.BulkAssignByClass(context.Background(), dto.BulkAssignFeeRequest{ClassName: "10-A", FeeStructureID: "fs1"})
	require.NoError(t, err)

	// The next summary read must recompute instead of serving the entry
	// cached before the assignment run.
	_, err = summarySvc.ClassSummary(context.Background(), "10-A")
	require.NoError(t, err)
	assert.Equal(t, 2, summaries.calls)
}
