package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	"github.com/periyanachi-erp/fees-api/internal/repository"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
)

type stubPaymentRepo struct {
	errs       []error
	calls      int
	assignment *models.StudentFeeAssignment
	last       *models.FeePayment
}

func (s *stubPaymentRepo) Create(_ context.Context, payment *models.FeePayment) (*models.StudentFeeAssignment, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			payment.ReceiptNo = "REC009"
			payment.ID = "doomed"
			return nil, err
		}
	}
	payment.ID = "p1"
	payment.ReceiptNo = "REC010"
	s.last = payment
	return s.assignment, nil
}

func (s *stubPaymentRepo) List(context.Context, models.FeePaymentFilter) ([]models.FeePayment, int, error) {
	return nil, 0, nil
}

func (s *stubPaymentRepo) FindByID(context.Context, string) (*models.FeePayment, error) {
	return nil, nil
}

func (s *stubPaymentRepo) FindDetailByID(context.Context, string) (*models.FeePaymentDetail, error) {
	return nil, nil
}

type stubSender struct {
	ok    bool
	sent  []string
	texts []string
}

func (s *stubSender) Send(phone, text string) bool {
	s.sent = append(s.sent, phone)
	s.texts = append(s.texts, text)
	return s.ok
}

type stubCacheInvalidator struct {
	patterns []string
	err      error
}

func (s *stubCacheInvalidator) Invalidate(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return s.err
}

func newPaymentServiceForTest(repo *stubPaymentRepo, assignments *stubAssignmentRepo, students *stubStudentReader, notifier *stubNotifier, sender *stubSender, cache *stubCacheInvalidator) *FeePaymentService {
	return NewFeePaymentService(repo, assignments, students, notifier, sender, cache, nil, nil, nil,
		FeePaymentServiceConfig{
			ReceiptMaxRetries:    3,
			NotificationsEnabled: true,
			SMSEnabled:           true,
		})
}

func paidAssignment(id string, final, paid string) *models.StudentFeeAssignment {
	return &models.StudentFeeAssignment{
		ID:             id,
		StudentID:      "s1",
		FeeStructureID: "fs1",
		OriginalAmount: decimal.RequireFromString(final),
		FinalAmount:    decimal.RequireFromString(final),
		PaidAmount:     decimal.RequireFromString(paid),
	}
}

func TestFeePaymentServiceCreateRejectsOverpayment(t *testing.T) {
	repo := &stubPaymentRepo{}
	assignmentID := "a1"
	assignments := &stubAssignmentRepo{byID: map[string]*models.StudentFeeAssignment{
		assignmentID: paidAssignment(assignmentID, "5000.00", "4800.00"),
	}}
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	svc := newPaymentServiceForTest(repo, assignments, students, &stubNotifier{}, &stubSender{ok: true}, &stubCacheInvalidator{})

	_, _, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
		StudentID:       "s1",
		FeeAssignmentID: &assignmentID,
		AmountPaid:      decimal.RequireFromString("500.00"),
		PaymentMode:     "Cash",
	})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrBalanceExceeded.Code, appErr.Code)
	assert.Equal(t, 422, appErr.Status)
	assert.Equal(t, 0, repo.calls, "nothing must be written for an overpayment")
}

func TestFeePaymentServiceCreateRetriesReceiptCollision(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505", Constraint: "fee_payments_receipt_no_key"}
	repo := &stubPaymentRepo{errs: []error{uniqueErr}}
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	notifier := &stubNotifier{}
	sender := &stubSender{ok: true}
	cache := &stubCacheInvalidator{}
	svc := newPaymentServiceForTest(repo, &stubAssignmentRepo{}, students, notifier, sender, cache)

	payment, _, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
		StudentID:   "s1",
		AmountPaid:  decimal.RequireFromString("250.00"),
		PaymentMode: "UPI",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, "REC010", payment.ReceiptNo)

	require.Len(t, notifier.created, 1)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "9876543210", sender.sent[0])
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "fees:summary:class:10-A*", cache.patterns[0])
}

func TestFeePaymentServiceCreateExhaustsReceiptRetries(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505", Constraint: "fee_payments_receipt_no_key"}
	repo := &stubPaymentRepo{errs: []error{uniqueErr, uniqueErr, uniqueErr}}
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	svc := newPaymentServiceForTest(repo, &stubAssignmentRepo{}, students, &stubNotifier{}, &stubSender{ok: true}, &stubCacheInvalidator{})

	_, _, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
		StudentID:   "s1",
		AmountPaid:  decimal.RequireFromString("250.00"),
		PaymentMode: "Cash",
	})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrDuplicateReceipt.Code, appErr.Code)
	assert.Equal(t, 3, repo.calls)
}

func TestFeePaymentServiceCreateMapsLockedBalanceCheck(t *testing.T) {
	repo := &stubPaymentRepo{errs: []error{repository.ErrBalanceExceeded}}
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	svc := newPaymentServiceForTest(repo, &stubAssignmentRepo{}, students, &stubNotifier{}, &stubSender{ok: true}, &stubCacheInvalidator{})

	_, _, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
		StudentID:   "s1",
		AmountPaid:  decimal.RequireFromString("250.00"),
		PaymentMode: "Cash",
	})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrBalanceExceeded.Code, appErr.Code)
	assert.Equal(t, 1, repo.calls)
}

func TestFeePaymentServiceCreateRejectsUnknownMode(t *testing.T) {
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	svc := newPaymentServiceForTest(&stubPaymentRepo{}, &stubAssignmentRepo{}, students, &stubNotifier{}, &stubSender{ok: true}, &stubCacheInvalidator{})

	_, _, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
		StudentID:   "s1",
		AmountPaid:  decimal.RequireFromString("250.00"),
		PaymentMode: "Barter",
	})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestFeePaymentServiceCreateRejectsForeignAssignment(t *testing.T) {
	assignmentID := "a1"
	other := paidAssignment(assignmentID, "5000.00", "0.00")
	other.StudentID = "someone-else"
	assignments := &stubAssignmentRepo{byID: map[string]*models.StudentFeeAssignment{assignmentID: other}}
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	svc := newPaymentServiceForTest(&stubPaymentRepo{}, assignments, students, &stubNotifier{}, &stubSender{ok: true}, &stubCacheInvalidator{})

	_, _, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
		StudentID:       "s1",
		FeeAssignmentID: &assignmentID,
		AmountPaid:      decimal.RequireFromString("250.00"),
		PaymentMode:     "Cash",
	})
	appErr := asAppError(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "different student")
}

func TestFeePaymentServiceCreateSurvivesSideEffectFailures(t *testing.T) {
	repo := &stubPaymentRepo{assignment: paidAssignment("a1", "5000.00", "250.00")}
	assignments := &stubAssignmentRepo{byID: map[string]*models.StudentFeeAssignment{
		"a1": paidAssignment("a1", "5000.00", "0.00"),
	}}
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	notifier := &stubNotifier{err: assert.AnError}
	sender := &stubSender{ok: false}
	cache := &stubCacheInvalidator{err: assert.AnError}
	svc := newPaymentServiceForTest(repo, assignments, students, notifier, sender, cache)

	assignmentID := "a1"
	payment, assignment, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
		StudentID:       "s1",
		FeeAssignmentID: &assignmentID,
		AmountPaid:      decimal.RequireFromString("250.00"),
		PaymentMode:     "Cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "REC010", payment.ReceiptNo)
	require.NotNil(t, assignment)
	assert.True(t, assignment.PaidAmount.Equal(decimal.RequireFromString("250.00")))
}

// serializedLedgerRepo mimics the row lock taken by the payment
// transaction: Create runs one at a time, re-checks the balance against
// the committed state and allocates sequential receipt numbers.
type serializedLedgerRepo struct {
	mu         sync.Mutex
	assignment models.StudentFeeAssignment
	next       int
	receipts   []string
}

func (s *serializedLedgerRepo) Create(_ context.Context, payment *models.FeePayment) (*models.StudentFeeAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	newPaid := s.assignment.PaidAmount.Add(payment.AmountPaid)
	if newPaid.GreaterThan(s.assignment.FinalAmount) {
		return nil, repository.ErrBalanceExceeded
	}
	s.next++
	payment.ReceiptNo = fmt.Sprintf("REC%03d", s.next)
	payment.ID = payment.ReceiptNo
	s.assignment.PaidAmount = newPaid
	s.assignment.IsFullyPaid = newPaid.GreaterThanOrEqual(s.assignment.FinalAmount)
	s.receipts = append(s.receipts, payment.ReceiptNo)
	snapshot := s.assignment
	return &snapshot, nil
}

func (s *serializedLedgerRepo) List(context.Context, models.FeePaymentFilter) ([]models.FeePayment, int, error) {
	return nil, 0, nil
}

func (s *serializedLedgerRepo) FindByID(context.Context, string) (*models.FeePayment, error) {
	return nil, sql.ErrNoRows
}

func (s *serializedLedgerRepo) FindDetailByID(context.Context, string) (*models.FeePaymentDetail, error) {
	return nil, sql.ErrNoRows
}

func TestFeePaymentServiceConcurrentPaymentsNeverOverdraw(t *testing.T) {
	assignmentID := "a1"
	repo := &serializedLedgerRepo{assignment: *paidAssignment(assignmentID, "1000.00", "0.00")}
	assignments := &stubAssignmentRepo{byID: map[string]*models.StudentFeeAssignment{
		assignmentID: paidAssignment(assignmentID, "1000.00", "0.00"),
	}}
	students := &stubStudentReader{students: map[string]*models.Student{"s1": dayScholar("s1", "10-A")}}
	svc := NewFeePaymentService(repo, assignments, students, nil, nil, nil, nil, nil, nil,
		FeePaymentServiceConfig{ReceiptMaxRetries: 3})

	// Eight payments of 200.00 each against a 1000.00 balance: exactly
	// five can be accepted, the rest must bounce off the locked re-check.
	const submissions = 8
	errs := make(chan error, submissions)
	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Create(context.Background(), dto.CreateFeePaymentRequest{
				StudentID:       "s1",
				FeeAssignmentID: &assignmentID,
				AmountPaid:      decimal.RequireFromString("200.00"),
				PaymentMode:     "Cash",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	accepted, rejected := 0, 0
	for err := range errs {
		if err == nil {
			accepted++
			continue
		}
		rejected++
		appErr := appErrors.FromError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, appErrors.ErrBalanceExceeded.Code, appErr.Code)
	}
	assert.Equal(t, 5, accepted)
	assert.Equal(t, 3, rejected)
	assert.True(t, repo.assignment.PaidAmount.Equal(repo.assignment.FinalAmount),
		"accepted payments must sum to exactly the final amount")
	assert.True(t, repo.assignment.IsFullyPaid)

	require.Len(t, repo.receipts, accepted)
	seen := map[string]bool{}
	for _, receipt := range repo.receipts {
		assert.False(t, seen[receipt], "receipt %s allocated twice", receipt)
		seen[receipt] = true
	}
}
