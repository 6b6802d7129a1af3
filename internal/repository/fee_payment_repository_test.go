package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

func nowStamp() time.Time {
	return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
}

func newPaymentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFeePaymentRepositoryCreateAllocatesFromCounter(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewFeePaymentRepository(db, "REC", 3)

	assignmentID := "a1"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, last_number FROM receipt_sequences WHERE id = 1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_number"}).AddRow(1, 41))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE receipt_sequences SET last_number = last_number + 1 WHERE id = 1 RETURNING last_number")).
		WillReturnRows(sqlmock.NewRows([]string{"last_number"}).AddRow(42))
	mock.ExpectExec("INSERT INTO fee_payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_fee_assignments WHERE id = $1 FOR UPDATE")).
		WithArgs(assignmentID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "fee_structure_id", "assigned_on", "original_amount", "discount_amount", "final_amount", "paid_amount", "is_fully_paid"}).
			AddRow(assignmentID, "s1", "fs1", nowStamp(), "5000.00", "500.00", "4500.00", "0.00", false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_fee_assignments SET paid_amount = $2, is_fully_paid = $3 WHERE id = $1")).
		WithArgs(assignmentID, sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment := &models.FeePayment{
		StudentID:       "s1",
		FeeAssignmentID: &assignmentID,
		AmountPaid:      decimal.RequireFromString("4500.00"),
		PaymentMode:     models.PaymentModeCash,
	}
	assignment, err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, "REC042", payment.ReceiptNo)
	require.NotNil(t, assignment)
	assert.True(t, assignment.IsFullyPaid)
	assert.True(t, assignment.PaidAmount.Equal(decimal.RequireFromString("4500.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeePaymentRepositoryCreateRejectsOverpayment(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewFeePaymentRepository(db, "REC", 3)

	assignmentID := "a1"

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, last_number FROM receipt_sequences WHERE id = 1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "last_number"}).AddRow(1, 7))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE receipt_sequences SET last_number = last_number + 1 WHERE id = 1 RETURNING last_number")).
		WillReturnRows(sqlmock.NewRows([]string{"last_number"}).AddRow(8))
	mock.ExpectExec("INSERT INTO fee_payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_fee_assignments WHERE id = $1 FOR UPDATE")).
		WithArgs(assignmentID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "fee_structure_id", "assigned_on", "original_amount", "discount_amount", "final_amount", "paid_amount", "is_fully_paid"}).
			AddRow(assignmentID, "s1", "fs1", nowStamp(), "5000.00", "0.00", "5000.00", "4800.00", false))
	mock.ExpectRollback()

	payment := &models.FeePayment{
		StudentID:       "s1",
		FeeAssignmentID: &assignmentID,
		AmountPaid:      decimal.RequireFromString("500.00"),
		PaymentMode:     models.PaymentModeUPI,
	}
	_, err := repo.Create(context.Background(), payment)
	assert.ErrorIs(t, err, ErrBalanceExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeePaymentRepositoryCreateFallsBackToScan(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewFeePaymentRepository(db, "REC", 3)

	// Counter table missing: first transaction aborts, the retry scans
	// the highest stored receipt instead.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, last_number FROM receipt_sequences WHERE id = 1 FOR UPDATE")).
		WillReturnError(&pq.Error{Code: "42P01"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT receipt_no FROM fee_payments WHERE receipt_no LIKE $1")).
		WithArgs("REC%").
		WillReturnRows(sqlmock.NewRows([]string{"receipt_no"}).AddRow("REC007"))
	mock.ExpectExec("INSERT INTO fee_payments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment := &models.FeePayment{
		StudentID:   "s1",
		AmountPaid:  decimal.RequireFromString("250.00"),
		PaymentMode: models.PaymentModeCash,
	}
	assignment, err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	assert.Nil(t, assignment)
	assert.Equal(t, "REC008", payment.ReceiptNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeePaymentRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewFeePaymentRepository(db, "REC", 3)

	mock.ExpectQuery("SELECT p.id, p.student_id").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "fee_assignment_id", "receipt_no", "payment_date", "amount_paid", "payment_mode", "remarks", "processed_by", "created_at", "student_name", "class_name", "category_name", "balance_due"}).
			AddRow("p1", "s1", nil, "REC001", nowStamp(), "1500.00", "Cash", "", "clerk", nowStamp(), "Anitha R", "10-A", "Tuition", "3500.00"))

	detail, err := repo.FindDetailByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "REC001", detail.ReceiptNo)
	assert.Equal(t, "Anitha R", detail.StudentName)
	assert.True(t, detail.BalanceDue.Equal(decimal.RequireFromString("3500.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
