package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestFeeAssignmentRepositoryUpsertPreservesPaidAmount(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewFeeAssignmentRepository(db)

	// The database resolves the conflict and hands back the paid amount
	// already recorded for this student and structure.
	mock.ExpectQuery("INSERT INTO student_fee_assignments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_on", "paid_amount", "is_fully_paid"}).
			AddRow("existing-id", nowStamp(), "1200.00", false))

	assignment := &models.StudentFeeAssignment{
		StudentID:      "s1",
		FeeStructureID: "fs1",
		OriginalAmount: decimal.RequireFromString("5000.00"),
		DiscountAmount: decimal.RequireFromString("500.00"),
		FinalAmount:    decimal.RequireFromString("4500.00"),
	}
	require.NoError(t, repo.Upsert(context.Background(), assignment))
	assert.Equal(t, "existing-id", assignment.ID)
	assert.True(t, assignment.PaidAmount.Equal(decimal.RequireFromString("1200.00")))
	assert.False(t, assignment.IsFullyPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeAssignmentRepositoryBulkUpsertSkipsFailedRows(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewFeeAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT bulk_assign_row")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO student_fee_assignments").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assigned_on", "paid_amount", "is_fully_paid"}).
			AddRow("id-1", nowStamp(), "0.00", false))
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT bulk_assign_row")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO student_fee_assignments").
		WillReturnError(assert.AnError)
	mock.ExpectExec(regexp.QuoteMeta("ROLLBACK TO SAVEPOINT bulk_assign_row")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assignments := []models.StudentFeeAssignment{
		{StudentID: "s1", FeeStructureID: "fs1", OriginalAmount: decimal.RequireFromString("1000"), FinalAmount: decimal.RequireFromString("1000")},
		{StudentID: "missing", FeeStructureID: "fs1", OriginalAmount: decimal.RequireFromString("1000"), FinalAmount: decimal.RequireFromString("1000")},
	}
	processed, skipped, err := repo.BulkUpsert(context.Background(), assignments)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeAssignmentRepositoryUpdateDiscountRejectsPaidOverrun(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewFeeAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_fee_assignments WHERE id = $1 FOR UPDATE")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "fee_structure_id", "assigned_on", "original_amount", "discount_amount", "final_amount", "paid_amount", "is_fully_paid"}).
			AddRow("a1", "s1", "fs1", nowStamp(), "5000.00", "0.00", "5000.00", "4800.00", false))
	mock.ExpectRollback()

	_, err := repo.UpdateDiscount(context.Background(), "a1", decimal.RequireFromString("500.00"))
	assert.ErrorIs(t, err, ErrBalanceExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeAssignmentRepositoryDeleteBlockedByPayments(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewFeeAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM fee_payments WHERE fee_assignment_id = $1")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrPaymentsExist)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeAssignmentRepositoryPaymentSums(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewFeeAssignmentRepository(db)

	mock.ExpectQuery("SELECT fee_assignment_id, COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"fee_assignment_id", "total"}).
			AddRow("a1", "1500.00").
			AddRow("a2", "300.00"))

	sums, err := repo.PaymentSums(context.Background())
	require.NoError(t, err)
	assert.Len(t, sums, 2)
	assert.True(t, sums["a1"].Equal(decimal.RequireFromString("1500.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
