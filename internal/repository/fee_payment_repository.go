package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

// FeePaymentRepository persists payments. A payment insert, its receipt
// allocation and the matching assignment balance update always commit or
// roll back together.
type FeePaymentRepository struct {
	db            *sqlx.DB
	receiptPrefix string
	receiptPad    int
}

// NewFeePaymentRepository constructs the repository.
func NewFeePaymentRepository(db *sqlx.DB, receiptPrefix string, receiptPad int) *FeePaymentRepository {
	if receiptPrefix == "" {
		receiptPrefix = "REC"
	}
	if receiptPad <= 0 {
		receiptPad = 3
	}
	return &FeePaymentRepository{db: db, receiptPrefix: receiptPrefix, receiptPad: receiptPad}
}

// Create records a payment in one transaction: allocate the receipt number
// under the counter row lock, insert the payment, then apply the amount to
// the assignment under its own row lock. A balance violation aborts the
// whole transaction; no payment row survives without its ledger update.
func (r *FeePaymentRepository) Create(ctx context.Context, payment *models.FeePayment) (*models.StudentFeeAssignment, error) {
	assignment, err := r.createTx(ctx, payment, true)
	if IsUndefinedTable(err) {
		// Counter table missing (legacy installation): fall back to
		// scanning the highest existing receipt. Not race-safe; the
		// unique constraint plus the service retry covers collisions.
		return r.createTx(ctx, payment, false)
	}
	return assignment, err
}

func (r *FeePaymentRepository) createTx(ctx context.Context, payment *models.FeePayment, useCounter bool) (assignment *models.StudentFeeAssignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if payment.ReceiptNo == "" {
		var receiptNo string
		if useCounter {
			receiptNo, err = r.allocateFromCounter(ctx, tx)
		} else {
			receiptNo, err = r.allocateFromScan(ctx, tx)
		}
		if err != nil {
			return nil, err
		}
		payment.ReceiptNo = receiptNo
	}

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	payment.CreatedAt = time.Now().UTC()

	const insertQuery = `INSERT INTO fee_payments (id, student_id, fee_assignment_id, receipt_no, payment_date, amount_paid, payment_mode, remarks, processed_by, created_at)
        VALUES (:id, :student_id, :fee_assignment_id, :receipt_no, :payment_date, :amount_paid, :payment_mode, :remarks, :processed_by, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, payment); err != nil {
		err = fmt.Errorf("insert fee payment: %w", err)
		return nil, err
	}

	if payment.FeeAssignmentID != nil {
		assignment, err = r.applyToAssignment(ctx, tx, *payment.FeeAssignmentID, payment)
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit fee payment: %w", err)
	}
	return assignment, nil
}

// allocateFromCounter locks the receipt_sequences row and increments it.
// The lock is held until the surrounding transaction finishes, so two
// concurrent payments can never observe the same counter value.
func (r *FeePaymentRepository) allocateFromCounter(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var seq models.ReceiptSequence
	const lockQuery = `SELECT id, last_number FROM receipt_sequences WHERE id = 1 FOR UPDATE`
	err := tx.GetContext(ctx, &seq, lockQuery)
	if err != nil {
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("lock receipt sequence: %w", err)
		}
		const seedQuery = `INSERT INTO receipt_sequences (id, last_number) VALUES (1, 1)
            ON CONFLICT (id) DO UPDATE SET last_number = receipt_sequences.last_number + 1
            RETURNING last_number`
		if err := tx.GetContext(ctx, &seq.LastNumber, seedQuery); err != nil {
			return "", fmt.Errorf("seed receipt sequence: %w", err)
		}
		return r.format(seq.LastNumber), nil
	}

	const bumpQuery = `UPDATE receipt_sequences SET last_number = last_number + 1 WHERE id = 1 RETURNING last_number`
	if err := tx.GetContext(ctx, &seq.LastNumber, bumpQuery); err != nil {
		return "", fmt.Errorf("advance receipt sequence: %w", err)
	}
	return r.format(seq.LastNumber), nil
}

// allocateFromScan derives the next number from the highest stored receipt.
func (r *FeePaymentRepository) allocateFromScan(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var last string
	const lastQuery = `SELECT receipt_no FROM fee_payments WHERE receipt_no LIKE $1 ORDER BY created_at DESC, receipt_no DESC LIMIT 1`
	err := tx.GetContext(ctx, &last, lastQuery, r.receiptPrefix+"%")
	if err != nil {
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("scan last receipt: %w", err)
		}
		return r.format(1), nil
	}
	suffix := strings.TrimPrefix(last, r.receiptPrefix)
	n, convErr := strconv.ParseInt(suffix, 10, 64)
	if convErr != nil {
		return r.format(1), nil
	}
	return r.format(n + 1), nil
}

func (r *FeePaymentRepository) format(n int64) string {
	return fmt.Sprintf("%s%0*d", r.receiptPrefix, r.receiptPad, n)
}

// applyToAssignment is the sole legal path that grows paid_amount. The row
// is locked so the balance check and the write are one atomic step.
func (r *FeePaymentRepository) applyToAssignment(ctx context.Context, tx *sqlx.Tx, assignmentID string, payment *models.FeePayment) (*models.StudentFeeAssignment, error) {
	var assignment models.StudentFeeAssignment
	const lockQuery = `SELECT id, student_id, fee_structure_id, assigned_on, original_amount, discount_amount, final_amount, paid_amount, is_fully_paid
        FROM student_fee_assignments WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &assignment, lockQuery, assignmentID); err != nil {
		return nil, err
	}

	newPaid := assignment.PaidAmount.Add(payment.AmountPaid)
	if newPaid.GreaterThan(assignment.FinalAmount) {
		return nil, ErrBalanceExceeded
	}

	assignment.PaidAmount = newPaid
	assignment.IsFullyPaid = newPaid.GreaterThanOrEqual(assignment.FinalAmount) && assignment.FinalAmount.IsPositive()

	const updateQuery = `UPDATE student_fee_assignments SET paid_amount = $2, is_fully_paid = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, assignmentID, assignment.PaidAmount, assignment.IsFullyPaid); err != nil {
		return nil, fmt.Errorf("apply payment to assignment: %w", err)
	}
	return &assignment, nil
}

// List returns payments filtered by the provided criteria.
func (r *FeePaymentRepository) List(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error) {
	base := `FROM fee_payments p`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.FeeAssignmentID != "" {
		conditions = append(conditions, fmt.Sprintf("p.fee_assignment_id = $%d", len(args)+1))
		args = append(args, filter.FeeAssignmentID)
	}
	if filter.PaymentMode != "" {
		conditions = append(conditions, fmt.Sprintf("p.payment_mode = $%d", len(args)+1))
		args = append(args, filter.PaymentMode)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT p.id, p.student_id, p.fee_assignment_id, p.receipt_no, p.payment_date, p.amount_paid, p.payment_mode, p.remarks, p.processed_by, p.created_at
        %s ORDER BY p.created_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fee payments: %w", err)
	}
	return payments, total, nil
}

// FindByID returns a payment by its ID.
func (r *FeePaymentRepository) FindByID(ctx context.Context, id string) (*models.FeePayment, error) {
	const query = `SELECT id, student_id, fee_assignment_id, receipt_no, payment_date, amount_paid, payment_mode, remarks, processed_by, created_at
        FROM fee_payments WHERE id = $1`
	var payment models.FeePayment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindDetailByID returns a payment with receipt context.
func (r *FeePaymentRepository) FindDetailByID(ctx context.Context, id string) (*models.FeePaymentDetail, error) {
	const query = `SELECT p.id, p.student_id, p.fee_assignment_id, p.receipt_no, p.payment_date, p.amount_paid, p.payment_mode, p.remarks, p.processed_by, p.created_at,
        s.full_name AS student_name, s.class_name AS class_name,
        COALESCE(fc.name, '') AS category_name,
        COALESCE(a.final_amount - a.paid_amount, 0) AS balance_due
        FROM fee_payments p
        LEFT JOIN students s ON s.id = p.student_id
        LEFT JOIN student_fee_assignments a ON a.id = p.fee_assignment_id
        LEFT JOIN fee_structures fs ON fs.id = a.fee_structure_id
        LEFT JOIN fee_categories fc ON fc.id = fs.fee_category_id
        WHERE p.id = $1`
	var detail models.FeePaymentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CollectionRows returns payment rows for the collections CSV export.
func (r *FeePaymentRepository) CollectionRows(ctx context.Context, from, to *time.Time) ([]models.FeePaymentDetail, error) {
	base := `FROM fee_payments p
        LEFT JOIN students s ON s.id = p.student_id
        LEFT JOIN student_fee_assignments a ON a.id = p.fee_assignment_id
        LEFT JOIN fee_structures fs ON fs.id = a.fee_structure_id
        LEFT JOIN fee_categories fc ON fc.id = fs.fee_category_id`
	var conditions []string
	var args []interface{}
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date <= $%d", len(args)+1))
		args = append(args, *to)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT p.id, p.student_id, p.fee_assignment_id, p.receipt_no, p.payment_date, p.amount_paid, p.payment_mode, p.remarks, p.processed_by, p.created_at,
        s.full_name AS student_name, s.class_name AS class_name,
        COALESCE(fc.name, '') AS category_name,
        COALESCE(a.final_amount - a.paid_amount, 0) AS balance_due
        %s ORDER BY p.payment_date ASC, p.receipt_no ASC`, base+clause)

	var rows []models.FeePaymentDetail
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list collection rows: %w", err)
	}
	return rows, nil
}
