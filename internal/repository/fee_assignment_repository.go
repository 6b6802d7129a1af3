package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

// FeeAssignmentRepository handles persistence of student fee assignments.
type FeeAssignmentRepository struct {
	db *sqlx.DB
}

// NewFeeAssignmentRepository constructs the repository.
func NewFeeAssignmentRepository(db *sqlx.DB) *FeeAssignmentRepository {
	return &FeeAssignmentRepository{db: db}
}

const assignmentColumns = `a.id, a.student_id, a.fee_structure_id, a.assigned_on, a.original_amount,
        a.discount_amount, a.final_amount, a.paid_amount, a.is_fully_paid`

// List returns assignments filtered by the provided criteria.
func (r *FeeAssignmentRepository) List(ctx context.Context, filter models.FeeAssignmentFilter) ([]models.StudentFeeAssignmentDetail, int, error) {
	base := `FROM student_fee_assignments a
LEFT JOIN students s ON s.id = a.student_id
LEFT JOIN fee_structures fs ON fs.id = a.fee_structure_id
LEFT JOIN fee_categories fc ON fc.id = fs.fee_category_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.FeeStructureID != "" {
		conditions = append(conditions, fmt.Sprintf("a.fee_structure_id = $%d", len(args)+1))
		args = append(args, filter.FeeStructureID)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.FullyPaid != nil {
		conditions = append(conditions, fmt.Sprintf("a.is_fully_paid = $%d", len(args)+1))
		args = append(args, *filter.FullyPaid)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"assigned_on":  "a.assigned_on",
		"student_name": "s.full_name",
		"due_date":     "fs.due_date",
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "assigned_on"
	}
	orderBy := allowedSorts[sortBy]
	if orderBy == "" {
		orderBy = "a.assigned_on"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT %s,
        s.full_name AS student_name, s.class_name AS class_name,
        fc.name AS category_name, fs.due_date AS due_date, fs.amount AS structure_amount
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, assignmentColumns, base+clause, orderBy, order, size, offset)

	var assignments []models.StudentFeeAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fee assignments: %w", err)
	}
	return assignments, total, nil
}

// FindByID returns an assignment by its ID.
func (r *FeeAssignmentRepository) FindByID(ctx context.Context, id string) (*models.StudentFeeAssignment, error) {
	const query = `SELECT id, student_id, fee_structure_id, assigned_on, original_amount, discount_amount, final_amount, paid_amount, is_fully_paid
        FROM student_fee_assignments WHERE id = $1`
	var assignment models.StudentFeeAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindByStudentAndStructure returns the assignment binding a student to a
// structure, or sql.ErrNoRows.
func (r *FeeAssignmentRepository) FindByStudentAndStructure(ctx context.Context, studentID, structureID string) (*models.StudentFeeAssignment, error) {
	const query = `SELECT id, student_id, fee_structure_id, assigned_on, original_amount, discount_amount, final_amount, paid_amount, is_fully_paid
        FROM student_fee_assignments WHERE student_id = $1 AND fee_structure_id = $2`
	var assignment models.StudentFeeAssignment
	if err := r.db.GetContext(ctx, &assignment, query, studentID, structureID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// upsertQuery refreshes amounts but never touches paid_amount on rows that
// already carry payments; is_fully_paid is recomputed from the preserved
// paid_amount against the new final amount.
const upsertQuery = `INSERT INTO student_fee_assignments
        (id, student_id, fee_structure_id, assigned_on, original_amount, discount_amount, final_amount, paid_amount, is_fully_paid)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 0, FALSE)
        ON CONFLICT (student_id, fee_structure_id) DO UPDATE SET
            original_amount = EXCLUDED.original_amount,
            discount_amount = EXCLUDED.discount_amount,
            final_amount = EXCLUDED.final_amount,
            is_fully_paid = (student_fee_assignments.paid_amount >= EXCLUDED.final_amount AND EXCLUDED.final_amount > 0)
        RETURNING id, assigned_on, paid_amount, is_fully_paid`

// Upsert creates or refreshes one assignment.
func (r *FeeAssignmentRepository) Upsert(ctx context.Context, assignment *models.StudentFeeAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.AssignedOn.IsZero() {
		assignment.AssignedOn = time.Now().UTC()
	}
	row := r.db.QueryRowxContext(ctx, upsertQuery,
		assignment.ID, assignment.StudentID, assignment.FeeStructureID, assignment.AssignedOn,
		assignment.OriginalAmount, assignment.DiscountAmount, assignment.FinalAmount)
	if err := row.Scan(&assignment.ID, &assignment.AssignedOn, &assignment.PaidAmount, &assignment.IsFullyPaid); err != nil {
		return fmt.Errorf("upsert fee assignment: %w", err)
	}
	return nil
}

// BulkUpsert applies all upserts inside one transaction. A failing row is
// rolled back to a savepoint and skipped so the remaining students still
// get their assignments; only transaction-level failures abort the run.
func (r *FeeAssignmentRepository) BulkUpsert(ctx context.Context, assignments []models.StudentFeeAssignment) (processed int, skipped int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin bulk assignment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range assignments {
		assignment := &assignments[i]
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if assignment.AssignedOn.IsZero() {
			assignment.AssignedOn = time.Now().UTC()
		}
		if _, err = tx.ExecContext(ctx, "SAVEPOINT bulk_assign_row"); err != nil {
			return 0, 0, fmt.Errorf("create savepoint: %w", err)
		}
		row := tx.QueryRowxContext(ctx, upsertQuery,
			assignment.ID, assignment.StudentID, assignment.FeeStructureID, assignment.AssignedOn,
			assignment.OriginalAmount, assignment.DiscountAmount, assignment.FinalAmount)
		if scanErr := row.Scan(&assignment.ID, &assignment.AssignedOn, &assignment.PaidAmount, &assignment.IsFullyPaid); scanErr != nil {
			if _, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT bulk_assign_row"); err != nil {
				return 0, 0, fmt.Errorf("rollback savepoint: %w", err)
			}
			skipped++
			continue
		}
		processed++
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit bulk assignments: %w", err)
	}
	return processed, skipped, nil
}

// UpdateDiscount adjusts the discount under a row lock so the ledger
// invariants hold against concurrent payments.
func (r *FeeAssignmentRepository) UpdateDiscount(ctx context.Context, id string, discount decimal.Decimal) (assignment *models.StudentFeeAssignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin discount transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.StudentFeeAssignment
	const lockQuery = `SELECT id, student_id, fee_structure_id, assigned_on, original_amount, discount_amount, final_amount, paid_amount, is_fully_paid
        FROM student_fee_assignments WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, lockQuery, id); err != nil {
		return nil, err
	}

	final := current.OriginalAmount.Sub(discount)
	if final.IsNegative() {
		err = fmt.Errorf("discount %s exceeds original amount %s", discount, current.OriginalAmount)
		return nil, err
	}
	if current.PaidAmount.GreaterThan(final) {
		err = ErrBalanceExceeded
		return nil, err
	}

	current.DiscountAmount = discount
	current.FinalAmount = final
	current.IsFullyPaid = current.PaidAmount.GreaterThanOrEqual(final) && final.IsPositive()

	const updateQuery = `UPDATE student_fee_assignments SET discount_amount = $2, final_amount = $3, is_fully_paid = $4 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, id, current.DiscountAmount, current.FinalAmount, current.IsFullyPaid); err != nil {
		return nil, fmt.Errorf("update assignment discount: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit discount update: %w", err)
	}
	return &current, nil
}

// Delete removes an assignment. Assignments with recorded payments are
// never deleted.
func (r *FeeAssignmentRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var payments int
	const paymentsQuery = `SELECT COUNT(*) FROM fee_payments WHERE fee_assignment_id = $1`
	if err = tx.GetContext(ctx, &payments, paymentsQuery, id); err != nil {
		return fmt.Errorf("check assignment payments: %w", err)
	}
	if payments > 0 {
		err = ErrPaymentsExist
		return err
	}

	var res sql.Result
	const deleteQuery = `DELETE FROM student_fee_assignments WHERE id = $1`
	if res, err = tx.ExecContext(ctx, deleteQuery, id); err != nil {
		return fmt.Errorf("delete fee assignment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment delete: %w", err)
	}
	return nil
}

// ListAll streams every assignment for the reconciliation audit.
func (r *FeeAssignmentRepository) ListAll(ctx context.Context) ([]models.StudentFeeAssignment, error) {
	const query = `SELECT id, student_id, fee_structure_id, assigned_on, original_amount, discount_amount, final_amount, paid_amount, is_fully_paid
        FROM student_fee_assignments ORDER BY assigned_on ASC`
	var assignments []models.StudentFeeAssignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list all fee assignments: %w", err)
	}
	return assignments, nil
}

// PaymentSums returns the per-assignment payment totals for the audit.
func (r *FeeAssignmentRepository) PaymentSums(ctx context.Context) (map[string]decimal.Decimal, error) {
	const query = `SELECT fee_assignment_id, COALESCE(SUM(amount_paid), 0) AS total
        FROM fee_payments WHERE fee_assignment_id IS NOT NULL GROUP BY fee_assignment_id`
	var rows []models.PaymentAggregate
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("sum fee payments: %w", err)
	}
	sums := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.FeeAssignmentID] = row.Total
	}
	return sums, nil
}
