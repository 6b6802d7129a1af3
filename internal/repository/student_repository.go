package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

// StudentRepository is a read-only view of the student directory. The
// directory is owned by the student module; the fee ledger only looks
// students up by class and eligibility.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, full_name, class_name, section_id, student_category, transport_mode, guardian_phone, active`

// FindByID returns a student by their ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListEligibleByClass returns active students of a class matching the
// eligibility. Static kinds are filtered in SQL; the section kind narrows
// on section_id.
func (r *StudentRepository) ListEligibleByClass(ctx context.Context, className string, eligibility models.Eligibility) ([]models.Student, error) {
	conditions := []string{"class_name = $1", "active = TRUE"}
	args := []interface{}{className}

	switch eligibility.Kind {
	case models.EligibilityAll:
		// every active student in the class
	case models.EligibilityDayScholar:
		conditions = append(conditions, fmt.Sprintf("student_category = $%d", len(args)+1))
		args = append(args, models.StudentCategoryDayScholar)
	case models.EligibilityHosteller:
		conditions = append(conditions, fmt.Sprintf("student_category = $%d", len(args)+1))
		args = append(args, models.StudentCategoryHosteller)
	case models.EligibilityTransportUser:
		conditions = append(conditions, fmt.Sprintf("transport_mode IN ($%d, $%d)", len(args)+1, len(args)+2))
		args = append(args, models.TransportSchoolBus, models.TransportPrivateVan)
	case models.EligibilitySection:
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, eligibility.SectionID)
	default:
		return nil, fmt.Errorf("unsupported eligibility kind %q", eligibility.Kind)
	}

	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY full_name ASC`,
		studentColumns, strings.Join(conditions, " AND "))

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list eligible students: %w", err)
	}
	return students, nil
}

// ListWithOutstanding returns students of a class that still owe money,
// used by the reminder fan-out.
func (r *StudentRepository) ListWithOutstanding(ctx context.Context, className string) ([]models.Student, error) {
	const query = `SELECT DISTINCT s.id, s.full_name, s.class_name, s.section_id, s.student_category, s.transport_mode, s.guardian_phone, s.active
        FROM students s
        JOIN student_fee_assignments a ON a.student_id = s.id
        WHERE s.class_name = $1 AND s.active = TRUE AND a.paid_amount < a.final_amount
        ORDER BY s.full_name ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, className); err != nil {
		return nil, fmt.Errorf("list students with outstanding balance: %w", err)
	}
	return students, nil
}
