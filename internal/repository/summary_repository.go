package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

// SummaryRepository aggregates collection figures for reporting.
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository constructs the repository.
func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// ClassCollections returns per-category totals for a class.
func (r *SummaryRepository) ClassCollections(ctx context.Context, className string) ([]models.CategoryCollection, error) {
	const query = `SELECT fc.id AS category_id, fc.name AS category_name,
        COALESCE(SUM(a.final_amount), 0) AS assigned,
        COALESCE(SUM(a.paid_amount), 0) AS collected,
        COALESCE(SUM(a.final_amount - a.paid_amount), 0) AS outstanding,
        COUNT(DISTINCT a.student_id) AS students
        FROM student_fee_assignments a
        JOIN students s ON s.id = a.student_id
        JOIN fee_structures fs ON fs.id = a.fee_structure_id
        JOIN fee_categories fc ON fc.id = fs.fee_category_id
        WHERE s.class_name = $1
        GROUP BY fc.id, fc.name
        ORDER BY fc.name ASC`
	var collections []models.CategoryCollection
	if err := r.db.SelectContext(ctx, &collections, query, className); err != nil {
		return nil, fmt.Errorf("aggregate class collections: %w", err)
	}
	return collections, nil
}

// ClassPaidCounts returns how many assignments in a class are fully paid
// and how many are pending.
func (r *SummaryRepository) ClassPaidCounts(ctx context.Context, className string) (fullyPaid int, pending int, err error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE a.is_fully_paid) AS fully_paid,
        COUNT(*) FILTER (WHERE NOT a.is_fully_paid) AS pending
        FROM student_fee_assignments a
        JOIN students s ON s.id = a.student_id
        WHERE s.class_name = $1`
	row := r.db.QueryRowxContext(ctx, query, className)
	if err := row.Scan(&fullyPaid, &pending); err != nil {
		return 0, 0, fmt.Errorf("count class paid assignments: %w", err)
	}
	return fullyPaid, pending, nil
}
