package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

// FeeStructureRepository handles persistence of fee structures.
type FeeStructureRepository struct {
	db *sqlx.DB
}

// NewFeeStructureRepository constructs the repository.
func NewFeeStructureRepository(db *sqlx.DB) *FeeStructureRepository {
	return &FeeStructureRepository{db: db}
}

// List returns structures filtered by the provided criteria.
func (r *FeeStructureRepository) List(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructureDetail, int, error) {
	base := `FROM fee_structures fs
LEFT JOIN fee_categories fc ON fc.id = fs.fee_category_id`
	var conditions []string
	var args []interface{}

	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("fs.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("fs.class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Medium != "" {
		conditions = append(conditions, fmt.Sprintf("fs.medium = $%d", len(args)+1))
		args = append(args, filter.Medium)
	}
	if filter.FeeCategoryID != "" {
		conditions = append(conditions, fmt.Sprintf("fs.fee_category_id = $%d", len(args)+1))
		args = append(args, filter.FeeCategoryID)
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

	query := fmt.Sprintf(`SELECT fs.id, fs.academic_year_id, fs.class_name, fs.medium, fs.fee_category_id,
        fs.amount, fs.due_date, fs.installments, fs.created_at, fs.updated_at,
        fc.name AS category_name, fc.applicable_to AS category_applicable_to
        %s ORDER BY fs.class_name ASC, fc.name ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var structures []models.FeeStructureDetail
	if err := r.db.SelectContext(ctx, &structures, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee structures: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fee structures: %w", err)
	}
	return structures, total, nil
}

// FindByID returns a structure by its ID.
func (r *FeeStructureRepository) FindByID(ctx context.Context, id string) (*models.FeeStructure, error) {
	const query = `SELECT id, academic_year_id, class_name, medium, fee_category_id, amount, due_date, installments, created_at, updated_at
        FROM fee_structures WHERE id = $1`
	var structure models.FeeStructure
	if err := r.db.GetContext(ctx, &structure, query, id); err != nil {
		return nil, err
	}
	return &structure, nil
}

// Create persists a new structure. The (year, class, medium, category)
// combination is unique; violations surface as pq errors for the service
// to map onto a conflict.
func (r *FeeStructureRepository) Create(ctx context.Context, structure *models.FeeStructure) error {
	if structure.ID == "" {
		structure.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	structure.CreatedAt = now
	structure.UpdatedAt = now
	const query = `INSERT INTO fee_structures (id, academic_year_id, class_name, medium, fee_category_id, amount, due_date, installments, created_at, updated_at)
        VALUES (:id, :academic_year_id, :class_name, :medium, :fee_category_id, :amount, :due_date, :installments, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, structure); err != nil {
		return fmt.Errorf("create fee structure: %w", err)
	}
	return nil
}

// Update modifies amount, due date and installments of a structure.
func (r *FeeStructureRepository) Update(ctx context.Context, structure *models.FeeStructure) error {
	structure.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fee_structures SET amount = :amount, due_date = :due_date, installments = :installments, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, structure); err != nil {
		return fmt.Errorf("update fee structure: %w", err)
	}
	return nil
}

// Delete removes a structure unless assignments reference it.
func (r *FeeStructureRepository) Delete(ctx context.Context, id string) error {
	var inUse int
	const refQuery = `SELECT COUNT(*) FROM student_fee_assignments WHERE fee_structure_id = $1`
	if err := r.db.GetContext(ctx, &inUse, refQuery, id); err != nil {
		return fmt.Errorf("check fee structure references: %w", err)
	}
	if inUse > 0 {
		return ErrReferenced
	}
	const query = `DELETE FROM fee_structures WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete fee structure: %w", err)
	}
	return nil
}
