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

// FeeCategoryRepository handles persistence of fee categories.
type FeeCategoryRepository struct {
	db *sqlx.DB
}

// NewFeeCategoryRepository constructs the repository.
func NewFeeCategoryRepository(db *sqlx.DB) *FeeCategoryRepository {
	return &FeeCategoryRepository{db: db}
}

// List returns categories, optionally restricted to active ones.
func (r *FeeCategoryRepository) List(ctx context.Context, activeOnly bool, page, size int) ([]models.FeeCategory, int, error) {
	var conditions []string
	var args []interface{}
	if activeOnly {
		conditions = append(conditions, "active = TRUE")
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, description, fee_type, applicable_to, is_refundable, active, created_at, updated_at
        FROM fee_categories%s ORDER BY name ASC LIMIT %d OFFSET %d`, clause, size, offset)

	var categories []models.FeeCategory
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fee categories: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM fee_categories%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fee categories: %w", err)
	}
	return categories, total, nil
}

// FindByID returns a category by its ID.
func (r *FeeCategoryRepository) FindByID(ctx context.Context, id string) (*models.FeeCategory, error) {
	const query = `SELECT id, name, description, fee_type, applicable_to, is_refundable, active, created_at, updated_at
        FROM fee_categories WHERE id = $1`
	var category models.FeeCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// Create persists a new category.
func (r *FeeCategoryRepository) Create(ctx context.Context, category *models.FeeCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	const query = `INSERT INTO fee_categories (id, name, description, fee_type, applicable_to, is_refundable, active, created_at, updated_at)
        VALUES (:id, :name, :description, :fee_type, :applicable_to, :is_refundable, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create fee category: %w", err)
	}
	return nil
}

// Update modifies an existing category.
func (r *FeeCategoryRepository) Update(ctx context.Context, category *models.FeeCategory) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fee_categories SET name = :name, description = :description, fee_type = :fee_type,
        applicable_to = :applicable_to, is_refundable = :is_refundable, active = :active, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update fee category: %w", err)
	}
	return nil
}

// Delete removes a category unless a structure still references it.
func (r *FeeCategoryRepository) Delete(ctx context.Context, id string) error {
	var inUse int
	const refQuery = `SELECT COUNT(*) FROM fee_structures WHERE fee_category_id = $1`
	if err := r.db.GetContext(ctx, &inUse, refQuery, id); err != nil {
		return fmt.Errorf("check fee category references: %w", err)
	}
	if inUse > 0 {
		return ErrReferenced
	}
	const query = `DELETE FROM fee_categories WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete fee category: %w", err)
	}
	return nil
}
