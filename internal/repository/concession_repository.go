package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

// ConcessionRepository handles persistence of fee concessions.
type ConcessionRepository struct {
	db *sqlx.DB
}

// NewConcessionRepository constructs the repository.
func NewConcessionRepository(db *sqlx.DB) *ConcessionRepository {
	return &ConcessionRepository{db: db}
}

// ListByStudent returns a student's concessions.
func (r *ConcessionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.FeeConcession, error) {
	const query = `SELECT id, student_id, concession_type, discount_percentage, valid_from, valid_until, created_at
        FROM fee_concessions WHERE student_id = $1 ORDER BY valid_from DESC`
	var concessions []models.FeeConcession
	if err := r.db.SelectContext(ctx, &concessions, query, studentID); err != nil {
		return nil, fmt.Errorf("list fee concessions: %w", err)
	}
	return concessions, nil
}

// FindActiveByStudent returns the concession in effect on the given day,
// or sql.ErrNoRows.
func (r *ConcessionRepository) FindActiveByStudent(ctx context.Context, studentID string, day time.Time) (*models.FeeConcession, error) {
	const query = `SELECT id, student_id, concession_type, discount_percentage, valid_from, valid_until, created_at
        FROM fee_concessions
        WHERE student_id = $1 AND valid_from <= $2 AND (valid_until IS NULL OR valid_until >= $2)
        ORDER BY valid_from DESC LIMIT 1`
	var concession models.FeeConcession
	if err := r.db.GetContext(ctx, &concession, query, studentID, day); err != nil {
		return nil, err
	}
	return &concession, nil
}

// Create persists a new concession.
func (r *ConcessionRepository) Create(ctx context.Context, concession *models.FeeConcession) error {
	if concession.ID == "" {
		concession.ID = uuid.NewString()
	}
	concession.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO fee_concessions (id, student_id, concession_type, discount_percentage, valid_from, valid_until, created_at)
        VALUES (:id, :student_id, :concession_type, :discount_percentage, :valid_from, :valid_until, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, concession); err != nil {
		return fmt.Errorf("create fee concession: %w", err)
	}
	return nil
}

// Delete removes a concession.
func (r *ConcessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM fee_concessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete fee concession: %w", err)
	}
	return nil
}
