package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/periyanachi-erp/fees-api/internal/models"
)

// NotificationRepository persists student-facing notifications and fee
// reminder history.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification record.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	notification.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO fee_notifications (id, student_id, title, body, read, created_at)
        VALUES (:id, :student_id, :title, :body, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByStudent returns a student's notifications, newest first.
func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID string, page, size int) ([]models.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, student_id, title, body, read, created_at
        FROM fee_notifications WHERE student_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`, size, offset)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, studentID); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	var total int
	const countQuery = `SELECT COUNT(*) FROM fee_notifications WHERE student_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, studentID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flags a notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE fee_notifications SET read = TRUE WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// CreateReminder stores a fee reminder with its delivery outcome.
func (r *NotificationRepository) CreateReminder(ctx context.Context, reminder *models.FeeReminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	reminder.CreatedAt = time.Now().UTC()
	if reminder.SendDate.IsZero() {
		reminder.SendDate = reminder.CreatedAt
	}
	const query = `INSERT INTO fee_reminders (id, student_id, message, phone, status, send_date, created_at)
        VALUES (:id, :student_id, :message, :phone, :status, :send_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("create fee reminder: %w", err)
	}
	return nil
}

// ListReminders returns reminder history for a student, newest first.
func (r *NotificationRepository) ListReminders(ctx context.Context, studentID string, page, size int) ([]models.FeeReminder, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, student_id, message, phone, status, send_date, created_at
        FROM fee_reminders WHERE student_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`, size, offset)
	var reminders []models.FeeReminder
	if err := r.db.SelectContext(ctx, &reminders, query, studentID); err != nil {
		return nil, 0, fmt.Errorf("list fee reminders: %w", err)
	}

	var total int
	const countQuery = `SELECT COUNT(*) FROM fee_reminders WHERE student_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, studentID); err != nil {
		return nil, 0, fmt.Errorf("count fee reminders: %w", err)
	}
	return reminders, total, nil
}
