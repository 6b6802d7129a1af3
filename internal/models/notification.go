package models

import "time"

// Notification is the fire-and-forget record surfaced to the student UI
// after a fee assignment or payment.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReminderStatus tracks delivery of a fee reminder.
type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	ReminderStatusFailed  ReminderStatus = "failed"
)

// FeeReminder records an outbound balance reminder and its SMS outcome.
type FeeReminder struct {
	ID        string         `db:"id" json:"id"`
	StudentID string         `db:"student_id" json:"student_id"`
	Message   string         `db:"message" json:"message"`
	Phone     string         `db:"phone" json:"phone"`
	Status    ReminderStatus `db:"status" json:"status"`
	SendDate  time.Time      `db:"send_date" json:"send_date"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
