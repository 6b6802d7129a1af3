package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryCollection aggregates collections for one fee category.
type CategoryCollection struct {
	CategoryID   string          `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name"`
	Assigned     decimal.Decimal `db:"assigned" json:"assigned"`
	Collected    decimal.Decimal `db:"collected" json:"collected"`
	Outstanding  decimal.Decimal `db:"outstanding" json:"outstanding"`
	Students     int             `db:"students" json:"students"`
}

// ClassCollectionSummary aggregates collections for one class.
type ClassCollectionSummary struct {
	ClassName   string               `json:"class_name"`
	Assigned    decimal.Decimal      `json:"assigned"`
	Collected   decimal.Decimal      `json:"collected"`
	Outstanding decimal.Decimal      `json:"outstanding"`
	FullyPaid   int                  `json:"fully_paid"`
	Pending     int                  `json:"pending"`
	Categories  []CategoryCollection `json:"categories"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// StudentStatement lists one student's assignments and payments.
type StudentStatement struct {
	Student     Student                      `json:"student"`
	Assignments []StudentFeeAssignmentDetail `json:"assignments"`
	Payments    []FeePayment                 `json:"payments"`
	TotalDue    decimal.Decimal              `json:"total_due"`
	TotalPaid   decimal.Decimal              `json:"total_paid"`
	Balance     decimal.Decimal              `json:"balance"`
}

// AuditViolation names a broken ledger invariant.
type AuditViolation string

const (
	AuditFinalMismatch   AuditViolation = "FINAL_AMOUNT_MISMATCH"
	AuditNegativeFinal   AuditViolation = "NEGATIVE_FINAL_AMOUNT"
	AuditOverpaid        AuditViolation = "PAID_EXCEEDS_FINAL"
	AuditNegativePaid    AuditViolation = "NEGATIVE_PAID_AMOUNT"
	AuditFullyPaidFlag   AuditViolation = "FULLY_PAID_FLAG_WRONG"
	AuditPaymentSumDrift AuditViolation = "PAYMENT_SUM_MISMATCH"
)

// AuditFinding reports one invariant violation on one assignment.
type AuditFinding struct {
	AssignmentID string          `json:"assignment_id"`
	StudentID    string          `json:"student_id"`
	Violation    AuditViolation  `json:"violation"`
	Expected     decimal.Decimal `json:"expected"`
	Actual       decimal.Decimal `json:"actual"`
}

// AuditReport is the result of a full ledger reconciliation pass.
type AuditReport struct {
	CheckedAssignments int            `json:"checked_assignments"`
	Findings           []AuditFinding `json:"findings"`
	Clean              bool           `json:"clean"`
	GeneratedAt        time.Time      `json:"generated_at"`
}

// PaymentAggregate is the per-assignment payment sum used by the audit.
type PaymentAggregate struct {
	FeeAssignmentID string          `db:"fee_assignment_id"`
	Total           decimal.Decimal `db:"total"`
}
