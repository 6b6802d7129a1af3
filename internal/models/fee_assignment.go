package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentFeeAssignment binds a fee structure to one student and tracks how
// much of the final amount has been paid. paid_amount only ever grows
// through the locked payment path; bulk re-assignment must not touch it
// once payments exist.
type StudentFeeAssignment struct {
	ID             string          `db:"id" json:"id"`
	StudentID      string          `db:"student_id" json:"student_id"`
	FeeStructureID string          `db:"fee_structure_id" json:"fee_structure_id"`
	AssignedOn     time.Time       `db:"assigned_on" json:"assigned_on"`
	OriginalAmount decimal.Decimal `db:"original_amount" json:"original_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	FinalAmount    decimal.Decimal `db:"final_amount" json:"final_amount"`
	PaidAmount     decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	IsFullyPaid    bool            `db:"is_fully_paid" json:"is_fully_paid"`
}

// Balance is the amount still owed.
func (a StudentFeeAssignment) Balance() decimal.Decimal {
	return a.FinalAmount.Sub(a.PaidAmount)
}

// StudentFeeAssignmentDetail joins student and structure context.
type StudentFeeAssignmentDetail struct {
	StudentFeeAssignment
	StudentName  string          `db:"student_name" json:"student_name"`
	ClassName    string          `db:"class_name" json:"class_name"`
	CategoryName string          `db:"category_name" json:"category_name"`
	DueDate      time.Time       `db:"due_date" json:"due_date"`
	StructAmount decimal.Decimal `db:"structure_amount" json:"structure_amount"`
}

// FeeAssignmentFilter scopes assignment listings.
type FeeAssignmentFilter struct {
	StudentID      string
	FeeStructureID string
	ClassName      string
	FullyPaid      *bool
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

// BulkAssignResult summarises one bulk assignment run.
type BulkAssignResult struct {
	ClassName      string `json:"class_name"`
	FeeStructureID string `json:"fee_structure_id"`
	Processed      int    `json:"processed"`
	Skipped        int    `json:"skipped"`
}
