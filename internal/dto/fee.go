package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateFeeCategoryRequest describes payload for creating a fee category.
type CreateFeeCategoryRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Description  string `json:"description"`
	FeeType      string `json:"fee_type" validate:"required,oneof=mandatory optional"`
	ApplicableTo string `json:"applicable_to" validate:"required"`
	IsRefundable bool   `json:"is_refundable"`
	Active       *bool  `json:"active"`
}

// UpdateFeeCategoryRequest describes payload for updating a fee category.
type UpdateFeeCategoryRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Description  string `json:"description"`
	FeeType      string `json:"fee_type" validate:"required,oneof=mandatory optional"`
	ApplicableTo string `json:"applicable_to" validate:"required"`
	IsRefundable bool   `json:"is_refundable"`
	Active       *bool  `json:"active"`
}

// CreateFeeStructureRequest describes payload for creating a fee structure.
type CreateFeeStructureRequest struct {
	AcademicYearID string          `json:"academic_year_id" validate:"required"`
	ClassName      string          `json:"class_name" validate:"required"`
	Medium         string          `json:"medium" validate:"required,oneof=English Tamil"`
	FeeCategoryID  string          `json:"fee_category_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date" validate:"required"`
	Installments   int             `json:"installments"`
}

// UpdateFeeStructureRequest changes the mutable fields of a structure.
type UpdateFeeStructureRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date" validate:"required"`
	Installments int             `json:"installments"`
}

// AssignFeeRequest binds one student to a fee structure.
type AssignFeeRequest struct {
	StudentID      string           `json:"student_id" validate:"required"`
	FeeStructureID string           `json:"fee_structure_id" validate:"required"`
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
}

// BulkAssignFeeRequest assigns a structure to every eligible student of a class.
type BulkAssignFeeRequest struct {
	ClassName      string `json:"class_name" validate:"required"`
	FeeStructureID string `json:"fee_structure_id" validate:"required"`
}

// UpdateDiscountRequest adjusts an assignment's discount.
type UpdateDiscountRequest struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// CreateFeePaymentRequest records a payment against an assignment.
type CreateFeePaymentRequest struct {
	StudentID       string          `json:"student_id" validate:"required"`
	FeeAssignmentID *string         `json:"fee_assignment_id"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	PaymentMode     string          `json:"payment_mode" validate:"required"`
	PaymentDate     *time.Time      `json:"payment_date"`
	Remarks         string          `json:"remarks"`
	ProcessedBy     string          `json:"processed_by"`
}

// FeePaymentResult returns the recorded payment together with the updated
// assignment balance.
type FeePaymentResult struct {
	Payment    interface{} `json:"payment"`
	Assignment interface{} `json:"assignment,omitempty"`
}

// CreateConcessionRequest grants a student a discount window.
type CreateConcessionRequest struct {
	StudentID          string          `json:"student_id" validate:"required"`
	ConcessionType     string          `json:"concession_type" validate:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	ValidFrom          time.Time       `json:"valid_from" validate:"required"`
	ValidUntil         *time.Time      `json:"valid_until"`
}

// SendRemindersRequest fans out balance reminders to a class.
type SendRemindersRequest struct {
	ClassName string `json:"class_name" validate:"required"`
	Message   string `json:"message"`
}

// ReminderRunResult summarises one reminder fan-out.
type ReminderRunResult struct {
	ClassName string `json:"class_name"`
	Students  int    `json:"students"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
}
