package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode enumerates accepted payment channels.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeUPI    PaymentMode = "UPI"
	PaymentModeCard   PaymentMode = "Card"
	PaymentModeCheque PaymentMode = "Cheque"
	PaymentModeNEFT   PaymentMode = "NEFT"
	PaymentModeOnline PaymentMode = "Online"
)

// ValidPaymentMode reports whether the mode is one of the accepted values.
func ValidPaymentMode(m PaymentMode) bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeCheque, PaymentModeNEFT, PaymentModeOnline:
		return true
	}
	return false
}

// FeePayment is an immutable payment record. Its creation and the matching
// assignment balance update happen in a single database transaction.
type FeePayment struct {
	ID              string          `db:"id" json:"id"`
	StudentID       string          `db:"student_id" json:"student_id"`
	FeeAssignmentID *string         `db:"fee_assignment_id" json:"fee_assignment_id,omitempty"`
	ReceiptNo       string          `db:"receipt_no" json:"receipt_no"`
	PaymentDate     time.Time       `db:"payment_date" json:"payment_date"`
	AmountPaid      decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	PaymentMode     PaymentMode     `db:"payment_mode" json:"payment_mode"`
	Remarks         string          `db:"remarks" json:"remarks"`
	ProcessedBy     string          `db:"processed_by" json:"processed_by"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// FeePaymentDetail joins student and category context for receipts.
type FeePaymentDetail struct {
	FeePayment
	StudentName  string          `db:"student_name" json:"student_name"`
	ClassName    string          `db:"class_name" json:"class_name"`
	CategoryName string          `db:"category_name" json:"category_name"`
	BalanceDue   decimal.Decimal `db:"balance_due" json:"balance_due"`
}

// FeePaymentFilter scopes payment listings.
type FeePaymentFilter struct {
	StudentID       string
	FeeAssignmentID string
	PaymentMode     string
	From            *time.Time
	To              *time.Time
	Page            int
	PageSize        int
}

// ReceiptSequence is the single-row counter backing receipt allocation.
// The row is locked for the duration of the payment transaction.
type ReceiptSequence struct {
	ID         int16 `db:"id"`
	LastNumber int64 `db:"last_number"`
}
