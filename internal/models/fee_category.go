package models

import "time"

// FeeType marks a category as mandatory or optional.
type FeeType string

const (
	FeeTypeMandatory FeeType = "mandatory"
	FeeTypeOptional  FeeType = "optional"
)

// FeeCategory defines a kind of charge (tuition, hostel, transport, ...).
type FeeCategory struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	FeeType      FeeType   `db:"fee_type" json:"fee_type"`
	ApplicableTo string    `db:"applicable_to" json:"applicable_to"`
	IsRefundable bool      `db:"is_refundable" json:"is_refundable"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Eligibility resolves the stored applicable_to encoding.
func (c FeeCategory) Eligibility() (Eligibility, error) {
	return ParseEligibility(c.ApplicableTo)
}
