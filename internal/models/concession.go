package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeConcession grants a student a percentage discount for a period.
type FeeConcession struct {
	ID                 string          `db:"id" json:"id"`
	StudentID          string          `db:"student_id" json:"student_id"`
	ConcessionType     string          `db:"concession_type" json:"concession_type"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discount_percentage"`
	ValidFrom          time.Time       `db:"valid_from" json:"valid_from"`
	ValidUntil         *time.Time      `db:"valid_until" json:"valid_until,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

// ActiveOn reports whether the concession applies on the given date.
func (c FeeConcession) ActiveOn(day time.Time) bool {
	if day.Before(c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && day.After(*c.ValidUntil) {
		return false
	}
	return true
}
