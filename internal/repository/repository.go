package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by repositories for callers to map onto
// user-facing conflicts.
var (
	// ErrReferenced is returned when a delete would orphan dependent rows.
	ErrReferenced = errors.New("row is referenced by dependent records")
	// ErrPaymentsExist blocks deletion of assignments that carry payments.
	ErrPaymentsExist = errors.New("assignment has recorded payments")
	// ErrBalanceExceeded aborts a payment that would overpay an assignment.
	ErrBalanceExceeded = errors.New("payment exceeds remaining balance")
)

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// IsUndefinedTable reports whether err means a relation does not exist.
// The receipt counter table may be absent on installations migrated from
// the legacy system; allocation then falls back to scanning receipts.
func IsUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "42P01"
}
