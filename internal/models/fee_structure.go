package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medium is the language of instruction a structure applies to.
type Medium string

const (
	MediumEnglish Medium = "English"
	MediumTamil   Medium = "Tamil"
)

// FeeStructure defines a charge for (academic year, class, medium, category).
type FeeStructure struct {
	ID             string          `db:"id" json:"id"`
	AcademicYearID string          `db:"academic_year_id" json:"academic_year_id"`
	ClassName      string          `db:"class_name" json:"class_name"`
	Medium         Medium          `db:"medium" json:"medium"`
	FeeCategoryID  string          `db:"fee_category_id" json:"fee_category_id"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	DueDate        time.Time       `db:"due_date" json:"due_date"`
	Installments   int             `db:"installments" json:"installments"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// FeeStructureDetail joins the owning category for list views.
type FeeStructureDetail struct {
	FeeStructure
	CategoryName         string `db:"category_name" json:"category_name"`
	CategoryApplicableTo string `db:"category_applicable_to" json:"category_applicable_to"`
}

// FeeStructureFilter scopes structure listings.
type FeeStructureFilter struct {
	AcademicYearID string
	ClassName      string
	Medium         string
	FeeCategoryID  string
	Page           int
	PageSize       int
}
