package models

// StudentCategory distinguishes boarding status.
type StudentCategory string

const (
	StudentCategoryDayScholar StudentCategory = "day_scholar"
	StudentCategoryHosteller  StudentCategory = "hosteller"
)

// TransportMode is how the student commutes.
type TransportMode string

const (
	TransportNone       TransportMode = "none"
	TransportSchoolBus  TransportMode = "school_bus"
	TransportPrivateVan TransportMode = "private_van"
	TransportSelf       TransportMode = "self"
)

// Student is the read-only view of the student directory consumed by the
// fee ledger. The directory itself is owned by another service.
type Student struct {
	ID            string          `db:"id" json:"id"`
	FullName      string          `db:"full_name" json:"full_name"`
	ClassName     string          `db:"class_name" json:"class_name"`
	SectionID     string          `db:"section_id" json:"section_id"`
	Category      StudentCategory `db:"student_category" json:"student_category"`
	TransportMode TransportMode   `db:"transport_mode" json:"transport_mode"`
	GuardianPhone string          `db:"guardian_phone" json:"guardian_phone"`
	Active        bool            `db:"active" json:"active"`
}
