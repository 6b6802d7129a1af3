package models

import (
	"fmt"
	"strings"
)

// EligibilityKind enumerates who a fee category applies to.
type EligibilityKind string

const (
	EligibilityAll           EligibilityKind = "all"
	EligibilityDayScholar    EligibilityKind = "day_scholar"
	EligibilityHosteller     EligibilityKind = "hosteller"
	EligibilityTransportUser EligibilityKind = "transport_user"
	EligibilitySection       EligibilityKind = "section"
)

// Eligibility is the tagged variant resolved from a fee category's
// applicable_to column. SectionID is set only for the section kind.
type Eligibility struct {
	Kind      EligibilityKind
	SectionID string
}

// ParseEligibility decodes the canonical encoding
// (all|day_scholar|hosteller|transport_user|section:<id>).
func ParseEligibility(raw string) (Eligibility, error) {
	value := strings.TrimSpace(raw)
	switch EligibilityKind(value) {
	case EligibilityAll, EligibilityDayScholar, EligibilityHosteller, EligibilityTransportUser:
		return Eligibility{Kind: EligibilityKind(value)}, nil
	}
	if rest, ok := strings.CutPrefix(value, "section:"); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return Eligibility{}, fmt.Errorf("eligibility %q: missing section id", raw)
		}
		return Eligibility{Kind: EligibilitySection, SectionID: rest}, nil
	}
	return Eligibility{}, fmt.Errorf("unknown eligibility %q", raw)
}

// String returns the canonical encoding used in storage.
func (e Eligibility) String() string {
	if e.Kind == EligibilitySection {
		return fmt.Sprintf("section:%s", e.SectionID)
	}
	return string(e.Kind)
}

// Matches reports whether a student qualifies for this eligibility.
func (e Eligibility) Matches(s Student) bool {
	switch e.Kind {
	case EligibilityAll:
		return true
	case EligibilityDayScholar:
		return s.Category == StudentCategoryDayScholar
	case EligibilityHosteller:
		return s.Category == StudentCategoryHosteller
	case EligibilityTransportUser:
		return s.TransportMode == TransportSchoolBus || s.TransportMode == TransportPrivateVan
	case EligibilitySection:
		return s.SectionID == e.SectionID
	default:
		return false
	}
}
