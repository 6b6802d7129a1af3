package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEligibility(t *testing.T) {
	tests := []struct {
		raw  string
		want Eligibility
	}{
		{"all", Eligibility{Kind: EligibilityAll}},
		{"day_scholar", Eligibility{Kind: EligibilityDayScholar}},
		{"hosteller", Eligibility{Kind: EligibilityHosteller}},
		{"transport_user", Eligibility{Kind: EligibilityTransportUser}},
		{"section:sec-10a", Eligibility{Kind: EligibilitySection, SectionID: "sec-10a"}},
		{"  section: sec-10a ", Eligibility{Kind: EligibilitySection, SectionID: "sec-10a"}},
	}
	for _, tt := range tests {
		got, err := ParseEligibility(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.want.String(), got.String())
	}
}

func TestParseEligibilityRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "boarders", "section:", "section:   "} {
		_, err := ParseEligibility(raw)
		assert.Error(t, err, raw)
	}
}

func TestEligibilityMatches(t *testing.T) {
	busRider := Student{Category: StudentCategoryDayScholar, TransportMode: TransportSchoolBus, SectionID: "sec-a"}
	walker := Student{Category: StudentCategoryDayScholar, TransportMode: TransportNone, SectionID: "sec-b"}
	boarder := Student{Category: StudentCategoryHosteller, TransportMode: TransportNone, SectionID: "sec-a"}

	assert.True(t, Eligibility{Kind: EligibilityAll}.Matches(walker))
	assert.True(t, Eligibility{Kind: EligibilityDayScholar}.Matches(walker))
	assert.False(t, Eligibility{Kind: EligibilityDayScholar}.Matches(boarder))
	assert.True(t, Eligibility{Kind: EligibilityHosteller}.Matches(boarder))
	assert.True(t, Eligibility{Kind: EligibilityTransportUser}.Matches(busRider))
	assert.False(t, Eligibility{Kind: EligibilityTransportUser}.Matches(walker))
	assert.True(t, Eligibility{Kind: EligibilitySection, SectionID: "sec-a"}.Matches(busRider))
	assert.False(t, Eligibility{Kind: EligibilitySection, SectionID: "sec-a"}.Matches(walker))
}
