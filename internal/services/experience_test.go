package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2022, time.July, 15, 0, 0, 0, 0, time.UTC)

func TestEstimateExperienceMonthRange(t *testing.T) {
	years := EstimateExperience("Acme Corp, May 2019 - Jul 2021", fixedNow)
	require.NotNil(t, years)
	assert.Equal(t, 2.2, *years)
}

func TestEstimateExperiencePresent(t *testing.T) {
	years := EstimateExperience("Globex Jan 2020 - Present", fixedNow)
	require.NotNil(t, years)
	assert.Equal(t, 2.5, *years)
}

func TestEstimateExperienceDirectYearsWins(t *testing.T) {
	years := EstimateExperience("5+ years building APIs, Jan 2020 - Present", fixedNow)
	require.NotNil(t, years)
	assert.Equal(t, 5.0, *years)
}

func TestEstimateExperienceYearRanges(t *testing.T) {
	years := EstimateExperience("Developer, 2015 - 2018\nLead, 2018 - 2020", fixedNow)
	require.NotNil(t, years)
	assert.Equal(t, 5.0, *years)
}

func TestEstimateExperienceNineteenHundredsRange(t *testing.T) {
	years := EstimateExperience("Analyst, 1996 - 2004", fixedNow)
	require.NotNil(t, years)
	assert.Equal(t, 8.0, *years)
}

func TestEstimateExperienceZeroLengthRange(t *testing.T) {
	years := EstimateExperience("Contract Jun 2020 - Jun 2020", fixedNow)
	require.NotNil(t, years)
	assert.Equal(t, 0.0, *years)
}

func TestEstimateExperienceNoDates(t *testing.T) {
	assert.Nil(t, EstimateExperience("Worked at a startup", fixedNow))
}

func TestExperienceSections(t *testing.T) {
	text := "Jane Doe\nExperience\nAcme Jan 2018 - Jan 2019\nProjects\nHobby Jan 2010 - Jan 2015\nInternship\nInitech Jan 2020 - Jul 2020"

	assert.Equal(t,
		"Experience\nAcme Jan 2018 - Jan 2019\nInternship\nInitech Jan 2020 - Jul 2020",
		ExperienceSections(text))
}

func TestExtractExperienceYears(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *float64
	}{
		{
			name: "section with month range",
			text: "Experience\nAcme Corp, May 2019 - Jul 2021\nEducation\nBSc 2014 - 2018",
			want: floatPtr(2.2),
		},
		{
			name: "sections are summed across headings",
			text: "Experience\nAcme Jan 2018 - Jan 2019\nProjects\nHobby Jan 2010 - Jan 2015\nInternship\nInitech Jan 2020 - Jul 2020",
			want: floatPtr(1.5),
		},
		{
			name: "opening line with direct years",
			text: "3 years experience with Python and SQL",
			want: floatPtr(3.0),
		},
		{
			name: "no experience section",
			text: "Education\nBSc Computer Science 2014 - 2018",
			want: nil,
		},
		{
			name: "section without dates",
			text: "Work History\nAcme Corp",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractExperienceYears(tt.text, fixedNow)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseMonthYear(t *testing.T) {
	got, ok := parseMonthYear("Sept, 2020")
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, time.September, 1, 0, 0, 0, 0, time.UTC), got)

	got, ok = parseMonthYear("2017")
	require.True(t, ok)
	assert.Equal(t, time.January, got.Month())

	_, ok = parseMonthYear("someday")
	assert.False(t, ok)
}
