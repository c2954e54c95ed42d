package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	experienceStartRe = regexp.MustCompile(`(?i)\b(experience|employment|internships?|work history)\b`)
	experienceStopRe  = regexp.MustCompile(`(?i)\b(education|skills|projects|certifications|courses|languages)\b`)

	directYearsRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*(years|yrs|year|yr)\b`)
	monthRangeRe  = regexp.MustCompile(`(?i)([A-Za-z]{3,9}\s*\d{4})\s*[-\x{2013}\x{2014}to]{1,4}\s*([A-Za-z]{3,9}\s*\d{4}|present|current)`)
	yearRangeOnly = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*[-\x{2013}\x{2014}]\s*((?:19|20)\d{2}|present|current)\b`)
	monthYearRe   = regexp.MustCompile(`([A-Za-z]{3,9})[\s.\-/,]*(\d{4})`)
	bareYearRe    = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	presentRe     = regexp.MustCompile(`(?i)present|current`)
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// ExperienceSections returns the lines belonging to experience sections. A section
// starts at a line mentioning experience, employment, internship or work history and
// runs until the next education/skills/projects/certifications/courses/languages line.
// The opening line is kept so "5 years experience in Go" still counts.
func ExperienceSections(text string) string {
	var captured []string
	capturing := false

	for _, line := range strings.Split(text, "\n") {
		if experienceStartRe.MatchString(line) {
			capturing = true
			captured = append(captured, line)
			continue
		}
		if capturing && experienceStopRe.MatchString(line) {
			capturing = false
			continue
		}
		if capturing {
			captured = append(captured, line)
		}
	}

	return strings.Join(captured, "\n")
}

// ExtractExperienceYears estimates total professional experience from the experience
// sections of text. It returns nil when no section or duration was found.
func ExtractExperienceYears(text string, now time.Time) *float64 {
	section := ExperienceSections(text)
	if strings.TrimSpace(section) == "" {
		return nil
	}
	return EstimateExperience(section, now)
}

// EstimateExperience reads durations from experience text. An explicit "N years"
// wins outright, otherwise month-year and bare year ranges are summed.
func EstimateExperience(text string, now time.Time) *float64 {
	if m := directYearsRe.FindStringSubmatch(text); m != nil {
		if years, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &years
		}
	}

	matched := false
	totalMonths := 0

	for _, m := range monthRangeRe.FindAllStringSubmatch(text, -1) {
		start, ok := parseMonthYear(m[1])
		if !ok {
			continue
		}
		end, ok := resolveRangeEnd(m[2], now)
		if !ok {
			continue
		}
		matched = true
		totalMonths += monthsBetween(start, end)
	}

	// Month ranges are blanked so "May 2019 - Present" is not counted again as a year range.
	remaining := monthRangeRe.ReplaceAllString(text, " ")
	for _, m := range yearRangeOnly.FindAllStringSubmatch(remaining, -1) {
		startYear, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		endYear := now.Year()
		if !presentRe.MatchString(m[2]) {
			if endYear, err = strconv.Atoi(m[2]); err != nil {
				continue
			}
		}
		matched = true
		if endYear > startYear {
			totalMonths += (endYear - startYear) * 12
		}
	}

	if !matched {
		return nil
	}

	years := math.Round(float64(totalMonths)/12*10) / 10
	return &years
}

func resolveRangeEnd(token string, now time.Time) (time.Time, bool) {
	if presentRe.MatchString(token) {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), true
	}
	return parseMonthYear(token)
}

// parseMonthYear reads "May 2020", "Sept, 2020" or, failing that, a bare 19xx/20xx year as January.
func parseMonthYear(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		key := strings.ToLower(m[1])[:3]
		if month, ok := monthNumbers[key]; ok {
			year, _ := strconv.Atoi(m[2])
			return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	if m := bareYearRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if months < 0 {
		return 0
	}
	return months
}
