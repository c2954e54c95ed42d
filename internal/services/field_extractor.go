package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/jdkato/prose/v2"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	nameHeaderLines = 6
	nerWindowRunes  = 2000
	maxNameWords    = 3
	minPhoneDigits  = 8
)

var (
	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe       = regexp.MustCompile(`\+?\d[\d\- ]{6,}\d`)
	phoneStripRe  = regexp.MustCompile(`\+?\d[\d\-\s]{6,}\d`)
	digitGroupRe  = regexp.MustCompile(`\d+`)
	yearRe        = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	roleWordRe    = regexp.MustCompile(`(?i)^(developer|engineer|manager|analyst|designer|consultant|architect|intern|scientist|administrator|specialist|programmer|resume|cv)$`)
	headerWordRe  = regexp.MustCompile(`(?i)\b(skills?|technical|languages?|frameworks?|tools?|libraries?|education|experience|projects|courses?|certifications?)\b`)
	nameSepRe     = regexp.MustCompile(`[|\-/·•,]+`)
	titleCaseRe   = regexp.MustCompile(`\b([A-Z][a-z]+\b(?:\s+[A-Z][a-z]+\b){0,2})`)
	tokenSplitRe  = regexp.MustCompile(`[\s|/,]+`)
	hasLetterRe   = regexp.MustCompile(`[A-Za-z]`)
	nonNameCharRe = regexp.MustCompile(`[^\w\s-]`)
)

// PersonRecognizer finds PERSON entities in free text.
type PersonRecognizer interface {
	People(text string) ([]string, error)
}

type proseRecognizer struct{}

// NewProseRecognizer returns a recognizer backed by prose's averaged-perceptron NER model.
func NewProseRecognizer() PersonRecognizer {
	return &proseRecognizer{}
}

// People implements PersonRecognizer.
func (p *proseRecognizer) People(text string) ([]string, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to tag document: %w", err)
	}

	var people []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			people = append(people, ent.Text)
		}
	}
	return people, nil
}

// nameContext is the shared input of every name strategy.
type nameContext struct {
	text    string
	lines   []string
	isSkill func(string) bool
}

// NameStrategy proposes a candidate name, or "" when it has nothing.
type NameStrategy func(nc *nameContext) string

type ProfileExtractor interface {
	Extract(text string) models.CandidateProfile
	ExtractName(text string) *string
	ExtractExperience(text string) *float64
	ExtractContacts(text string) (emails, phones []string)
}

type profileExtractor struct {
	skills     []string
	skillSet   map[string]bool
	people     PersonRecognizer
	now        func() time.Time
	strategies []NameStrategy
}

// NewProfileExtractor builds the field extractor. people may be nil to skip the NER
// tier; now defaults to time.Now.
func NewProfileExtractor(taxonomy *models.SkillTaxonomy, people PersonRecognizer, now func() time.Time) ProfileExtractor {
	if now == nil {
		now = time.Now
	}

	skills := taxonomy.Flatten()
	skillSet := make(map[string]bool, len(skills))
	for _, s := range skills {
		skillSet[strings.ToLower(s)] = true
	}

	p := &profileExtractor{
		skills:   skills,
		skillSet: skillSet,
		people:   people,
		now:      now,
	}
	p.strategies = []NameStrategy{
		headerAreaName,
		lineBeforeContactName,
		firstLineName,
		p.recognizedPersonName,
	}
	return p
}

// Extract implements ProfileExtractor. Skills are lexical only.
func (p *profileExtractor) Extract(text string) models.CandidateProfile {
	emails, phones := p.ExtractContacts(text)
	return models.CandidateProfile{
		Name:            p.ExtractName(text),
		Emails:          emails,
		Phones:          phones,
		ExperienceYears: p.ExtractExperience(text),
		Skills:          MatchSkills(text, p.skills),
		UnknownSkills:   DetectUnknownSkills(text, p.skills),
		RawText:         text,
	}
}

// ExtractExperience implements ProfileExtractor.
func (p *profileExtractor) ExtractExperience(text string) *float64 {
	return ExtractExperienceYears(text, p.now())
}

// ExtractContacts implements ProfileExtractor.
func (p *profileExtractor) ExtractContacts(text string) ([]string, []string) {
	emails := dedupe(emailRe.FindAllString(text, -1))

	var phones []string
	for _, m := range phoneRe.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if onlyYears(m) || countDigits(m) < minPhoneDigits {
			continue
		}
		phones = append(phones, m)
	}
	return emails, dedupe(phones)
}

// ExtractName implements ProfileExtractor. Strategies run in order; the first hit wins.
func (p *profileExtractor) ExtractName(text string) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	nc := &nameContext{
		text:    text,
		lines:   nonBlankLines(text),
		isSkill: func(s string) bool { return p.skillSet[strings.ToLower(strings.TrimSpace(s))] },
	}

	for _, strategy := range p.strategies {
		if name := strategy(nc); name != "" {
			return &name
		}
	}
	return nil
}

func headerAreaName(nc *nameContext) string {
	area := nc.lines
	if len(area) > nameHeaderLines {
		area = area[:nameHeaderLines]
	}
	for _, line := range area {
		if name := nc.titleCaseName(stripContacts(line)); name != "" {
			return name
		}
	}
	return ""
}

func lineBeforeContactName(nc *nameContext) string {
	idx := -1
	for i, line := range nc.lines {
		if emailRe.MatchString(line) || phoneStripRe.MatchString(line) {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return ""
	}

	line := stripContacts(nc.lines[idx-1])
	if name := nc.titleCaseName(line); name != "" {
		return name
	}

	tokens := nc.nameTokens(line)
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) > maxNameWords {
		tokens = tokens[:maxNameWords]
	}
	candidate := strings.Join(tokens, " ")
	if headerWordRe.MatchString(candidate) {
		return ""
	}
	return capitalizeWords(strings.Fields(nonNameCharRe.ReplaceAllString(candidate, " ")))
}

func firstLineName(nc *nameContext) string {
	if len(nc.lines) == 0 {
		return ""
	}

	line := stripContacts(nc.lines[0])
	if name := nc.titleCaseName(line); name != "" {
		return name
	}

	tokens := nc.nameTokens(line)
	if len(tokens) == 0 || headerWordRe.MatchString(tokens[0]) {
		return ""
	}
	return capitalize(tokens[0])
}

func (p *profileExtractor) recognizedPersonName(nc *nameContext) string {
	if p.people == nil {
		return ""
	}

	window := nc.text
	if r := []rune(window); len(r) > nerWindowRunes {
		window = string(r[:nerWindowRunes])
	}

	people, err := p.people.People(window)
	if err != nil {
		return ""
	}
	for _, person := range people {
		if name := nc.acceptName(strings.TrimSpace(person)); name != "" {
			return name
		}
	}
	return ""
}

// titleCaseName returns the first acceptable Title-Case run of one to three words.
func (nc *nameContext) titleCaseName(line string) string {
	line = nameSepRe.ReplaceAllString(line, " ")
	for _, m := range titleCaseRe.FindAllStringSubmatch(line, -1) {
		if name := nc.acceptName(strings.TrimSpace(m[1])); name != "" {
			return name
		}
	}
	return ""
}

func (nc *nameContext) acceptName(candidate string) string {
	if candidate == "" || headerWordRe.MatchString(candidate) || nc.isSkill(candidate) {
		return ""
	}
	parts := strings.Fields(candidate)
	if len(parts) < 1 || len(parts) > maxNameWords {
		return ""
	}
	for _, part := range parts {
		if nc.isSkill(part) || roleWordRe.MatchString(part) {
			return ""
		}
	}
	return capitalizeWords(parts)
}

func (nc *nameContext) nameTokens(line string) []string {
	var tokens []string
	for _, t := range tokenSplitRe.Split(line, -1) {
		if t == "" || !hasLetterRe.MatchString(t) || nc.isSkill(t) || roleWordRe.MatchString(t) {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

func stripContacts(line string) string {
	return phoneStripRe.ReplaceAllString(emailRe.ReplaceAllString(line, ""), "")
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func capitalizeWords(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = capitalize(p)
	}
	return strings.Join(out, " ")
}

func capitalize(word string) string {
	r := []rune(strings.ToLower(word))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// onlyYears reports whether every digit group in s is a 19xx or 20xx year,
// as in "2015 - 2018 2019 - 2021".
func onlyYears(s string) bool {
	groups := digitGroupRe.FindAllString(s, -1)
	if len(groups) == 0 {
		return false
	}
	for _, g := range groups {
		if !yearRe.MatchString(g) {
			return false
		}
	}
	return true
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := []string{}
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
