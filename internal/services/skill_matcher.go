package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

// DefaultSemanticThreshold is the minimum cosine similarity for a semantic skill match.
const DefaultSemanticThreshold = 0.72

type SkillMatcherConfig struct {
	Threshold         float64
	MinSentenceLength int
}

type SkillMatcher interface {
	// MatchSkills returns taxonomy skills that appear verbatim (after normalization) in text.
	MatchSkills(text string) []string
	// SemanticSkillMatch returns taxonomy skills implied by sentences of text.
	SemanticSkillMatch(ctx context.Context, text string) ([]string, error)
	// DetectSkills is the union of lexical and semantic matches.
	DetectSkills(ctx context.Context, text string) ([]string, error)
	AnalyzeSkillGap(ctx context.Context, candidateSkills []string, jobText string) (models.SkillGap, error)
	DetectUnknownSkills(text string) []string
}

type skillMatcher struct {
	taxonomy  *models.SkillTaxonomy
	skills    []string
	embedder  EmbeddingService
	index     SkillIndex
	threshold float64
	minLength int
}

// NewSkillMatcher builds a matcher over taxonomy. index may be nil, in which case
// skills are compared in memory.
func NewSkillMatcher(taxonomy *models.SkillTaxonomy, embedder EmbeddingService, index SkillIndex, cfg SkillMatcherConfig) SkillMatcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultSemanticThreshold
	}
	if cfg.MinSentenceLength <= 0 {
		cfg.MinSentenceLength = DefaultMinSentenceLength
	}

	skills := taxonomy.Flatten()
	if index == nil && embedder != nil {
		index = NewMemorySkillIndex(embedder, skills)
	}

	return &skillMatcher{
		taxonomy:  taxonomy,
		skills:    skills,
		embedder:  embedder,
		index:     index,
		threshold: cfg.Threshold,
		minLength: cfg.MinSentenceLength,
	}
}

var nonSkillCharRe = regexp.MustCompile(`[^a-z0-9+.# ]`)

// NormalizeSkillText lowercases text and replaces everything except letters, digits,
// '+', '.', '#' and spaces with a space.
func NormalizeSkillText(text string) string {
	return nonSkillCharRe.ReplaceAllString(strings.ToLower(text), " ")
}

// MatchSkills finds skills whose space-padded normalized form occurs in the padded text.
// Padding keeps "java" from matching inside "javascript".
func MatchSkills(text string, skills []string) []string {
	if strings.TrimSpace(text) == "" || len(skills) == 0 {
		return []string{}
	}

	haystack := " " + NormalizeSkillText(text) + " "
	found := []string{}
	for _, skill := range skills {
		needle := " " + NormalizeSkillText(skill) + " "
		if strings.TrimSpace(needle) == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			found = append(found, skill)
		}
	}
	return found
}

// MatchSkills implements SkillMatcher.
func (m *skillMatcher) MatchSkills(text string) []string {
	return MatchSkills(text, m.skills)
}

// SemanticSkillMatch implements SkillMatcher.
func (m *skillMatcher) SemanticSkillMatch(ctx context.Context, text string) ([]string, error) {
	sentences := SplitSentences(text, m.minLength)
	if len(sentences) == 0 || len(m.skills) == 0 {
		return []string{}, nil
	}
	if m.embedder == nil || m.index == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", ErrModelUnavailable)
	}

	vectors, err := m.embedder.Encode(ctx, sentences)
	if err != nil {
		return nil, fmt.Errorf("failed to embed sentences: %w", err)
	}

	hits, err := m.index.Match(ctx, vectors, m.threshold)
	if err != nil {
		return nil, err
	}

	// Report in taxonomy order regardless of index order.
	hitSet := make(map[string]bool, len(hits))
	for _, h := range hits {
		hitSet[strings.ToLower(h)] = true
	}
	matched := []string{}
	for _, skill := range m.skills {
		if hitSet[strings.ToLower(skill)] {
			matched = append(matched, skill)
		}
	}
	return matched, nil
}

// DetectSkills implements SkillMatcher.
func (m *skillMatcher) DetectSkills(ctx context.Context, text string) ([]string, error) {
	semantic, err := m.SemanticSkillMatch(ctx, text)
	if err != nil {
		return nil, err
	}
	return unionFold(m.MatchSkills(text), semantic), nil
}

// AnalyzeSkillGap implements SkillMatcher.
func (m *skillMatcher) AnalyzeSkillGap(ctx context.Context, candidateSkills []string, jobText string) (models.SkillGap, error) {
	jobSkills, err := m.DetectSkills(ctx, jobText)
	if err != nil {
		return models.SkillGap{}, fmt.Errorf("failed to detect job skills: %w", err)
	}
	return CompareSkills(candidateSkills, jobSkills), nil
}

// CompareSkills splits jobSkills into those the candidate has and those missing.
// Both lists are lowercased, deduplicated and sorted.
func CompareSkills(candidateSkills, jobSkills []string) models.SkillGap {
	have := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	gap := models.SkillGap{Matched: []string{}, Missing: []string{}}
	seen := make(map[string]bool, len(jobSkills))
	for _, s := range jobSkills {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if have[key] {
			gap.Matched = append(gap.Matched, key)
		} else {
			gap.Missing = append(gap.Missing, key)
		}
	}

	sort.Strings(gap.Matched)
	sort.Strings(gap.Missing)
	return gap
}

var unknownTokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.\-]{2,}`)

// DetectUnknownSkills implements SkillMatcher.
func (m *skillMatcher) DetectUnknownSkills(text string) []string {
	return DetectUnknownSkills(text, m.skills)
}

// DetectUnknownSkills lists lowercased tokens that are neither known skills nor
// stop words, sorted. These are candidates for taxonomy curation.
func DetectUnknownSkills(text string, knownSkills []string) []string {
	known := make(map[string]bool, len(knownSkills))
	for _, s := range knownSkills {
		known[strings.ToLower(s)] = true
	}

	seen := make(map[string]bool)
	unknown := []string{}
	for _, token := range unknownTokenRe.FindAllString(text, -1) {
		t := strings.ToLower(token)
		if seen[t] || known[t] || unknownSkillStopwords[t] {
			continue
		}
		seen[t] = true
		unknown = append(unknown, t)
	}

	sort.Strings(unknown)
	return unknown
}

// unionFold merges lists keeping the first spelling of each case-insensitive value.
func unionFold(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			key := strings.ToLower(s)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}

var unknownSkillStopwords = toSet(
	// resume vocabulary
	"experience", "experiences", "experienced",
	"worked", "working", "work",
	"using", "used", "use",
	"with", "and",
	"role", "roles",
	"responsibilities", "responsibility",
	"skills", "skill",
	"projects", "project",
	"years", "year", "yrs",
	"months", "month",
	"duration",

	// titles
	"developer", "engineer", "designer", "architect",
	"analyst", "consultant", "intern",
	"lead", "manager",

	// sections
	"education", "certification", "certifications",
	"summary", "profile",
	"objective",
	"employment",
	"company", "organization",
	"team", "client",

	// verbs
	"developed", "designed", "implemented",
	"built", "created", "maintained",
	"improved", "optimized", "tested",
	"deployed", "managed",

	// filler
	"system", "systems",
	"application", "applications",
	"software", "platform",
	"tools", "tool",
	"framework", "frameworks",
	"library", "libraries",

	"basic", "advanced", "intermediate",
	"strong", "good", "excellent",
	"hands", "hands-on",
)

func toSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
