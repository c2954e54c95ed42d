package services

import (
	"fmt"
	"math"
	"strings"

	"alfredoptarigan/resume-screener/internal/models"
)

const (
	semanticWeight   = 0.5
	skillWeight      = 0.3
	experienceWeight = 0.2

	neutralScore = 50.0

	// Candidates at or above this share of the required years are "close enough".
	experienceTolerance = 0.7

	maxFeedbackSkills = 5

	noFeedbackSummary = "No notable strengths or concerns identified"
)

type ScoringEngine interface {
	ComputeSimilarity(a, b Embedding) (float64, error)
	HybridScore(semanticScore float64, resumeSkills []string, jobText string, resumeExperience, requiredExperience *float64) float64
	GenerateRecruiterFeedback(finalScore float64, matched, missing []string, resumeExperience, requiredExperience *float64) models.Feedback
}

type scoringEngine struct {
	skills []string
}

func NewScoringEngine(taxonomy *models.SkillTaxonomy) ScoringEngine {
	return &scoringEngine{skills: taxonomy.Flatten()}
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either is a zero vector or the dimensions differ.
func CosineSimilarity(a, b Embedding) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// ComputeSimilarity implements ScoringEngine.
func (s *scoringEngine) ComputeSimilarity(a, b Embedding) (float64, error) {
	return ComputeSimilarity(a, b)
}

// ComputeSimilarity scales cosine similarity to 0-100, rounded to two decimals.
func ComputeSimilarity(a, b Embedding) (float64, error) {
	if a == nil || b == nil {
		return 0, ErrModelInput
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimensions differ: %d vs %d", len(a), len(b))
	}
	return round2(CosineSimilarity(a, b) * 100), nil
}

// HybridScore implements ScoringEngine. Job skills are lexical matches only.
func (s *scoringEngine) HybridScore(semanticScore float64, resumeSkills []string, jobText string, resumeExperience, requiredExperience *float64) float64 {
	jobSkills := MatchSkills(jobText, s.skills)
	return CombineScores(
		semanticScore,
		SkillMatchPercent(resumeSkills, jobSkills),
		ExperienceScore(resumeExperience, requiredExperience),
	)
}

// SkillMatchPercent is the share of jobSkills the resume covers, 50 when the job lists none.
func SkillMatchPercent(resumeSkills, jobSkills []string) float64 {
	gap := CompareSkills(resumeSkills, jobSkills)
	total := len(gap.Matched) + len(gap.Missing)
	if total == 0 {
		return neutralScore
	}
	return 100 * float64(len(gap.Matched)) / float64(total)
}

// ExperienceScore grades experience against the requirement: 100, 70 or 30, and 50
// when either side is unknown.
func ExperienceScore(resumeExperience, requiredExperience *float64) float64 {
	if resumeExperience == nil || requiredExperience == nil {
		return neutralScore
	}
	have, need := *resumeExperience, *requiredExperience
	switch {
	case have >= need:
		return 100
	case have >= experienceTolerance*need:
		return 70
	default:
		return 30
	}
}

// CombineScores applies the fixed 0.5/0.3/0.2 weighting.
func CombineScores(semanticScore, skillMatchPct, experienceScore float64) float64 {
	return round2(semanticWeight*semanticScore + skillWeight*skillMatchPct + experienceWeight*experienceScore)
}

// VerdictFor maps a final score onto the verdict bands.
func VerdictFor(finalScore float64) models.Verdict {
	switch {
	case finalScore >= 75:
		return models.VerdictStrong
	case finalScore >= 60:
		return models.VerdictGood
	case finalScore >= 45:
		return models.VerdictAverage
	default:
		return models.VerdictWeak
	}
}

// GenerateRecruiterFeedback implements ScoringEngine.
func (s *scoringEngine) GenerateRecruiterFeedback(finalScore float64, matched, missing []string, resumeExperience, requiredExperience *float64) models.Feedback {
	return GenerateRecruiterFeedback(finalScore, matched, missing, resumeExperience, requiredExperience)
}

// GenerateRecruiterFeedback derives the verdict, strengths, concerns and a one-line summary.
func GenerateRecruiterFeedback(finalScore float64, matched, missing []string, resumeExperience, requiredExperience *float64) models.Feedback {
	strengths := []string{}
	concerns := []string{}

	if len(matched) > 0 {
		strengths = append(strengths, "Matches key skills: "+strings.Join(firstN(matched, maxFeedbackSkills), ", "))
	}

	if resumeExperience != nil && requiredExperience != nil {
		have, need := *resumeExperience, *requiredExperience
		switch {
		case have >= need:
			strengths = append(strengths, fmt.Sprintf("Meets the experience requirement (%.1f years vs %.1f required)", have, need))
		case have >= experienceTolerance*need:
			strengths = append(strengths, fmt.Sprintf("Close to the experience requirement (%.1f years vs %.1f required)", have, need))
		}
	}

	if len(missing) > 0 {
		concerns = append(concerns, "Missing skills: "+strings.Join(firstN(missing, maxFeedbackSkills), ", "))
	}

	if resumeExperience != nil && requiredExperience != nil {
		if have, need := *resumeExperience, *requiredExperience; have < experienceTolerance*need {
			concerns = append(concerns, fmt.Sprintf("Experience below requirement (%.1f years vs %.1f required)", have, need))
		}
	}

	var parts []string
	if len(strengths) > 0 {
		parts = append(parts, strengths[0])
	}
	if len(concerns) > 0 {
		parts = append(parts, concerns[0])
	}
	summary := noFeedbackSummary
	if len(parts) > 0 {
		summary = strings.Join(parts, ". ")
	}

	return models.Feedback{
		Verdict:   VerdictFor(finalScore),
		Strengths: strengths,
		Concerns:  concerns,
		Summary:   summary,
	}
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
