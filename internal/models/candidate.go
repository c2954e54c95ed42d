package models

// Verdict is the categorical recruiter outcome.
type Verdict string

const (
	VerdictStrong  Verdict = "Strong Match"
	VerdictGood    Verdict = "Good Match"
	VerdictAverage Verdict = "Average Match"
	VerdictWeak    Verdict = "Weak Match"
)

// CandidateProfile holds the structured facts extracted from one resume.
type CandidateProfile struct {
	Name            *string  `json:"name"`
	Emails          []string `json:"emails"`
	Phones          []string `json:"phones"`
	ExperienceYears *float64 `json:"experience_years"`
	Skills          []string `json:"skills_detected"`
	UnknownSkills   []string `json:"unknown_skills,omitempty"`
	RawText         string   `json:"-"`
}

// SkillGap compares candidate skills with job skills. Both lists are sorted and lowercased.
type SkillGap struct {
	Matched []string `json:"matched_skills"`
	Missing []string `json:"missing_skills"`
}

// Feedback is the deterministic recruiter summary for one score.
type Feedback struct {
	Verdict   Verdict  `json:"verdict"`
	Strengths []string `json:"strengths"`
	Concerns  []string `json:"concerns"`
	Summary   string   `json:"summary"`
}

// ScoreResult is the outcome of scoring one candidate against one job.
type ScoreResult struct {
	SemanticScore float64  `json:"semantic_score"`
	FinalScore    float64  `json:"final_score"`
	SkillGap      SkillGap `json:"skill_gap"`
	Feedback      Feedback `json:"feedback"`
}

// RankedCandidate is one row of a ranking result.
type RankedCandidate struct {
	ID            string   `json:"id,omitempty"`
	Filename      string   `json:"filename"`
	SemanticScore float64  `json:"semantic_score"`
	FinalScore    float64  `json:"final_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Feedback      Feedback `json:"feedback"`
}

// CandidateFailure records a resume that could not be ranked.
type CandidateFailure struct {
	Filename string `json:"filename"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
}

// RankingResult is the sorted output of a ranking run.
type RankingResult struct {
	JobDescriptionExcerpt string             `json:"job_description_excerpt"`
	TotalResumes          int                `json:"total_resumes"`
	RankedCandidates      []RankedCandidate  `json:"ranked_candidates"`
	Failures              []CandidateFailure `json:"failures,omitempty"`
}
