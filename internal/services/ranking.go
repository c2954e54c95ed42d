package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

const JobExcerptLength = 200

// Excerpt shortens s to limit runes, appending an ellipsis when truncated.
func Excerpt(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// CandidateInput is one resume to rank. Text wins over Path when both are set.
type CandidateInput struct {
	ID       string
	Filename string
	Text     string
	Path     string
}

type ScoreInput struct {
	ResumeText         string
	ResumePath         string
	Filename           string
	JobDescription     string
	RequiredExperience *float64
}

// CandidateResult is the full outcome for one resume.
type CandidateResult struct {
	ID       string
	Filename string
	Profile  models.CandidateProfile
	Score    models.ScoreResult
}

type RankOptions struct {
	// SkipFailures records failing candidates in RankingResult.Failures instead of
	// aborting the run.
	SkipFailures bool
	// Progress is called after each candidate is processed.
	Progress func(done, total int)
}

type Ranker interface {
	Rank(ctx context.Context, jobDescription string, requiredExperience *float64, candidates []CandidateInput, opts RankOptions) (*models.RankingResult, error)
	ScoreResume(ctx context.Context, in ScoreInput) (*CandidateResult, error)
}

type ranker struct {
	extractor DocumentExtractor
	profiles  ProfileExtractor
	skills    SkillMatcher
	scoring   ScoringEngine
	embedder  EmbeddingService
	logger    *zap.Logger
}

func NewRanker(
	extractor DocumentExtractor,
	profiles ProfileExtractor,
	skills SkillMatcher,
	scoring ScoringEngine,
	embedder EmbeddingService,
	logger *zap.Logger,
) Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ranker{
		extractor: extractor,
		profiles:  profiles,
		skills:    skills,
		scoring:   scoring,
		embedder:  embedder,
		logger:    logger,
	}
}

// jobContext is computed once per job description.
type jobContext struct {
	text     string
	vector   Embedding
	skills   []string
	required *float64
}

// ScoreResume implements Ranker.
func (r *ranker) ScoreResume(ctx context.Context, in ScoreInput) (*CandidateResult, error) {
	if strings.TrimSpace(in.ResumeText) == "" && in.ResumePath == "" {
		return nil, invalidRequest("resume text or resume file is required")
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, invalidRequest("job description is required")
	}

	candidate := CandidateInput{Filename: in.Filename, Text: in.ResumeText, Path: in.ResumePath}
	text, err := r.candidateText(ctx, &candidate)
	if err != nil {
		return nil, err
	}

	vectors, err := r.embedder.Encode(ctx, []string{in.JobDescription, text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode texts: %w", err)
	}

	job, err := r.prepareJob(ctx, in.JobDescription, vectors[0], in.RequiredExperience)
	if err != nil {
		return nil, err
	}

	return r.scoreCandidate(ctx, job, candidate, text, vectors[1])
}

// Rank implements Ranker. Results are sorted by final score, ties keep input order.
func (r *ranker) Rank(ctx context.Context, jobDescription string, requiredExperience *float64, candidates []CandidateInput, opts RankOptions) (*models.RankingResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, invalidRequest("job description is required")
	}

	result := &models.RankingResult{
		JobDescriptionExcerpt: Excerpt(jobDescription, JobExcerptLength),
		TotalResumes:          len(candidates),
		RankedCandidates:      []models.RankedCandidate{},
	}

	// fail records a candidate error; it returns the error only when the run must abort.
	fail := func(err error) error {
		var cerr *CandidateError
		if !opts.SkipFailures || !errors.As(err, &cerr) || errors.Is(err, ErrModelUnavailable) {
			return err
		}
		r.logger.Warn("skipping candidate", zap.String("filename", cerr.Filename), zap.String("stage", cerr.Stage), zap.Error(cerr.Err))
		result.Failures = append(result.Failures, models.CandidateFailure{
			Filename: cerr.Filename,
			Stage:    cerr.Stage,
			Error:    cerr.Err.Error(),
		})
		return nil
	}

	kept := make([]CandidateInput, 0, len(candidates))
	texts := []string{jobDescription}
	for i := range candidates {
		c := candidates[i]
		text, err := r.candidateText(ctx, &c)
		if err != nil {
			if err := fail(err); err != nil {
				return nil, err
			}
			continue
		}
		kept = append(kept, c)
		texts = append(texts, text)
	}

	// One batch for the job and every resume.
	vectors, err := r.embedder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode texts: %w", err)
	}

	job, err := r.prepareJob(ctx, jobDescription, vectors[0], requiredExperience)
	if err != nil {
		return nil, err
	}

	scored := make([]*CandidateResult, 0, len(kept))
	for i, c := range kept {
		res, err := r.scoreCandidate(ctx, job, c, texts[i+1], vectors[i+1])
		if err != nil {
			if err := fail(err); err != nil {
				return nil, err
			}
		} else {
			scored = append(scored, res)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(kept))
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.FinalScore > scored[j].Score.FinalScore
	})

	for _, res := range scored {
		result.RankedCandidates = append(result.RankedCandidates, models.RankedCandidate{
			ID:            res.ID,
			Filename:      res.Filename,
			SemanticScore: res.Score.SemanticScore,
			FinalScore:    res.Score.FinalScore,
			MatchedSkills: res.Score.SkillGap.Matched,
			MissingSkills: res.Score.SkillGap.Missing,
			Feedback:      res.Score.Feedback,
		})
	}

	r.logger.Info("ranking completed",
		zap.Int("total", len(candidates)),
		zap.Int("ranked", len(result.RankedCandidates)),
		zap.Int("failed", len(result.Failures)),
	)

	return result, nil
}

// candidateText returns the resume text, extracting it from the file when needed.
// It fills in a display filename.
func (r *ranker) candidateText(ctx context.Context, c *CandidateInput) (string, error) {
	if c.Filename == "" {
		if c.Path != "" {
			c.Filename = filepath.Base(c.Path)
		} else {
			c.Filename = "resume"
		}
	}

	if strings.TrimSpace(c.Text) != "" {
		return c.Text, nil
	}
	if c.Path == "" {
		return "", &CandidateError{Filename: c.Filename, Stage: "input", Err: invalidRequest("resume text or resume file is required")}
	}

	text, err := r.extractor.ExtractText(ctx, c.Path, ExtractOptions{})
	if err != nil {
		return "", &CandidateError{Filename: c.Filename, Stage: "extract", Err: err}
	}
	return text, nil
}

func (r *ranker) prepareJob(ctx context.Context, text string, vector Embedding, required *float64) (*jobContext, error) {
	jobSkills, err := r.skills.DetectSkills(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to detect job skills: %w", err)
	}
	return &jobContext{text: text, vector: vector, skills: jobSkills, required: required}, nil
}

func (r *ranker) scoreCandidate(ctx context.Context, job *jobContext, c CandidateInput, text string, vector Embedding) (*CandidateResult, error) {
	semantic, err := r.scoring.ComputeSimilarity(job.vector, vector)
	if err != nil {
		return nil, &CandidateError{Filename: c.Filename, Stage: "similarity", Err: err}
	}

	profile := r.profiles.Extract(text)

	skills, err := r.skills.DetectSkills(ctx, text)
	if err != nil {
		return nil, &CandidateError{Filename: c.Filename, Stage: "skills", Err: err}
	}
	profile.Skills = skills

	gap := CompareSkills(skills, job.skills)
	final := r.scoring.HybridScore(semantic, skills, job.text, profile.ExperienceYears, job.required)
	feedback := r.scoring.GenerateRecruiterFeedback(final, gap.Matched, gap.Missing, profile.ExperienceYears, job.required)

	r.logger.Debug("candidate scored",
		zap.String("filename", c.Filename),
		zap.Float64("semantic_score", semantic),
		zap.Float64("final_score", final),
	)

	return &CandidateResult{
		ID:       c.ID,
		Filename: c.Filename,
		Profile:  profile,
		Score: models.ScoreResult{
			SemanticScore: semantic,
			FinalScore:    final,
			SkillGap:      gap,
			Feedback:      feedback,
		},
	}, nil
}
