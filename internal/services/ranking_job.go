package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

// RankingJobService runs queued ranking sessions against stored resumes.
type RankingJobService interface {
	ProcessSession(ctx context.Context, sessionID uuid.UUID) error
}

type rankingJobService struct {
	sessionRepo repositories.RankingSessionRepository
	resumeRepo  repositories.ResumeRepository
	ranker      Ranker
	logger      *zap.Logger
}

func NewRankingJobService(
	sessionRepo repositories.RankingSessionRepository,
	resumeRepo repositories.ResumeRepository,
	ranker Ranker,
	logger *zap.Logger,
) RankingJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rankingJobService{
		sessionRepo: sessionRepo,
		resumeRepo:  resumeRepo,
		ranker:      ranker,
		logger:      logger,
	}
}

func (s *rankingJobService) ProcessSession(ctx context.Context, sessionID uuid.UUID) error {
	log := s.logger.With(zap.String("session_id", sessionID.String()))

	claimed, err := s.sessionRepo.Claim(sessionID)
	if err != nil {
		return fmt.Errorf("failed to claim session: %w", err)
	}
	if !claimed {
		log.Debug("session already taken, skipping")
		return nil
	}

	log.Info("ranking session started")

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		s.markFailed(sessionID, err)
		return fmt.Errorf("failed to get ranking session: %w", err)
	}

	resumes, err := s.resumeRepo.FindByIDs(session.ResumeIDList())
	if err != nil {
		s.markFailed(sessionID, err)
		return fmt.Errorf("failed to get resumes: %w", err)
	}

	candidates := make([]CandidateInput, 0, len(resumes))
	for _, resume := range resumes {
		candidates = append(candidates, CandidateInput{
			ID:       resume.ID.String(),
			Filename: resume.OriginalFileName,
			Text:     resume.RawText,
			Path:     resume.FilePath,
		})
	}

	result, err := s.ranker.Rank(ctx, session.JobDescription, session.RequiredExperience, candidates, RankOptions{SkipFailures: true})
	if err != nil {
		s.markFailed(sessionID, err)
		return fmt.Errorf("failed to rank resumes: %w", err)
	}

	scores, err := candidateScores(result.RankedCandidates)
	if err != nil {
		s.markFailed(sessionID, err)
		return err
	}

	if err := s.sessionRepo.SaveResult(sessionID, scores, result.Failures); err != nil {
		s.markFailed(sessionID, err)
		return fmt.Errorf("failed to save ranking result: %w", err)
	}

	log.Info("ranking session completed",
		zap.Int("ranked", len(scores)),
		zap.Int("failed", len(result.Failures)),
	)
	return nil
}

func (s *rankingJobService) markFailed(sessionID uuid.UUID, cause error) {
	if err := s.sessionRepo.UpdateError(sessionID, cause.Error()); err != nil {
		s.logger.Error("failed to record session error", zap.String("session_id", sessionID.String()), zap.Error(err))
	}
}

func candidateScores(ranked []models.RankedCandidate) ([]models.CandidateScore, error) {
	scores := make([]models.CandidateScore, 0, len(ranked))
	for i, c := range ranked {
		resumeID, err := uuid.Parse(c.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid resume id %q: %w", c.ID, err)
		}

		feedback, err := json.Marshal(c.Feedback)
		if err != nil {
			return nil, fmt.Errorf("failed to encode feedback: %w", err)
		}

		scores = append(scores, models.CandidateScore{
			ResumeID:      resumeID,
			Rank:          i + 1,
			Filename:      c.Filename,
			SemanticScore: c.SemanticScore,
			FinalScore:    c.FinalScore,
			MatchedSkills: models.JoinList(c.MatchedSkills),
			MissingSkills: models.JoinList(c.MissingSkills),
			Verdict:       string(c.Feedback.Verdict),
			Feedback:      string(feedback),
		})
	}
	return scores, nil
}

// SessionResult rebuilds the ranking result of a completed session from its stored scores.
func SessionResult(session *models.RankingSession) (*models.RankingResult, error) {
	result := &models.RankingResult{
		JobDescriptionExcerpt: Excerpt(session.JobDescription, JobExcerptLength),
		TotalResumes:          len(session.ResumeIDList()),
		RankedCandidates:      []models.RankedCandidate{},
	}

	for _, score := range session.Scores {
		var feedback models.Feedback
		if err := json.Unmarshal([]byte(score.Feedback), &feedback); err != nil {
			return nil, fmt.Errorf("failed to decode feedback for %s: %w", score.Filename, err)
		}

		result.RankedCandidates = append(result.RankedCandidates, models.RankedCandidate{
			ID:            score.ResumeID.String(),
			Filename:      score.Filename,
			SemanticScore: score.SemanticScore,
			FinalScore:    score.FinalScore,
			MatchedSkills: nonNilList(models.SplitList(score.MatchedSkills)),
			MissingSkills: nonNilList(models.SplitList(score.MissingSkills)),
			Feedback:      feedback,
		})
	}

	if strings.TrimSpace(session.Failures) != "" {
		if err := json.Unmarshal([]byte(session.Failures), &result.Failures); err != nil {
			return nil, fmt.Errorf("failed to decode failures: %w", err)
		}
	}

	return result, nil
}

func nonNilList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
