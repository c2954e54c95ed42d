package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type RankingSessionRepository interface {
	Create(session *models.RankingSession) error
	FindByID(id uuid.UUID) (*models.RankingSession, error)
	Claim(id uuid.UUID) (bool, error)
	SaveResult(id uuid.UUID, scores []models.CandidateScore, failures []models.CandidateFailure) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingSessions(limit int) ([]models.RankingSession, error)
	List(page, pageSize int) ([]models.RankingSession, int64, error)
	Delete(id uuid.UUID) error
}

type rankingSessionRepository struct {
	db *gorm.DB
}

func NewRankingSessionRepository(db *gorm.DB) RankingSessionRepository {
	return &rankingSessionRepository{db: db}
}

func (r *rankingSessionRepository) Create(session *models.RankingSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create ranking session: %w", err)
	}
	return nil
}

// FindByID loads the session with its scores in rank order.
func (r *rankingSessionRepository) FindByID(id uuid.UUID) (*models.RankingSession, error) {
	var session models.RankingSession
	err := r.db.
		Preload("Scores", func(db *gorm.DB) *gorm.DB {
			return db.Order("rank ASC")
		}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ranking session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find ranking session: %w", err)
	}
	return &session, nil
}

// Claim moves a queued session to processing. It reports false when the session
// was not queued, which means another worker already owns it.
func (r *rankingSessionRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.RankingSession{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim ranking session: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// SaveResult replaces the session's scores and marks it completed in one transaction.
func (r *rankingSessionRepository) SaveResult(id uuid.UUID, scores []models.CandidateScore, failures []models.CandidateFailure) error {
	failuresJSON := ""
	if len(failures) > 0 {
		data, err := json.Marshal(failures)
		if err != nil {
			return fmt.Errorf("failed to encode failures: %w", err)
		}
		failuresJSON = string(data)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.CandidateScore{}).Error; err != nil {
			return fmt.Errorf("failed to clear scores: %w", err)
		}

		for i := range scores {
			scores[i].SessionID = id
		}
		if len(scores) > 0 {
			if err := tx.Create(&scores).Error; err != nil {
				return fmt.Errorf("failed to save scores: %w", err)
			}
		}

		result := tx.Model(&models.RankingSession{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     models.StatusCompleted,
				"failures":   failuresJSON,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update result: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("ranking session %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *rankingSessionRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.RankingSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("ranking session %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *rankingSessionRepository) FindPendingSessions(limit int) ([]models.RankingSession, error) {
	var sessions []models.RankingSession
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&sessions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending sessions: %w", err)
	}

	return sessions, nil
}

// List returns one page of sessions, newest first, with their scores and the total session count.
func (r *rankingSessionRepository) List(page, pageSize int) ([]models.RankingSession, int64, error) {
	var total int64
	if err := r.db.Model(&models.RankingSession{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ranking sessions: %w", err)
	}

	var sessions []models.RankingSession
	err := r.db.
		Preload("Scores").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ranking sessions: %w", err)
	}

	return sessions, total, nil
}

// Delete removes a session. Its scores go with it through the foreign key cascade.
func (r *rankingSessionRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.RankingSession{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ranking session: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("ranking session %s: %w", id, ErrNotFound)
	}

	return nil
}
