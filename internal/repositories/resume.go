package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type ResumeRepository interface {
	Create(resume *models.Resume) error
	FindByID(id uuid.UUID) (*models.Resume, error)
	FindByIDs(ids []uuid.UUID) ([]models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(resume *models.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}

	return nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(id uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.Where("id = ?", id).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
		}

		return nil, fmt.Errorf("failed to find resume: %w", err)
	}

	return &resume, nil
}

// FindByIDs implements ResumeRepository. Results follow the order of ids; unknown ids are skipped.
func (r *resumeRepository) FindByIDs(ids []uuid.UUID) ([]models.Resume, error) {
	var found []models.Resume
	if err := r.db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to find resumes: %w", err)
	}

	byID := make(map[uuid.UUID]models.Resume, len(found))
	for _, resume := range found {
		byID[resume.ID] = resume
	}

	ordered := make([]models.Resume, 0, len(found))
	for _, id := range ids {
		if resume, ok := byID[id]; ok {
			ordered = append(ordered, resume)
		}
	}

	return ordered, nil
}
