package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-screener/internal/models"
)

type UnknownSkillRepository interface {
	// Increment bumps the frequency of every name, inserting new ones.
	Increment(names []string) error
	List(limit int) ([]models.UnknownSkill, error)
}

type unknownSkillRepository struct {
	db *gorm.DB
}

func NewUnknownSkillRepository(db *gorm.DB) UnknownSkillRepository {
	return &unknownSkillRepository{db: db}
}

func (r *unknownSkillRepository) Increment(names []string) error {
	if len(names) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.UnknownSkill, 0, len(names))
	for _, name := range names {
		rows = append(rows, models.UnknownSkill{Name: name, Frequency: 1, UpdatedAt: now})
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"frequency":  gorm.Expr("unknown_skills.frequency + 1"),
			"updated_at": now,
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to record unknown skills: %w", err)
	}
	return nil
}

// List returns unapproved skills, most frequent first.
func (r *unknownSkillRepository) List(limit int) ([]models.UnknownSkill, error) {
	var skills []models.UnknownSkill
	err := r.db.
		Where("approved = ?", false).
		Order("frequency DESC, name ASC").
		Limit(limit).
		Find(&skills).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unknown skills: %w", err)
	}
	return skills, nil
}
