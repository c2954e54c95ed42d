package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Resume struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename         string    `gorm:"type:text" json:"filename"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	FilePath         string    `gorm:"type:text" json:"-"`
	Name             *string   `gorm:"type:text" json:"name"`
	Emails           string    `gorm:"type:text" json:"emails"`
	Phones           string    `gorm:"type:text" json:"phones"`
	ExperienceYears  *float64  `gorm:"type:decimal(5,1)" json:"experience_years"`
	Skills           string    `gorm:"type:text" json:"skills"`
	RawText          string    `gorm:"type:text;not null" json:"-"`
	CreatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (r *Resume) TableName() string {
	return "resumes"
}

// SkillList splits the stored comma-separated skills.
func (r *Resume) SkillList() []string {
	return SplitList(r.Skills)
}

// JoinList stores a string slice in a single text column.
func JoinList(values []string) string {
	return strings.Join(values, ", ")
}

// SplitList is the inverse of JoinList.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
