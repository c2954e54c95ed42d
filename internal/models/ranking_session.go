package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	StatusQueued     SessionStatus = "queued"
	StatusProcessing SessionStatus = "processing"
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
)

type RankingSession struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobDescription     string        `gorm:"type:text;not null" json:"job_description"`
	RequiredExperience *float64      `gorm:"type:decimal(5,1)" json:"required_experience,omitempty"`
	ResumeIDs          string        `gorm:"type:text" json:"-"`
	Status             SessionStatus `gorm:"not null;default:'queued'" json:"status"`
	ErrorMessage       *string       `gorm:"type:text" json:"error_message,omitempty"`
	Failures           string        `gorm:"type:text" json:"-"`
	CreatedAt          time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Scores []CandidateScore `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RankingSession) TableName() string {
	return "ranking_sessions"
}

// ResumeIDList parses the stored resume ids, skipping malformed entries.
func (s *RankingSession) ResumeIDList() []uuid.UUID {
	var ids []uuid.UUID
	for _, raw := range SplitList(s.ResumeIDs) {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// CandidateScore is one persisted row of a completed ranking session.
type CandidateScore struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID     uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	ResumeID      uuid.UUID `gorm:"type:uuid;not null" json:"resume_id"`
	Rank          int       `gorm:"not null" json:"rank"`
	Filename      string    `gorm:"type:text" json:"filename"`
	SemanticScore float64   `gorm:"type:decimal(5,2)" json:"semantic_score"`
	FinalScore    float64   `gorm:"type:decimal(5,2)" json:"final_score"`
	MatchedSkills string    `gorm:"type:text" json:"matched_skills"`
	MissingSkills string    `gorm:"type:text" json:"missing_skills"`
	Verdict       string    `gorm:"type:text" json:"verdict"`
	Feedback      string    `gorm:"type:text" json:"feedback"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CandidateScore) TableName() string {
	return "candidate_scores"
}

// UnknownSkill is a curation candidate: a token seen in resumes that is not in the taxonomy.
type UnknownSkill struct {
	Name      string    `gorm:"type:text;primary_key" json:"name"`
	Frequency int       `gorm:"not null;default:1" json:"frequency"`
	Approved  bool      `gorm:"not null;default:false" json:"approved"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UnknownSkill) TableName() string {
	return "unknown_skills"
}
