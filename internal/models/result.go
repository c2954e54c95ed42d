package models

import "time"

type UploadResponse struct {
	ID           string            `json:"id,omitempty"`
	Filename     string            `json:"filename,omitempty"`
	OriginalName string            `json:"original_name"`
	Profile      *CandidateProfile `json:"profile,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type ScoreRequest struct {
	ResumeText         string   `json:"resume_text"`
	ResumeID           string   `json:"resume_id" validate:"omitempty,uuid"`
	JobDescription     string   `json:"job_description" validate:"required"`
	RequiredExperience *float64 `json:"required_experience" validate:"omitempty,gte=0"`
}

type RankRequest struct {
	JobDescription     string   `json:"job_description" validate:"required"`
	RequiredExperience *float64 `json:"required_experience" validate:"omitempty,gte=0"`
	ResumeIDs          []string `json:"resume_ids" validate:"required,min=1,dive,uuid"`
}

type RankResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string         `json:"id"`
	Status       string         `json:"status"`
	Result       *RankingResult `json:"result,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}

// ScoreResponse is the synchronous scoring result for one resume.
type ScoreResponse struct {
	Filename string           `json:"filename"`
	Profile  CandidateProfile `json:"profile"`
	ScoreResult
}

// SessionSummary is one row of the ranking history.
type SessionSummary struct {
	ID                    string    `json:"id"`
	Status                string    `json:"status"`
	JobDescriptionExcerpt string    `json:"job_description_excerpt"`
	TotalCandidates       int       `json:"total_candidates"`
	TopScore              float64   `json:"top_score"`
	CreatedAt             time.Time `json:"created_at"`
}

type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}
