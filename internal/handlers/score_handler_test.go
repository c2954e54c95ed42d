package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

func newScoreApp(ranker *fakeRanker, repo *fakeResumeRepo) *fiber.App {
	app := fiber.New()
	h := NewScoreHandler(repo, ranker, validator.New())
	app.Post("/score", h.HandleScore)
	return app
}

func TestHandleScore(t *testing.T) {
	ranker := &fakeRanker{result: &services.CandidateResult{
		Filename: "resume",
		Profile:  models.CandidateProfile{Emails: []string{}, Phones: []string{}, Skills: []string{"Python"}},
		Score: models.ScoreResult{
			SemanticScore: 62.5,
			FinalScore:    71.25,
			SkillGap:      models.SkillGap{Matched: []string{"python"}, Missing: []string{"sql"}},
			Feedback:      models.Feedback{Verdict: models.VerdictGood, Strengths: []string{}, Concerns: []string{}},
		},
	}}
	app := newScoreApp(ranker, &fakeResumeRepo{resumes: map[uuid.UUID]models.Resume{}})

	status, body := doJSON(t, app, http.MethodPost, "/score",
		`{"resume_text": "Python developer", "job_description": "Python and SQL", "required_experience": 2}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 71.25, body["final_score"])
	assert.Equal(t, "resume", body["filename"])
	gap := body["skill_gap"].(map[string]any)
	assert.Equal(t, []any{"sql"}, gap["missing_skills"])
	profile := body["profile"].(map[string]any)
	assert.Equal(t, []any{"Python"}, profile["skills_detected"])

	assert.Equal(t, "Python developer", ranker.lastInput.ResumeText)
	require.NotNil(t, ranker.lastInput.RequiredExperience)
	assert.Equal(t, 2.0, *ranker.lastInput.RequiredExperience)
}

func TestHandleScoreByResumeID(t *testing.T) {
	id := uuid.New()
	repo := &fakeResumeRepo{resumes: map[uuid.UUID]models.Resume{
		id: {ID: id, OriginalFileName: "jane.pdf", FilePath: "/uploads/resume_x.pdf", RawText: "Go engineer"},
	}}
	ranker := &fakeRanker{result: &services.CandidateResult{Filename: "jane.pdf"}}
	app := newScoreApp(ranker, repo)

	status, _ := doJSON(t, app, http.MethodPost, "/score",
		fmt.Sprintf(`{"resume_id": %q, "job_description": "Go"}`, id))

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Go engineer", ranker.lastInput.ResumeText)
	assert.Equal(t, "/uploads/resume_x.pdf", ranker.lastInput.ResumePath)
	assert.Equal(t, "jane.pdf", ranker.lastInput.Filename)
}

func TestHandleScoreErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "malformed json", body: `{`, status: fiber.StatusBadRequest},
		{name: "missing job description", body: `{"resume_text": "Python"}`, status: fiber.StatusBadRequest},
		{name: "negative experience", body: `{"resume_text": "x", "job_description": "y", "required_experience": -1}`, status: fiber.StatusBadRequest},
		{name: "bad resume id", body: `{"resume_id": "nope", "job_description": "y"}`, status: fiber.StatusBadRequest},
		{name: "unknown resume id", body: fmt.Sprintf(`{"resume_id": %q, "job_description": "y"}`, uuid.New()), status: fiber.StatusNotFound},
		{
			name:   "no resume given",
			body:   `{"job_description": "Python"}`,
			err:    fmt.Errorf("%w: resume text or resume file is required", services.ErrInvalidRequest),
			status: fiber.StatusBadRequest,
		},
		{
			name:   "model unavailable",
			body:   `{"resume_text": "x", "job_description": "y"}`,
			err:    fmt.Errorf("failed to encode texts: %w", services.ErrModelUnavailable),
			status: fiber.StatusServiceUnavailable,
		},
		{
			name:   "unexpected",
			body:   `{"resume_text": "x", "job_description": "y"}`,
			err:    errors.New("boom"),
			status: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranker := &fakeRanker{err: tt.err, result: &services.CandidateResult{}}
			app := newScoreApp(ranker, &fakeResumeRepo{resumes: map[uuid.UUID]models.Resume{}})

			status, body := doJSON(t, app, http.MethodPost, "/score", tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStatusFor(t *testing.T) {
	extraction := &services.ExtractionError{Path: "cv.pdf", Stage: "pdf", Err: errors.New("bad xref")}
	assert.Equal(t, fiber.StatusUnprocessableEntity, statusFor(extraction))
	assert.Equal(t, fiber.StatusUnprocessableEntity, statusFor(&services.CandidateError{Filename: "cv.pdf", Stage: "extract", Err: extraction}))
	assert.Equal(t, fiber.StatusUnprocessableEntity, statusFor(services.ErrModelInput))
}
