package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type fakeRanker struct {
	lastInput services.ScoreInput
	result    *services.CandidateResult
	err       error
}

func (f *fakeRanker) Rank(context.Context, string, *float64, []services.CandidateInput, services.RankOptions) (*models.RankingResult, error) {
	return nil, nil
}

func (f *fakeRanker) ScoreResume(_ context.Context, in services.ScoreInput) (*services.CandidateResult, error) {
	f.lastInput = in
	return f.result, f.err
}

type fakeResumeRepo struct {
	resumes map[uuid.UUID]models.Resume
}

func (f *fakeResumeRepo) Create(resume *models.Resume) error {
	if resume.ID == uuid.Nil {
		resume.ID = uuid.New()
	}
	f.resumes[resume.ID] = *resume
	return nil
}

func (f *fakeResumeRepo) FindByID(id uuid.UUID) (*models.Resume, error) {
	r, ok := f.resumes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (f *fakeResumeRepo) FindByIDs(ids []uuid.UUID) ([]models.Resume, error) {
	var out []models.Resume
	for _, id := range ids {
		if r, ok := f.resumes[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.RankingSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]*models.RankingSession{}}
}

func (f *fakeSessionRepo) Create(session *models.RankingSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) FindByID(id uuid.UUID) (*models.RankingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Claim(id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok || s.Status != models.StatusQueued {
		return false, nil
	}
	s.Status = models.StatusProcessing
	return true, nil
}

func (f *fakeSessionRepo) SaveResult(uuid.UUID, []models.CandidateScore, []models.CandidateFailure) error {
	return nil
}

func (f *fakeSessionRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id].Status = models.StatusFailed
	f.sessions[id].ErrorMessage = &errorMsg
	return nil
}

func (f *fakeSessionRepo) FindPendingSessions(int) ([]models.RankingSession, error) {
	return nil, nil
}

// List orders by CreatedAt descending, like the gorm repository.
func (f *fakeSessionRepo) List(page, pageSize int) ([]models.RankingSession, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := make([]models.RankingSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	start := (page - 1) * pageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (f *fakeSessionRepo) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

type fakeWorker struct {
	enqueued []uuid.UUID
}

func (w *fakeWorker) Start(context.Context) {}

func (w *fakeWorker) Stop() {}

func (w *fakeWorker) EnqueueSession(id uuid.UUID) {
	w.enqueued = append(w.enqueued, id)
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}
