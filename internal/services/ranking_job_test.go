package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.RankingSession
	statuses []models.SessionStatus
}

func newMemorySessionRepo(sessions ...*models.RankingSession) *memorySessionRepo {
	repo := &memorySessionRepo{sessions: map[uuid.UUID]*models.RankingSession{}}
	for _, s := range sessions {
		repo.sessions[s.ID] = s
	}
	return repo
}

func (m *memorySessionRepo) Create(session *models.RankingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *memorySessionRepo) FindByID(id uuid.UUID) (*models.RankingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (m *memorySessionRepo) Claim(id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != models.StatusQueued {
		return false, nil
	}
	s.Status = models.StatusProcessing
	m.statuses = append(m.statuses, s.Status)
	return true, nil
}

func (m *memorySessionRepo) SaveResult(id uuid.UUID, scores []models.CandidateScore, failures []models.CandidateFailure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[id]
	s.Scores = scores
	s.Status = models.StatusCompleted
	s.Failures = ""
	if len(failures) > 0 {
		data, err := json.Marshal(failures)
		if err != nil {
			return err
		}
		s.Failures = string(data)
	}
	return nil
}

func (m *memorySessionRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Status = models.StatusFailed
		s.ErrorMessage = &errorMsg
	}
	return nil
}

func (m *memorySessionRepo) FindPendingSessions(limit int) ([]models.RankingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RankingSession
	for _, s := range m.sessions {
		if s.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memorySessionRepo) List(page, pageSize int) ([]models.RankingSession, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RankingSession
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (m *memorySessionRepo) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

type memoryResumeRepo struct {
	resumes map[uuid.UUID]models.Resume
}

func (m *memoryResumeRepo) Create(resume *models.Resume) error {
	m.resumes[resume.ID] = *resume
	return nil
}

func (m *memoryResumeRepo) FindByID(id uuid.UUID) (*models.Resume, error) {
	r, ok := m.resumes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &r, nil
}

func (m *memoryResumeRepo) FindByIDs(ids []uuid.UUID) ([]models.Resume, error) {
	var out []models.Resume
	for _, id := range ids {
		if r, ok := m.resumes[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestProcessSessionStoresRanking(t *testing.T) {
	strong := models.Resume{ID: uuid.New(), OriginalFileName: "strong.txt", RawText: "5 years experience with Python, SQL and Docker building backend services"}
	weak := models.Resume{ID: uuid.New(), OriginalFileName: "weak.txt", RawText: "Graphic designer skilled in Photoshop and illustration"}
	resumes := &memoryResumeRepo{resumes: map[uuid.UUID]models.Resume{strong.ID: strong, weak.ID: weak}}

	session := &models.RankingSession{
		ID:                 uuid.New(),
		JobDescription:     backendJob,
		RequiredExperience: floatPtr(3),
		ResumeIDs:          models.JoinList([]string{weak.ID.String(), strong.ID.String()}),
		Status:             models.StatusQueued,
	}
	sessions := newMemorySessionRepo(session)

	ranker := newTestRanker(newFakeEmbeddings(&bagOfWordsBackend{}))
	jobs := NewRankingJobService(sessions, resumes, ranker, nil)

	require.NoError(t, jobs.ProcessSession(context.Background(), session.ID))

	assert.Equal(t, []models.SessionStatus{models.StatusProcessing}, sessions.statuses)
	assert.Equal(t, models.StatusCompleted, session.Status)
	require.Len(t, session.Scores, 2)
	assert.Equal(t, 1, session.Scores[0].Rank)
	assert.Equal(t, strong.ID, session.Scores[0].ResumeID)
	assert.Equal(t, "python, sql", session.Scores[0].MatchedSkills)

	direct, err := ranker.Rank(context.Background(), backendJob, floatPtr(3), []CandidateInput{
		{ID: weak.ID.String(), Filename: "weak.txt", Text: weak.RawText},
		{ID: strong.ID.String(), Filename: "strong.txt", Text: strong.RawText},
	}, RankOptions{})
	require.NoError(t, err)

	stored, err := SessionResult(session)
	require.NoError(t, err)
	assert.Equal(t, direct, stored)
}

func TestProcessSessionRecordsSkippedResumes(t *testing.T) {
	ok := models.Resume{ID: uuid.New(), OriginalFileName: "ok.txt", RawText: "Python developer"}
	broken := models.Resume{ID: uuid.New(), OriginalFileName: "gone.pdf", FilePath: "/nonexistent/gone.pdf"}
	resumes := &memoryResumeRepo{resumes: map[uuid.UUID]models.Resume{ok.ID: ok, broken.ID: broken}}

	session := &models.RankingSession{
		ID:             uuid.New(),
		JobDescription: backendJob,
		ResumeIDs:      models.JoinList([]string{broken.ID.String(), ok.ID.String()}),
		Status:         models.StatusQueued,
	}
	sessions := newMemorySessionRepo(session)
	jobs := NewRankingJobService(sessions, resumes, newTestRanker(newFakeEmbeddings(&bagOfWordsBackend{})), nil)

	require.NoError(t, jobs.ProcessSession(context.Background(), session.ID))

	result, err := SessionResult(session)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalResumes)
	require.Len(t, result.RankedCandidates, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "gone.pdf", result.Failures[0].Filename)
	assert.Equal(t, "extract", result.Failures[0].Stage)
}

func TestProcessSessionMarksFailure(t *testing.T) {
	embedder, err := NewEmbeddingService(func(context.Context) (EmbeddingBackend, error) {
		return nil, assert.AnError
	}, EmbeddingOptions{})
	require.NoError(t, err)

	r := models.Resume{ID: uuid.New(), OriginalFileName: "cv.txt", RawText: "Python developer"}
	session := &models.RankingSession{
		ID:             uuid.New(),
		JobDescription: backendJob,
		ResumeIDs:      r.ID.String(),
		Status:         models.StatusQueued,
	}
	sessions := newMemorySessionRepo(session)
	jobs := NewRankingJobService(sessions, &memoryResumeRepo{resumes: map[uuid.UUID]models.Resume{r.ID: r}}, newTestRanker(embedder), nil)

	err = jobs.ProcessSession(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, models.StatusFailed, session.Status)
	require.NotNil(t, session.ErrorMessage)
	assert.Contains(t, *session.ErrorMessage, "embedding model unavailable")
}
