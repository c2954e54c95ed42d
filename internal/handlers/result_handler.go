package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type ResultHandler struct {
	sessionRepo repositories.RankingSessionRepository
}

func NewResultHandler(sessionRepo repositories.RankingSessionRepository) *ResultHandler {
	return &ResultHandler{
		sessionRepo: sessionRepo,
	}
}

// HandleGetResult handles GET /result/:id.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid ranking session ID format",
		})
	}

	session, err := h.sessionRepo.FindByID(sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	response := models.ResultResponse{
		ID:     session.ID.String(),
		Status: string(session.Status),
	}

	switch session.Status {
	case models.StatusCompleted:
		result, err := services.SessionResult(session)
		if err != nil {
			return errorResponse(c, err)
		}
		response.Result = result
	case models.StatusFailed:
		response.ErrorMessage = session.ErrorMessage
	}

	return c.JSON(response)
}

const (
	defaultSessionPageSize = 20
	maxSessionPageSize     = 100
)

// HandleListSessions handles GET /sessions?page=N&page_size=M, newest first.
func (h *ResultHandler) HandleListSessions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", defaultSessionPageSize)
	if pageSize <= 0 || pageSize > maxSessionPageSize {
		pageSize = defaultSessionPageSize
	}

	sessions, total, err := h.sessionRepo.List(page, pageSize)
	if err != nil {
		return errorResponse(c, err)
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summary := models.SessionSummary{
			ID:                    session.ID.String(),
			Status:                string(session.Status),
			JobDescriptionExcerpt: services.Excerpt(session.JobDescription, services.JobExcerptLength),
			TotalCandidates:       len(session.Scores),
			CreatedAt:             session.CreatedAt,
		}
		for _, score := range session.Scores {
			if score.FinalScore > summary.TopScore {
				summary.TopScore = score.FinalScore
			}
		}
		summaries = append(summaries, summary)
	}

	return c.JSON(models.SessionListResponse{
		Sessions: summaries,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// HandleDeleteResult handles DELETE /result/:id. Stored scores are removed with the session.
func (h *ResultHandler) HandleDeleteResult(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid ranking session ID format",
		})
	}

	if err := h.sessionRepo.Delete(sessionID); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Ranking session deleted",
	})
}
