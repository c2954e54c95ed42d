package handlers

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type RankHandler struct {
	sessionRepo repositories.RankingSessionRepository
	resumeRepo  repositories.ResumeRepository
	worker      services.Worker
	validate    *validator.Validate
}

func NewRankHandler(
	sessionRepo repositories.RankingSessionRepository,
	resumeRepo repositories.ResumeRepository,
	worker services.Worker,
	validate *validator.Validate,
) *RankHandler {
	return &RankHandler{
		sessionRepo: sessionRepo,
		resumeRepo:  resumeRepo,
		worker:      worker,
		validate:    validate,
	}
}

// HandleRank handles POST /rank. Ranking runs in the background.
func (h *RankHandler) HandleRank(c *fiber.Ctx) error {
	var req models.RankRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return errorResponse(c, err)
	}

	ids := make([]uuid.UUID, 0, len(req.ResumeIDs))
	for _, raw := range req.ResumeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid resume id %q", raw),
			})
		}
		ids = append(ids, id)
	}

	resumes, err := h.resumeRepo.FindByIDs(ids)
	if err != nil {
		return errorResponse(c, err)
	}
	if len(resumes) != len(ids) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("%d of %d resumes not found", len(ids)-len(resumes), len(ids)),
		})
	}

	session := &models.RankingSession{
		ID:                 uuid.New(),
		JobDescription:     req.JobDescription,
		RequiredExperience: req.RequiredExperience,
		ResumeIDs:          models.JoinList(req.ResumeIDs),
		Status:             models.StatusQueued,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	if err := h.sessionRepo.Create(session); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create ranking session",
		})
	}

	h.worker.EnqueueSession(session.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.RankResponse{
		ID:     session.ID.String(),
		Status: string(models.StatusQueued),
	})
}
