package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type ScoreHandler struct {
	resumeRepo repositories.ResumeRepository
	ranker     services.Ranker
	validate   *validator.Validate
}

func NewScoreHandler(resumeRepo repositories.ResumeRepository, ranker services.Ranker, validate *validator.Validate) *ScoreHandler {
	return &ScoreHandler{
		resumeRepo: resumeRepo,
		ranker:     ranker,
		validate:   validate,
	}
}

// HandleScore handles POST /score: one resume, given as text or by stored id.
func (h *ScoreHandler) HandleScore(c *fiber.Ctx) error {
	var req models.ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return errorResponse(c, err)
	}

	in := services.ScoreInput{
		ResumeText:         req.ResumeText,
		JobDescription:     req.JobDescription,
		RequiredExperience: req.RequiredExperience,
	}

	if req.ResumeID != "" {
		id, err := uuid.Parse(req.ResumeID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid resume_id format",
			})
		}
		resume, err := h.resumeRepo.FindByID(id)
		if err != nil {
			return errorResponse(c, err)
		}
		in.ResumeText = resume.RawText
		in.ResumePath = resume.FilePath
		in.Filename = resume.OriginalFileName
	}

	result, err := h.ranker.ScoreResume(c.UserContext(), in)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(models.ScoreResponse{
		Filename:    result.Filename,
		Profile:     result.Profile,
		ScoreResult: result.Score,
	})
}
