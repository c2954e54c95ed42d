package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/repositories"
)

const defaultUnknownSkillLimit = 50

type UnknownSkillHandler struct {
	repo repositories.UnknownSkillRepository
}

func NewUnknownSkillHandler(repo repositories.UnknownSkillRepository) *UnknownSkillHandler {
	return &UnknownSkillHandler{repo: repo}
}

// HandleList handles GET /unknown-skills?limit=N.
func (h *UnknownSkillHandler) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultUnknownSkillLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultUnknownSkillLimit
	}

	skills, err := h.repo.List(limit)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"unknown_skills": skills,
	})
}
