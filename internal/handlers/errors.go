package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var extractionErr *services.ExtractionError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, services.ErrInvalidRequest), errors.As(err, &validationErrs):
		return fiber.StatusBadRequest
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &extractionErr), errors.Is(err, services.ErrModelInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrModelUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
