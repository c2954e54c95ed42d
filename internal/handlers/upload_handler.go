package handlers

import (
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type UploadHandler struct {
	resumeRepo       repositories.ResumeRepository
	unknownSkillRepo repositories.UnknownSkillRepository
	storageService   services.StorageService
	extractor        services.DocumentExtractor
	profiles         services.ProfileExtractor
	maxFileSize      int64
	logger           *zap.Logger
}

func NewUploadHandler(
	resumeRepo repositories.ResumeRepository,
	unknownSkillRepo repositories.UnknownSkillRepository,
	storageService services.StorageService,
	extractor services.DocumentExtractor,
	profiles services.ProfileExtractor,
	maxFileSize int64,
	logger *zap.Logger,
) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{
		resumeRepo:       resumeRepo,
		unknownSkillRepo: unknownSkillRepo,
		storageService:   storageService,
		extractor:        extractor,
		profiles:         profiles,
		maxFileSize:      maxFileSize,
		logger:           logger,
	}
}

// HandleUpload handles POST /upload. Each file succeeds or fails on its own.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["resumes"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files uploaded. Please upload one or more 'resumes' as PDF, DOCX or TXT files.",
		})
	}

	responses := make([]models.UploadResponse, 0, len(files))
	stored := 0
	for _, file := range files {
		resp := h.processFile(c, file)
		if resp.Error == "" {
			stored++
		}
		responses = append(responses, resp)
	}

	status := fiber.StatusCreated
	if stored == 0 {
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(fiber.Map{
		"stored":  stored,
		"resumes": responses,
	})
}

func (h *UploadHandler) processFile(c *fiber.Ctx, file *multipart.FileHeader) models.UploadResponse {
	resp := models.UploadResponse{OriginalName: file.Filename}

	if file.Size > h.maxFileSize {
		resp.Error = fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize)
		return resp
	}

	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	text, err := h.extractor.ExtractText(c.UserContext(), filePath, services.ExtractOptions{})
	if err != nil {
		h.logger.Warn("resume extraction failed", zap.String("file", file.Filename), zap.Error(err))
		h.cleanup(filename)
		resp.Error = err.Error()
		return resp
	}

	profile := h.profiles.Extract(text)

	resume := models.Resume{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: file.Filename,
		FilePath:         filePath,
		Name:             profile.Name,
		Emails:           models.JoinList(profile.Emails),
		Phones:           models.JoinList(profile.Phones),
		ExperienceYears:  profile.ExperienceYears,
		Skills:           models.JoinList(profile.Skills),
		RawText:          text,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := h.resumeRepo.Create(&resume); err != nil {
		h.cleanup(filename)
		resp.Error = fmt.Sprintf("failed to save resume record: %v", err)
		return resp
	}

	if err := h.unknownSkillRepo.Increment(profile.UnknownSkills); err != nil {
		h.logger.Warn("failed to record unknown skills", zap.Error(err))
	}

	resp.ID = resume.ID.String()
	resp.Filename = resume.Filename
	resp.Profile = &profile
	return resp
}

func (h *UploadHandler) cleanup(filename string) {
	if err := h.storageService.DeleteFile(filename); err != nil {
		h.logger.Warn("failed to remove stored file", zap.String("file", filename), zap.Error(err))
	}
}
