// Package pipeline assembles the screening services from configuration.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

// Pipeline holds the services shared by the API server and the CLI.
type Pipeline struct {
	Taxonomy   *models.SkillTaxonomy
	Embeddings services.EmbeddingService
	Extractor  services.DocumentExtractor
	Profiles   services.ProfileExtractor
	Skills     services.SkillMatcher
	Scoring    services.ScoringEngine
	Ranker     services.Ranker
}

// EmbeddingLoader picks the embedding backend named in the config.
func EmbeddingLoader(cfg config.EmbeddingConfig) (services.BackendLoader, error) {
	switch strings.ToLower(cfg.Backend) {
	case "gemini":
		return services.NewGeminiLoader(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "ollama", "":
		return services.NewOllamaLoader(cfg.OllamaURL, cfg.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}

// NewEmbeddingService builds the process-wide embedding provider.
func NewEmbeddingService(cfg config.EmbeddingConfig, log *zap.Logger) (services.EmbeddingService, error) {
	loader, err := EmbeddingLoader(cfg)
	if err != nil {
		return nil, err
	}
	return services.NewEmbeddingService(loader, services.EmbeddingOptions{
		CacheSize:         cfg.CacheSize,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log.Named("embeddings"),
	})
}

// New wires every component. The OCR stage is optional: missing binaries only disable it.
func New(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	taxonomy, err := config.LoadTaxonomy(cfg.Matching.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	skills := taxonomy.Flatten()
	log.Info("skill taxonomy loaded", zap.Int("categories", len(taxonomy.Categories)), zap.Int("skills", len(skills)))

	embeddings, err := NewEmbeddingService(cfg.Embedding, log)
	if err != nil {
		return nil, err
	}

	var ocr *services.OCRPipeline
	if cfg.OCR.Enabled {
		ocr, err = services.NewTesseractOCR(services.OCRConfig{
			TesseractCmd:  cfg.OCR.TesseractCmd,
			PdftoppmCmd:   cfg.OCR.PdftoppmCmd,
			DPI:           cfg.OCR.DPI,
			MinConfidence: cfg.OCR.MinConfidence,
		}, log.Named("ocr"))
		if err != nil {
			if !errors.Is(err, services.ErrOCRUnavailable) {
				return nil, err
			}
			log.Warn("ocr disabled", zap.Error(err))
		}
	}

	extractor := services.NewDocumentExtractor(services.DocumentExtractorConfig{
		OCREnabled:     cfg.OCR.Enabled,
		MinNativeChars: cfg.OCR.MinNativeChars,
	}, ocr, log.Named("extractor"))

	var index services.SkillIndex
	if strings.EqualFold(cfg.Matching.SkillIndex, "qdrant") {
		index, err = services.NewQdrantSkillIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, len(skills), log.Named("qdrant"))
		if err != nil {
			return nil, err
		}
	}

	matcher := services.NewSkillMatcher(taxonomy, embeddings, index, services.SkillMatcherConfig{
		Threshold:         cfg.Matching.SemanticThreshold,
		MinSentenceLength: cfg.Matching.MinSentenceLength,
	})
	profiles := services.NewProfileExtractor(taxonomy, services.NewProseRecognizer(), nil)
	scoring := services.NewScoringEngine(taxonomy)

	return &Pipeline{
		Taxonomy:   taxonomy,
		Embeddings: embeddings,
		Extractor:  extractor,
		Profiles:   profiles,
		Skills:     matcher,
		Scoring:    scoring,
		Ranker:     services.NewRanker(extractor, profiles, matcher, scoring, embeddings, log.Named("ranker")),
	}, nil
}
