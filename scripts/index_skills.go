package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/pipeline"
	"alfredoptarigan/resume-screener/internal/services"
)

const indexBatchSize = 64

// Embeds every taxonomy skill and upserts it into the Qdrant skill collection
// used when SKILL_INDEX=qdrant.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	taxonomy, err := config.LoadTaxonomy(cfg.Matching.TaxonomyPath)
	if err != nil {
		log.Fatal("failed to load taxonomy", zap.Error(err))
	}
	skills := taxonomy.Flatten()
	if len(skills) == 0 {
		log.Fatal("taxonomy has no skills", zap.String("path", cfg.Matching.TaxonomyPath))
	}

	embeddings, err := pipeline.NewEmbeddingService(cfg.Embedding, log)
	if err != nil {
		log.Fatal("failed to initialize embeddings", zap.Error(err))
	}

	index, err := services.NewQdrantSkillIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, len(skills), log)
	if err != nil {
		log.Fatal("failed to initialize qdrant", zap.Error(err))
	}

	ctx := context.Background()

	// Probe once to learn the vector size.
	probe, err := embeddings.Encode(ctx, skills[:1])
	if err != nil {
		log.Fatal("failed to embed skills", zap.Error(err))
	}
	if err := index.InitCollection(ctx, uint64(len(probe[0]))); err != nil {
		log.Fatal("failed to initialize collection", zap.Error(err))
	}

	indexed := 0
	for start := 0; start < len(skills); start += indexBatchSize {
		end := min(start+indexBatchSize, len(skills))
		batch := skills[start:end]

		vectors, err := embeddings.Encode(ctx, batch)
		if err != nil {
			log.Fatal("failed to embed skills", zap.Int("offset", start), zap.Error(err))
		}
		if err := index.UpsertSkills(ctx, batch, vectors); err != nil {
			log.Fatal("failed to store skills", zap.Int("offset", start), zap.Error(err))
		}

		indexed += len(batch)
		log.Info("skills indexed", zap.Int("done", indexed), zap.Int("total", len(skills)))
	}

	log.Info("skill index ready",
		zap.String("collection", cfg.Qdrant.Collection),
		zap.Int("skills", indexed),
	)
}
