package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// SkillIndex finds taxonomy skills that are semantically close to sentence vectors.
type SkillIndex interface {
	// Match returns every skill whose best cosine similarity against any of the
	// vectors meets threshold.
	Match(ctx context.Context, vectors []Embedding, threshold float64) ([]string, error)
}

type memorySkillIndex struct {
	embedder EmbeddingService
	skills   []string

	mu      sync.Mutex
	vectors []Embedding
}

// NewMemorySkillIndex embeds skills on first use and compares in process.
func NewMemorySkillIndex(embedder EmbeddingService, skills []string) SkillIndex {
	return &memorySkillIndex{embedder: embedder, skills: skills}
}

func (m *memorySkillIndex) skillVectors(ctx context.Context) ([]Embedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vectors != nil {
		return m.vectors, nil
	}

	vectors, err := m.embedder.Encode(ctx, m.skills)
	if err != nil {
		return nil, fmt.Errorf("failed to embed skills: %w", err)
	}
	m.vectors = vectors
	return vectors, nil
}

// Match implements SkillIndex.
func (m *memorySkillIndex) Match(ctx context.Context, vectors []Embedding, threshold float64) ([]string, error) {
	if len(vectors) == 0 || len(m.skills) == 0 {
		return nil, nil
	}

	skillVecs, err := m.skillVectors(ctx)
	if err != nil {
		return nil, err
	}

	var matched []string
	for i, skill := range m.skills {
		if skillVecs[i] == nil {
			continue
		}
		best := -1.0
		for _, vec := range vectors {
			if vec == nil {
				continue
			}
			if sim := CosineSimilarity(skillVecs[i], vec); sim > best {
				best = sim
			}
		}
		if best >= threshold {
			matched = append(matched, skill)
		}
	}
	return matched, nil
}

// QdrantSkillIndex stores one point per taxonomy skill.
type QdrantSkillIndex interface {
	SkillIndex
	InitCollection(ctx context.Context, vectorSize uint64) error
	UpsertSkills(ctx context.Context, skills []string, vectors []Embedding) error
}

type qdrantSkillIndex struct {
	client         *qdrant.Client
	collectionName string
	skillCount     int
	logger         *zap.Logger
}

// NewQdrantSkillIndex connects to Qdrant over gRPC. skillCount bounds every query.
func NewQdrantSkillIndex(urlStr, apiKey, collectionName string, skillCount int, logger *zap.Logger) (QdrantSkillIndex, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &qdrantSkillIndex{
		client:         client,
		collectionName: collectionName,
		skillCount:     skillCount,
		logger:         logger,
	}, nil
}

// InitCollection implements QdrantSkillIndex.
func (q *qdrantSkillIndex) InitCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		q.logger.Info("skill collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Info("skill collection created", zap.String("collection", q.collectionName))
	return nil
}

// UpsertSkills implements QdrantSkillIndex.
func (q *qdrantSkillIndex) UpsertSkills(ctx context.Context, skills []string, vectors []Embedding) error {
	if len(skills) != len(vectors) {
		return fmt.Errorf("got %d vectors for %d skills", len(vectors), len(skills))
	}

	points := make([]*qdrant.PointStruct, 0, len(skills))
	for i, skill := range skills {
		if vectors[i] == nil {
			continue
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(skillPointID(skill)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"skill": skill,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert skills: %w", err)
	}
	return nil
}

// Match implements SkillIndex.
func (q *qdrantSkillIndex) Match(ctx context.Context, vectors []Embedding, threshold float64) ([]string, error) {
	if q.skillCount <= 0 {
		return nil, nil
	}

	seen := make(map[string]bool)
	var matched []string
	for _, vec := range vectors {
		if vec == nil {
			continue
		}

		points, err := q.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: q.collectionName,
			Query:          qdrant.NewQuery(vec...),
			Limit:          qdrant.PtrOf(uint64(q.skillCount)),
			ScoreThreshold: qdrant.PtrOf(float32(threshold)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search skills: %w", err)
		}

		for _, point := range points {
			value, ok := point.Payload["skill"]
			if !ok {
				continue
			}
			skill := value.GetStringValue()
			if skill == "" || seen[strings.ToLower(skill)] {
				continue
			}
			seen[strings.ToLower(skill)] = true
			matched = append(matched, skill)
		}
	}
	return matched, nil
}

func skillPointID(skill string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(skill))).String()
}
