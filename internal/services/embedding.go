package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const DefaultEmbeddingCacheSize = 5000

// Embedding is a fixed-dimension vector for one text. Cached vectors are shared, do not mutate them.
type Embedding []float32

// EmbeddingBackend turns texts into vectors, one per input, in order.
type EmbeddingBackend interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// BackendLoader creates the backend. It runs at most once per EmbeddingService.
type BackendLoader func(ctx context.Context) (EmbeddingBackend, error)

type EmbeddingService interface {
	// Encode returns one vector per input in order; blank inputs yield nil.
	Encode(ctx context.Context, texts []string) ([]Embedding, error)
}

type EmbeddingOptions struct {
	CacheSize int
	// RequestsPerSecond throttles backend calls; zero disables throttling.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

type embeddingService struct {
	load    BackendLoader
	once    sync.Once
	backend EmbeddingBackend
	loadErr error

	cache   *lru.Cache[string, Embedding]
	group   singleflight.Group
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewEmbeddingService(load BackendLoader, opts EmbeddingOptions) (EmbeddingService, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultEmbeddingCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[string, Embedding](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &embeddingService{
		load:    load,
		cache:   cache,
		limiter: limiter,
		logger:  opts.Logger,
	}, nil
}

func (s *embeddingService) model(ctx context.Context) (EmbeddingBackend, error) {
	s.once.Do(func() {
		// The load outlives the first caller's cancellation.
		backend, err := s.load(context.WithoutCancel(ctx))
		if err != nil {
			s.loadErr = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
			s.logger.Error("embedding model failed to load", zap.Error(err))
			return
		}
		s.backend = backend
		s.logger.Info("embedding model loaded")
	})
	return s.backend, s.loadErr
}

// Encode implements EmbeddingService.
func (s *embeddingService) Encode(ctx context.Context, texts []string) ([]Embedding, error) {
	backend, err := s.model(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Embedding, len(texts))
	keys := make([]string, len(texts))

	var missKeys []string
	var missTexts []string
	pending := make(map[string]bool)

	for i, text := range texts {
		clean := strings.TrimSpace(text)
		if clean == "" {
			continue
		}

		key := hashText(clean)
		keys[i] = key
		if vec, ok := s.cache.Get(key); ok {
			out[i] = vec
			continue
		}
		if !pending[key] {
			pending[key] = true
			missKeys = append(missKeys, key)
			missTexts = append(missTexts, clean)
		}
	}

	if len(missTexts) > 0 {
		fresh, err := s.encodeMisses(ctx, backend, missKeys, missTexts)
		if err != nil {
			return nil, err
		}
		for i, key := range keys {
			if out[i] == nil && key != "" {
				out[i] = fresh[key]
			}
		}
	}

	return out, nil
}

// encodeMisses calls the backend once for all uncached texts. Identical concurrent
// batches share a single backend call.
func (s *embeddingService) encodeMisses(ctx context.Context, backend EmbeddingBackend, keys, texts []string) (map[string]Embedding, error) {
	v, err, _ := s.group.Do(strings.Join(keys, ","), func() (interface{}, error) {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("failed to wait for embedding rate limit: %w", err)
			}
		}

		vectors, err := backend.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedding backend returned %d vectors for %d texts", len(vectors), len(texts))
		}

		fresh := make(map[string]Embedding, len(keys))
		for i, key := range keys {
			vec := Embedding(vectors[i])
			s.cache.Add(key, vec)
			fresh[key] = vec
		}
		s.logger.Debug("embeddings generated", zap.Int("count", len(texts)))
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]Embedding), nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
