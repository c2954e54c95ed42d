package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms/ollama"
	"google.golang.org/genai"
)

const (
	geminiBatchLimit = 100
	// Truncate text if too long (max ~2048 tokens for the embedding model)
	maxEmbeddingChars = 8000
)

type geminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiLoader returns a loader for the Gemini embedding API.
func NewGeminiLoader(apiKey, model string) BackendLoader {
	return func(ctx context.Context) (EmbeddingBackend, error) {
		apiKey = strings.TrimSpace(apiKey)
		if apiKey == "" {
			return nil, errors.New("gemini api key is required")
		}
		if model == "" {
			model = "text-embedding-004"
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}

		return &geminiEmbedder{client: client, model: model}, nil
	}
}

// Embed implements EmbeddingBackend.
func (g *geminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += geminiBatchLimit {
		end := min(start+geminiBatchLimit, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(truncateRunes(text, maxEmbeddingChars), genai.RoleUser))
		}

		result, err := g.client.Models.EmbedContent(ctx, g.model, contents, nil)
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if result == nil || len(result.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini embed: unexpected result size")
		}

		for _, emb := range result.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}

	return vectors, nil
}

type ollamaEmbedder struct {
	llm *ollama.LLM
}

// NewOllamaLoader returns a loader for a local Ollama embedding model such as all-minilm.
// Loading probes the server so a missing model surfaces as ErrModelUnavailable.
func NewOllamaLoader(baseURL, model string) BackendLoader {
	return func(ctx context.Context) (EmbeddingBackend, error) {
		if model == "" {
			model = "all-minilm"
		}
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}

		llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(baseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama: %w", err)
		}

		if _, err := llm.CreateEmbedding(ctx, []string{"ping"}); err != nil {
			return nil, fmt.Errorf("ollama model %s not reachable: %w", model, err)
		}

		return &ollamaEmbedder{llm: llm}, nil
	}
}

// Embed implements EmbeddingBackend.
func (o *ollamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i] = truncateRunes(text, maxEmbeddingChars)
	}

	vectors, err := o.llm.CreateEmbedding(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	return vectors, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
