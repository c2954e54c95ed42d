package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"alfredoptarigan/resume-screener/internal/models"
)

const fakeDims = 256

// bagOfWordsBackend hashes lowercase tokens into a fixed vector. Identical texts
// get identical vectors and shared words raise cosine similarity.
type bagOfWordsBackend struct {
	mu    sync.Mutex
	calls int
	texts []string
}

func (b *bagOfWordsBackend) Embed(_ context.Context, texts []string) ([][]float32, error) {
	b.mu.Lock()
	b.calls++
	b.texts = append(b.texts, texts...)
	b.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = bagOfWords(text)
	}
	return out, nil
}

func (b *bagOfWordsBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func bagOfWords(text string) []float32 {
	vec := make([]float32, fakeDims)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%fakeDims]++
	}
	return vec
}

func newFakeEmbeddings(backend EmbeddingBackend) EmbeddingService {
	svc, err := NewEmbeddingService(func(context.Context) (EmbeddingBackend, error) {
		return backend, nil
	}, EmbeddingOptions{})
	if err != nil {
		panic(err)
	}
	return svc
}

func testTaxonomy() *models.SkillTaxonomy {
	return &models.SkillTaxonomy{Categories: []models.SkillCategory{
		{Name: "languages", Skills: []string{"Python", "Java", "JavaScript", "SQL", "Go", "C++"}},
		{Name: "backend", Skills: []string{"Django", "REST API", "Node.js", "Spring Boot"}},
		{Name: "cloud", Skills: []string{"Docker", "Kubernetes", "AWS"}},
	}}
}

func floatPtr(v float64) *float64 {
	return &v
}
