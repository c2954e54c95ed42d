package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxonomyKeepsFileOrder(t *testing.T) {
	tax, err := ParseTaxonomy([]byte(`
frontend:
  - React
  - Vue
backend:
  - Go
  - "Node.js"
`))
	require.NoError(t, err)

	require.Len(t, tax.Categories, 2)
	assert.Equal(t, "frontend", tax.Categories[0].Name)
	assert.Equal(t, "backend", tax.Categories[1].Name)
	assert.Equal(t, []string{"React", "Vue", "Go", "Node.js"}, tax.Flatten())
}

func TestParseTaxonomyAcceptsJSON(t *testing.T) {
	tax, err := ParseTaxonomy([]byte(`{"data": ["SQL", "Pandas"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"SQL", "Pandas"}, tax.Flatten())
}

func TestParseTaxonomyErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty", doc: ""},
		{name: "list root", doc: "- Go\n- Python\n"},
		{name: "scalar category", doc: "languages: Go\n"},
		{name: "non string skill", doc: "languages:\n  - 42\n"},
		{name: "nested skill", doc: "languages:\n  - [Go]\n"},
		{name: "malformed", doc: "languages: [Go\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaxonomy([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadTaxonomy(t *testing.T) {
	tax, err := LoadTaxonomy(filepath.Join("..", "..", "config", "skills.yaml"))
	require.NoError(t, err)

	assert.True(t, tax.Contains("python"))
	assert.NotEmpty(t, tax.Categories)

	_, err = LoadTaxonomy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- nope"), 0o644))
	_, err = LoadTaxonomy(bad)
	assert.ErrorContains(t, err, "bad.yaml")
}
