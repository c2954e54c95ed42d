package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillTaxonomyFlatten(t *testing.T) {
	tax := &SkillTaxonomy{Categories: []SkillCategory{
		{Name: "languages", Skills: []string{"Python", " Go ", ""}},
		{Name: "data", Skills: []string{"SQL", "python"}},
	}}

	assert.Equal(t, []string{"Python", "Go", "SQL"}, tax.Flatten())

	var empty *SkillTaxonomy
	assert.Nil(t, empty.Flatten())
}

func TestSkillTaxonomyLookup(t *testing.T) {
	tax := &SkillTaxonomy{Categories: []SkillCategory{
		{Name: "languages", Skills: []string{"Python"}},
		{Name: "data", Skills: []string{"SQL", "Python"}},
	}}

	cat, ok := tax.CategoryOf("python")
	assert.True(t, ok)
	assert.Equal(t, "languages", cat)

	assert.True(t, tax.Contains(" sql "))
	assert.False(t, tax.Contains("Rust"))
}

func TestNewSkillTaxonomy(t *testing.T) {
	tax := NewSkillTaxonomy(map[string][]string{"cloud": {"AWS", "Docker"}})

	assert.Len(t, tax.Categories, 1)
	assert.ElementsMatch(t, []string{"AWS", "Docker"}, tax.Flatten())
}

func TestSplitListTrimsBlanks(t *testing.T) {
	joined := JoinList([]string{"Python", "SQL"})
	assert.Equal(t, "Python, SQL", joined)
	assert.Equal(t, []string{"Python", "SQL"}, SplitList(joined))
	assert.Empty(t, SplitList(""))
	assert.Equal(t, []string{"Go", "AWS"}, SplitList(" Go ,, AWS ,"))
}
