package models

import "strings"

// SkillCategory is one named group of canonical skills.
type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// SkillTaxonomy is the curated skill vocabulary. Treat as read-only once loaded.
type SkillTaxonomy struct {
	Categories []SkillCategory `json:"categories"`
}

// NewSkillTaxonomy builds a taxonomy from a category map. Map iteration order is
// not stable, so callers that care about provenance should build Categories directly.
func NewSkillTaxonomy(categories map[string][]string) *SkillTaxonomy {
	t := &SkillTaxonomy{}
	for name, skills := range categories {
		t.Categories = append(t.Categories, SkillCategory{Name: name, Skills: skills})
	}
	return t
}

// Flatten returns every skill once, compared case-insensitively, in taxonomy order.
func (t *SkillTaxonomy) Flatten() []string {
	if t == nil {
		return nil
	}

	seen := make(map[string]bool)
	var flat []string
	for _, cat := range t.Categories {
		for _, skill := range cat.Skills {
			skill = strings.TrimSpace(skill)
			key := strings.ToLower(skill)
			if skill == "" || seen[key] {
				continue
			}
			seen[key] = true
			flat = append(flat, skill)
		}
	}
	return flat
}

// Contains reports whether skill is in the taxonomy, ignoring case.
func (t *SkillTaxonomy) Contains(skill string) bool {
	_, ok := t.CategoryOf(skill)
	return ok
}

// CategoryOf returns the first category listing skill.
func (t *SkillTaxonomy) CategoryOf(skill string) (string, bool) {
	if t == nil {
		return "", false
	}

	key := strings.ToLower(strings.TrimSpace(skill))
	for _, cat := range t.Categories {
		for _, s := range cat.Skills {
			if strings.ToLower(strings.TrimSpace(s)) == key {
				return cat.Name, true
			}
		}
	}
	return "", false
}
