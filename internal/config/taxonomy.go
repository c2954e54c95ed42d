package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/resume-screener/internal/models"
)

// LoadTaxonomy reads a category -> skills mapping from a YAML or JSON file.
func LoadTaxonomy(path string) (*models.SkillTaxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}

	taxonomy, err := ParseTaxonomy(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy %s: %w", path, err)
	}
	return taxonomy, nil
}

// ParseTaxonomy decodes a taxonomy document, keeping categories in file order.
func ParseTaxonomy(data []byte) (*models.SkillTaxonomy, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("taxonomy is empty")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("taxonomy must map category names to skill lists")
	}

	taxonomy := &models.SkillTaxonomy{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("category %q (line %d): expected a list of skills", key.Value, key.Line)
		}

		category := models.SkillCategory{Name: key.Value}
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
				return nil, fmt.Errorf("category %q (line %d): skills must be strings", key.Value, item.Line)
			}
			category.Skills = append(category.Skills, item.Value)
		}
		taxonomy.Categories = append(taxonomy.Categories, category)
	}

	return taxonomy, nil
}
