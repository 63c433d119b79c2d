// Package knowledge loads seed documents for the knowledge base.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/ragchat/internal/domain"
)

//go:embed sample.yaml
var sampleYAML []byte

type yamlDocument struct {
	ID       string            `yaml:"id"`
	Title    string            `yaml:"title"`
	Content  string            `yaml:"content"`
	Source   string            `yaml:"source"`
	Category string            `yaml:"category"`
	Extra    map[string]string `yaml:"extra"`
}

// Load reads a YAML list of documents from path.
func Load(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	docs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// Parse decodes and validates a YAML list of documents.
func Parse(data []byte) ([]domain.Document, error) {
	var raw []yamlDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse documents: %w", err)
	}
	docs := make([]domain.Document, len(raw))
	for i, r := range raw {
		docs[i] = domain.Document{
			ID:       r.ID,
			Title:    r.Title,
			Content:  r.Content,
			Source:   r.Source,
			Category: r.Category,
			Extra:    r.Extra,
		}
		if err := docs[i].Validate(); err != nil {
			return nil, fmt.Errorf("document %d (%q): %w", i, r.Title, err)
		}
	}
	return docs, nil
}

// SampleDocuments returns the built-in sample knowledge base.
func SampleDocuments() []domain.Document {
	docs, err := Parse(sampleYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded sample documents: %v", err))
	}
	return docs
}
