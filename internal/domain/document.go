package domain

import (
	"fmt"
	"strings"
)

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 1 << 20

// Document is a plain-text record handed over by an ingestion collaborator.
// Content is the unit of embedding; everything else is optional metadata.
type Document struct {
	ID       string
	Title    string
	Content  string
	Source   string
	Category string
	Extra    map[string]string
}

// Validate checks the required fields.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return fmt.Errorf("content is required: %w", ErrInvalidDocument)
	}
	if len(d.Content) > MaxContentSize {
		return fmt.Errorf("content too large (max %d bytes): %w", MaxContentSize, ErrInvalidDocument)
	}
	if strings.ContainsAny(d.Source, "\n\r") || strings.ContainsAny(d.Category, "\n\r") {
		return fmt.Errorf("source and category must be single-line: %w", ErrInvalidDocument)
	}
	return nil
}

// Chunk is a bounded piece of a Document. It inherits source and category from its parent.
type Chunk struct {
	ID       string
	Ordinal  int
	Title    string
	Content  string
	Source   string
	Category string
}

// PartTitle returns the title of the n-th (1-based) part of a document.
func PartTitle(title string, n int) string {
	return fmt.Sprintf("%s - Part %d", title, n)
}
