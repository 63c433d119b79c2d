package vectorindex

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/kailas-cloud/ragchat/internal/db"
	"github.com/kailas-cloud/ragchat/internal/domain"
)

const (
	fieldContent  = "content"
	fieldTitle    = "title"
	fieldSource   = "source"
	fieldCategory = "category"
	fieldVector   = "vector"
)

// returnFields are the hash fields a search hit needs; the vector is never read back.
var returnFields = []string{fieldContent, fieldTitle, fieldSource, fieldCategory}

// buildHashFields converts an IndexedVector into a flat map for HSET.
func buildHashFields(v *domain.IndexedVector) map[string]string {
	m := v.Metadata.Fields()
	m[fieldVector] = vectorToBytes(v.Embedding)
	return m
}

// parseEntry converts a search entry back into a SearchResult.
func parseEntry(entry db.SearchEntry, keyPrefix string) domain.SearchResult {
	return domain.SearchResult{
		ID:       strings.TrimPrefix(entry.Key, keyPrefix),
		Score:    entry.Score,
		Content:  entry.Fields[fieldContent],
		Title:    entry.Fields[fieldTitle],
		Source:   entry.Fields[fieldSource],
		Category: entry.Fields[fieldCategory],
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
