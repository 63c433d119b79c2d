// Package localembed is an offline embedding backend based on signed feature
// hashing. It needs no network and no model files, so the core runs in tests
// and on a laptop with the same interface as a remote provider.
package localembed

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/ragchat/internal/domain"
)

// ModelName labels local vectors in metrics and cache keys.
const ModelName = "feature-hash"

// Feature weights.
const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
	trigramWeight = 0.3
)

// Embedder hashes word unigrams, word bigrams and per-word character
// trigrams into a fixed number of dimensions.
type Embedder struct {
	dim int
}

// New creates a local embedder producing dim-dimensional vectors.
func New(dim int) (*Embedder, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dim)
	}
	return &Embedder{dim: dim}, nil
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int { return e.dim }

// Embed implements domain.Embedder. Text without any word yields the zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("local embed: %w", err)
	}
	vec, n := e.vectorize(text)
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: n, TotalTokens: n}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("local embed [%d]: %w", i, err)
		}
		vec, n := e.vectorize(text)
		out.Embeddings[i] = vec
		out.PromptTokens += n
		out.TotalTokens += n
	}
	return out, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(_ context.Context) error { return nil }

func (e *Embedder) vectorize(text string) ([]float32, int) {
	acc := make([]float64, e.dim)
	words := Tokenize(text)

	for i, w := range words {
		e.add(acc, "w:"+w, unigramWeight)
		if i > 0 {
			e.add(acc, "b:"+words[i-1]+" "+w, bigramWeight)
		}
		runes := []rune("<" + w + ">")
		for j := 0; j+3 <= len(runes); j++ {
			e.add(acc, "c:"+string(runes[j:j+3]), trigramWeight)
		}
	}

	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	vec := make([]float32, e.dim)
	if sum == 0 {
		return vec, len(words)
	}
	norm := math.Sqrt(sum)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, len(words)
}

// add hashes a feature into one bucket; the top bit picks the sign so
// collisions cancel out on average.
func (e *Embedder) add(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	idx := h % uint64(e.dim)
	if h>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}

// Tokenize NFC-normalises and lower-cases text, then splits it into words.
// Combining marks stay inside words so Devanagari vowel signs are kept.
func Tokenize(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}
