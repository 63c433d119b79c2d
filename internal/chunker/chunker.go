// Package chunker splits document text into bounded, optionally overlapping pieces.
package chunker

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kailas-cloud/ragchat/internal/domain"
)

// Mode selects how chunk size is measured.
type Mode string

const (
	// ModeWords accumulates whole paragraphs up to MaxSize words.
	ModeWords Mode = "words"
	// ModeWindow slides a MaxSize-word window with step MaxSize-Overlap.
	ModeWindow Mode = "window"
	// ModeBytes accumulates lines up to MaxSize UTF-8 bytes.
	ModeBytes Mode = "bytes"
)

// Defaults.
const (
	DefaultMaxWords = 500
	DefaultOverlap  = 100
)

// ParseMode converts a config string to a Mode. Empty means ModeWords.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeWords:
		return ModeWords, nil
	case ModeWindow:
		return ModeWindow, nil
	case ModeBytes:
		return ModeBytes, nil
	default:
		return "", fmt.Errorf("unknown chunking mode %q", s)
	}
}

// chunkNamespace scopes deterministic chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("ragchat.chunk"))

// Chunker is immutable after New and safe for concurrent use.
type Chunker struct {
	mode       Mode
	maxSize    int
	overlap    int
	contentCap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithContentCap re-splits any chunk longer than runes at line breaks, then
// at spaces, so stored content is never truncated. A single word longer than
// runes stays whole.
func WithContentCap(runes int) Option {
	return func(c *Chunker) { c.contentCap = runes }
}

// New validates the settings and creates a Chunker.
func New(mode Mode, maxSize, overlap int, opts ...Option) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("max size must be positive, got %d", maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
	}
	switch mode {
	case ModeBytes:
	case ModeWords, ModeWindow:
		if overlap >= maxSize {
			return nil, fmt.Errorf("%s overlap %d must be smaller than max size %d", mode, overlap, maxSize)
		}
	default:
		return nil, fmt.Errorf("unknown chunking mode %q", mode)
	}
	c := &Chunker{mode: mode, maxSize: maxSize, overlap: overlap}
	for _, opt := range opts {
		opt(c)
	}
	if c.contentCap < 0 {
		return nil, fmt.Errorf("content cap must not be negative, got %d", c.contentCap)
	}
	return c, nil
}

// Mode returns the configured mode.
func (c *Chunker) Mode() Mode { return c.mode }

// Split returns the ordered chunk strings of text. It never returns an empty chunk.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	switch c.mode {
	case ModeWindow:
		chunks = splitWindow(text, c.maxSize, c.overlap)
	case ModeBytes:
		chunks = splitBytes(text, c.maxSize)
	default:
		chunks = splitParagraphs(paragraphs(text), c.maxSize, c.overlap)
	}
	if c.contentCap > 0 {
		chunks = fitRunes(chunks, c.contentCap)
	}
	return chunks
}

// Chunks splits a document and stamps every piece with title, metadata and ID.
// A document that fits in one chunk keeps its title; otherwise parts are numbered from 1.
func (c *Chunker) Chunks(doc domain.Document) []domain.Chunk {
	pieces := c.Split(doc.Content)
	out := make([]domain.Chunk, len(pieces))
	for i, p := range pieces {
		title := doc.Title
		if len(pieces) > 1 {
			title = domain.PartTitle(doc.Title, i+1)
		}
		out[i] = domain.Chunk{
			ID:       chunkID(doc, i, p),
			Ordinal:  i,
			Title:    title,
			Content:  p,
			Source:   doc.Source,
			Category: doc.Category,
		}
	}
	return out
}

// chunkID is stable across runs: re-ingesting the same document overwrites in place.
func chunkID(doc domain.Document, ordinal int, content string) string {
	var name string
	if doc.ID != "" {
		name = doc.ID + "\x00" + strconv.Itoa(ordinal)
	} else {
		name = strings.Join([]string{doc.Source, doc.Title, strconv.Itoa(ordinal), content}, "\x00")
	}
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitParagraphs accumulates paragraphs until the next one would push the
// chunk over maxWords. Paragraphs inside a chunk stay on their own lines.
// After a flush the last overlap words are carried into the next chunk, or
// the whole chunk when overlap >= its length, so a chunk holds at most
// maxWords+overlap words. A paragraph longer than maxWords gets no carry and
// becomes its own oversized chunk.
func splitParagraphs(paras []string, maxWords, overlap int) []string {
	var chunks []string
	var current [][]string
	count := 0

	for _, para := range paras {
		words := strings.Fields(para)
		if count+len(words) > maxWords && count > 0 {
			chunks = append(chunks, joinLines(current))
			keep := min(overlap, count)
			if len(words) > maxWords {
				keep = 0
			}
			if keep > 0 {
				current, count = tailWords(current, keep), keep
			} else {
				current, count = nil, 0
			}
		}
		current = append(current, words)
		count += len(words)
	}
	if count > 0 {
		chunks = append(chunks, joinLines(current))
	}
	return chunks
}

// tailWords returns the last n words of lines, keeping their line breaks.
func tailWords(lines [][]string, n int) [][]string {
	var out [][]string
	for i := len(lines) - 1; i >= 0 && n > 0; i-- {
		line := lines[i]
		if len(line) > n {
			line = line[len(line)-n:]
		}
		out = append([][]string{slices.Clone(line)}, out...)
		n -= len(line)
	}
	return out
}

func joinLines(lines [][]string) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strings.Join(l, " ")
	}
	return strings.Join(parts, "\n")
}

func splitWindow(text string, size, overlap int) []string {
	words := strings.Fields(text)
	step := size - overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := min(start+size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// splitBytes joins lines with "\n" while the chunk stays within maxBytes.
// A single line above the limit passes through unsplit.
func splitBytes(text string, maxBytes int) []string {
	var chunks []string
	var b strings.Builder

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			chunks = append(chunks, s)
		}
		b.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if b.Len() > 0 && b.Len()+1+len(line) > maxBytes {
			flush()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	flush()
	return chunks
}

// fitRunes splits chunks longer than limit runes, first at line breaks and
// then at spaces.
func fitRunes(chunks []string, limit int) []string {
	out := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if utf8.RuneCountInString(ch) <= limit {
			out = append(out, ch)
			continue
		}
		for _, part := range pack(strings.Split(ch, "\n"), "\n", limit) {
			if utf8.RuneCountInString(part) <= limit {
				out = append(out, part)
				continue
			}
			out = append(out, pack(strings.Fields(part), " ", limit)...)
		}
	}
	return out
}

// pack joins consecutive units with a one-rune sep while the result stays
// within limit runes. A unit above limit is returned on its own.
func pack(units []string, sep string, limit int) []string {
	var out []string
	var b strings.Builder
	size := 0
	for _, u := range units {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		n := utf8.RuneCountInString(u)
		if size > 0 && size+1+n > limit {
			out = append(out, b.String())
			b.Reset()
			size = 0
		}
		if size > 0 {
			b.WriteString(sep)
			size++
		}
		b.WriteString(u)
		size += n
	}
	if size > 0 {
		out = append(out, b.String())
	}
	return out
}
