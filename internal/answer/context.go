package answer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/ragchat/internal/domain"
)

// Sentinel is the whole context when retrieval found nothing.
const Sentinel = "No relevant information found."

const noContextAnswer = "I don't have specific information about '%s' in my knowledge base. " +
	"However, I can help you with questions about the topics I do have information about. " +
	"Try asking about machine learning, Python programming, vector databases, Nepal, or government services."

// BuildContext renders retrieved results as numbered blocks with title and source lines.
func BuildContext(results []domain.SearchResult) string {
	if len(results) == 0 {
		return Sentinel
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("Document %d:\nTitle: %s\nSource: %s\n%s\n", i+1, r.Title, r.Source, r.Content)
	}
	return strings.Join(parts, "\n")
}

var blockHeader = regexp.MustCompile(`^Document \d+:$`)

// contentLines returns the context lines without block headers: the
// "Document i:" line and the Title/Source lines right after it.
func contentLines(context string) []string {
	lines := strings.Split(context, "\n")
	out := make([]string, 0, len(lines))
	meta := 0
	for _, line := range lines {
		if blockHeader.MatchString(line) {
			meta = 2
			continue
		}
		if meta > 0 && (strings.HasPrefix(line, "Title:") || strings.HasPrefix(line, "Source:")) {
			meta--
			continue
		}
		meta = 0
		out = append(out, line)
	}
	return out
}

func bullets(header string, items []string) string {
	var b strings.Builder
	b.WriteString(header)
	for _, it := range items {
		b.WriteString("• ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return b.String()
}
