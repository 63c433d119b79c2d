// Package answer turns a query and its retrieved context into a templated,
// extractive answer. Nothing is generated: every answer quotes the context
// or is a fixed template.
package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/ragchat/internal/bilingual"
	"github.com/kailas-cloud/ragchat/internal/fuzzy"
)

// Extractor routes a query to a category extractor. Safe for concurrent use.
type Extractor struct {
	scorer fuzzy.Scorer
}

// New creates an extractor. A nil scorer uses fuzzy.Matcher.
func New(scorer fuzzy.Scorer) *Extractor {
	if scorer == nil {
		scorer = fuzzy.Matcher{}
	}
	return &Extractor{scorer: scorer}
}

// Extract returns the answer text only.
func (e *Extractor) Extract(query, context string) string {
	text, _ := e.Answer(query, context)
	return text
}

// Answer returns a non-empty answer and the route that produced it.
// The query should be the user's original query, not the preprocessed one.
func (e *Extractor) Answer(query, context string) (string, Route) {
	if strings.TrimSpace(context) == "" || strings.Contains(context, Sentinel) {
		return fmt.Sprintf(noContextAnswer, query), RouteEmpty
	}

	query = bilingual.Normalize(query)
	lines := contentLines(bilingual.Normalize(context))

	route := Classify(query)
	switch route {
	case RouteFee:
		return extractFee(lines), route
	case RouteDocument:
		return extractDocuments(lines), route
	case RouteProcess:
		return extractProcess(lines), route
	case RouteTime:
		return extractTime(lines), route
	case RouteService:
		return extractService(lines), route
	case RouteLocation:
		return extractLocation(lines), route
	case RouteNepal:
		return extractNepal(lines), route
	default:
		return e.general(query, lines), RouteGeneral
	}
}
