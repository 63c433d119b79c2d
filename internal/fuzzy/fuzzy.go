// Package fuzzy implements difflib-based string similarity scores on a 0-100 scale.
package fuzzy

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"
)

// Scorer computes the partial best-alignment ratio of two strings.
type Scorer interface {
	PartialRatio(a, b string) int
}

// Matcher is the default Scorer.
type Matcher struct{}

// PartialRatio implements Scorer.
func (Matcher) PartialRatio(a, b string) int { return PartialRatio(a, b) }

// Ratio is the SequenceMatcher similarity of a and b scaled to 0-100.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(runes(a), runes(b))
	return roundHalfEven(100 * m.Ratio())
}

// PartialRatio scores the best-aligned window of the longer string against
// the shorter one. Each matching block anchors a window of the shorter
// string's length; a window scoring above 0.995 short-circuits to 100.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := runes(a), runes(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	m := difflib.NewMatcher(shorter, longer)
	best := 0.0
	for _, block := range m.GetMatchingBlocks() {
		start := max(block.B-block.A, 0)
		end := min(start+len(shorter), len(longer))

		r := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if r > 0.995 {
			return 100
		}
		best = max(best, r)
	}
	return roundHalfEven(100 * best)
}

// runes splits s into one element per code point for difflib.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func roundHalfEven(x float64) int {
	return int(math.RoundToEven(x))
}
