// Package bilingual adds English keyword hints to Nepali queries and detects Devanagari text.
package bilingual

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Hint maps a Nepali term to English keywords for an English-centric embedder.
type Hint struct {
	Term    string
	English string
}

// Hints is ordered; Preprocess appends hints in this order.
var Hints = []Hint{
	{"कहाँ", "where location"},
	{"कहिले", "when time"},
	{"कति", "how much amount"},
	{"कसरी", "how process"},
	{"के", "what"},
	{"किन", "why"},
	{"कसले", "who"},
	{"नेपाल", "nepal"},
	{"काठमाण्डौ", "kathmandu"},
	{"सेवा", "service"},
	{"कागजात", "document"},
	{"शुल्क", "fee cost"},
	{"समय", "time"},
	{"प्रक्रिया", "process"},
}

// Preprocess returns the query followed by the English hint of every Nepali
// term it contains. The original query is always a prefix of the result.
// Matching is by substring, so "नेपालको" yields the "नेपाल" hint; hints are
// not deduplicated.
func Preprocess(query string) string {
	query = norm.NFC.String(query)
	lower := strings.ToLower(query)

	var b strings.Builder
	b.WriteString(query)
	for _, h := range Hints {
		if strings.Contains(lower, h.Term) {
			b.WriteByte(' ')
			b.WriteString(h.English)
		}
	}
	return b.String()
}

// ContainsDevanagari reports whether s has a Devanagari independent vowel or consonant.
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if isDevanagariLetter(r) {
			return true
		}
	}
	return false
}

func isDevanagariLetter(r rune) bool {
	return (r >= 0x0904 && r <= 0x0939) || (r >= 0x0958 && r <= 0x095F)
}

// Normalize NFC-normalises s so composed and decomposed Devanagari compare equal.
func Normalize(s string) string {
	return norm.NFC.String(s)
}
