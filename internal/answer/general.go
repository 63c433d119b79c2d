package answer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Row-level matching thresholds on the 0-100 partial ratio scale.
const (
	nameMatchThreshold  = 80
	tokenMatchThreshold = 85
	maxRecords          = 10
	maxFallbackLines    = 5
	maxApplicantHints   = 5
)

const (
	matchingRecordsHeader = "Here are the matching records:\n\n"
	foundHeader           = "Here's what I found:\n\n"
	knowledgeFoundHeader  = "Based on my knowledge base, here's what I found:\n\n"
	rephraseAnswer        = "I found some relevant information, but I couldn't pinpoint an answer. " +
		"Please try rephrasing your question."
)

// fieldQuery recognises "<field> <value>" lookups such as "rank 3" or "form no. A-101".
type fieldQuery struct {
	query *regexp.Regexp
	field string
	row   *regexp.Regexp
}

func newFieldQuery(query, field string) fieldQuery {
	return fieldQuery{query: regexp.MustCompile(query), field: field, row: fieldPattern(field)}
}

var fieldQueries = []fieldQuery{
	newFieldQuery(`(?i)\brank\s+(\d+)`, "Rank"),
	newFieldQuery(`(?i)\bform\s+no\.?\s*([\w-]+)`, "Form No."),
	newFieldQuery(`(?i)\bgender\s+(\p{L}+)`, "Gender"),
	newFieldQuery(`(?i)\bdistrict\s+(\p{L}+)`, "District"),
	newFieldQuery(`(?i)\bsno\.?\s*(\d+)`, "SNo."),
}

// fillerWords are never field values: "gender of Sita" is not a gender lookup.
var fillerWords = map[string]bool{"of": true, "for": true, "is": true, "the": true}

const properName = `(\p{Lu}[\p{L}'’.-]*(?:\s+\p{Lu}[\p{L}'’.-]*)*)`

var (
	columnForPerson = []*regexp.Regexp{
		regexp.MustCompile(`^\s*(?i:what\s+is|what's|what’s)\s+(?i:the\s+)?((?:[\p{L}'’.]+\s+){0,2}[\p{L}'’.]+)\s+(?i:of|for)\s+` + properName),
		regexp.MustCompile(`^\s*(?i:the\s+)?((?:[\p{L}'’.]+\s+){0,2}[\p{L}'’.]+)\s+(?i:of|for)\s+` + properName),
	}
	nameAfterVerb  = regexp.MustCompile(`\b(?i:is|of|for)\s+` + properName)
	applicantField = regexp.MustCompile(`(?i)applicant['’]?s?\s+name\s*:\s*([^|]+)`)
)

// fieldPattern matches "Field: value" inside a pipe-delimited row.
func fieldPattern(field string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(field) + `\s*:\s*([^|]+)`)
}

type applicantRow struct {
	line string
	name string
}

// general answers from tabular rows when it can, then falls back to plain lines.
func (e *Extractor) general(query string, lines []string) string {
	rows := pipeRows(lines)
	applicants := applicantRows(rows)
	structured := false

	if field, value, ok := parseFieldQuery(query); ok {
		structured = true
		if matched := rowsWithField(rows, field, value); len(matched) > 0 {
			return bullets(matchingRecordsHeader, limit(matched, maxRecords))
		}
	}

	if column, name, ok := parseColumnQuery(query); ok {
		structured = structured || len(applicants) > 0
		if row, ok := e.bestRow(name, applicants); ok {
			return columnAnswer(row, column)
		}
	}

	if name, ok := parseName(query); ok {
		structured = structured || len(applicants) > 0
		if row, ok := e.bestRow(name, applicants); ok {
			return "Here is the record I found:\n\n• " + row.line + "\n"
		}
	} else if matched := e.rowsByToken(query, applicants); len(matched) > 0 {
		return bullets(matchingRecordsHeader, limit(matched, maxRecords))
	}

	if found := rowsWithAllWords(query, rows); len(found) > 0 {
		return bullets(foundHeader, found)
	}
	if found := charterLines(lines); len(found) > 0 {
		return bullets(knowledgeFoundHeader, found)
	}
	if !structured {
		if found := substantialLines(lines); len(found) > 0 {
			return bullets(knowledgeFoundHeader, found)
		}
	}
	return absoluteFallback(query, lines)
}

func parseFieldQuery(query string) (fieldQuery, string, bool) {
	for _, fq := range fieldQueries {
		m := fq.query.FindStringSubmatch(query)
		if m == nil || fillerWords[strings.ToLower(m[1])] {
			continue
		}
		return fq, m[1], true
	}
	return fieldQuery{}, "", false
}

func parseColumnQuery(query string) (column, name string, ok bool) {
	for _, re := range columnForPerson {
		if m := re.FindStringSubmatch(query); m != nil {
			return strings.ToLower(strings.TrimSpace(m[1])), strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

func parseName(query string) (string, bool) {
	m := nameAfterVerb.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func pipeRows(lines []string) []string {
	var rows []string
	for _, line := range lines {
		if strings.Contains(line, "|") {
			rows = append(rows, strings.TrimSpace(line))
		}
	}
	return rows
}

func applicantRows(rows []string) []applicantRow {
	var out []applicantRow
	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row), "applicant") {
			continue
		}
		if m := applicantField.FindStringSubmatch(row); m != nil {
			out = append(out, applicantRow{line: row, name: strings.TrimSpace(m[1])})
		}
	}
	return out
}

// rowsWithField keeps rows whose field value equals value exactly.
func rowsWithField(rows []string, fq fieldQuery, value string) []string {
	var out []string
	for _, row := range rows {
		if m := fq.row.FindStringSubmatch(row); m != nil && strings.TrimSpace(m[1]) == value {
			out = append(out, row)
		}
	}
	return out
}

// bestRow returns the applicant whose name best matches; the first row wins ties.
func (e *Extractor) bestRow(name string, rows []applicantRow) (applicantRow, bool) {
	target := strings.ToLower(name)
	best, bestScore := -1, nameMatchThreshold
	for i, r := range rows {
		if score := e.scorer.PartialRatio(target, strings.ToLower(r.name)); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return applicantRow{}, false
	}
	return rows[best], true
}

func (e *Extractor) rowsByToken(query string, rows []applicantRow) []string {
	tokens := queryWords(query)
	var out []string
	for _, r := range rows {
		name := strings.ToLower(r.name)
		for _, tok := range tokens {
			if e.scorer.PartialRatio(tok, name) > tokenMatchThreshold {
				out = append(out, r.line)
				break
			}
		}
	}
	return out
}

func columnAnswer(row applicantRow, column string) string {
	label := cases.Title(language.English).String(column)
	m := fieldPattern(column).FindStringSubmatch(row.line)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return fmt.Sprintf("I could not find the %s for %s in my knowledge base.", label, row.name)
	}
	return fmt.Sprintf("The %s of %s is: %s", label, row.name, strings.TrimSpace(m[1]))
}

// rowsWithAllWords keeps pipe rows containing every query word longer than two characters.
func rowsWithAllWords(query string, rows []string) []string {
	words := queryWords(query)
	if len(words) == 0 {
		return nil
	}
	var out []string
	for _, row := range rows {
		lower := strings.ToLower(row)
		all := true
		for _, w := range words {
			if !strings.Contains(lower, w) {
				all = false
				break
			}
		}
		if all {
			out = append(out, row)
			if len(out) == maxFallbackLines {
				break
			}
		}
	}
	return out
}

func charterLines(lines []string) []string {
	markers := []string{"नागरिक वडापत्र", "wadapatra", "citizen charter"}
	return collectLines(lines, func(trimmed string) bool {
		return containsAny(strings.ToLower(trimmed), markers)
	})
}

func substantialLines(lines []string) []string {
	return collectLines(lines, func(trimmed string) bool {
		return !strings.HasPrefix(trimmed, "Document")
	})
}

// collectLines keeps up to maxFallbackLines trimmed lines longer than 20 characters.
func collectLines(lines []string, keep func(string) bool) []string {
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if utf8.RuneCountInString(trimmed) <= 20 || !keep(trimmed) {
			continue
		}
		out = append(out, trimmed)
		if len(out) == maxFallbackLines {
			break
		}
	}
	return out
}

func absoluteFallback(query string, lines []string) string {
	var names []string
	for _, line := range lines {
		for _, m := range applicantField.FindAllStringSubmatch(line, -1) {
			names = append(names, strings.TrimSpace(m[1]))
		}
	}
	names = firstDistinct(names, maxApplicantHints)
	if len(names) == 0 {
		return rephraseAnswer
	}
	header := fmt.Sprintf(
		"I couldn't find a matching record for '%s'. Applicants in my knowledge base include:\n\n", query)
	return bullets(header, names)
}

// queryWords lower-cases the query and keeps words longer than two characters.
func queryWords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
