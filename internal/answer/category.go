package answer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

func extractFee(lines []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !containsAny(lower, []string{"fee", "free", "निःशुल्क", "शुल्क", "दस्तुर"}) {
			continue
		}
		if strings.Contains(lower, "free") || strings.Contains(line, "निःशुल्क") {
			return "Based on the information in my knowledge base: **The service is FREE (निःशुल्क)**. " +
				"There are no charges for this service."
		}
		return "Based on the information in my knowledge base: " + strings.TrimSpace(line)
	}
	return "I couldn't find specific fee information in my knowledge base for this service."
}

var listMarkers = []string{"1.", "2.", "3.", "4.", "5."}

// extractDocuments collects the numbered list after a "required documents"
// heading. A non-empty line ends the list unless it is a list item or its
// raw text starts with "-".
func extractDocuments(lines []string) string {
	var docs []string
	inList := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(strings.ToLower(line), "required documents") || strings.Contains(line, "कागजात") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		if hasAnyPrefix(trimmed, listMarkers) {
			docs = append(docs, trimmed)
			continue
		}
		if trimmed != "" && !strings.HasPrefix(line, "-") {
			break
		}
	}
	if len(docs) == 0 {
		return "I couldn't find specific document requirements in my knowledge base."
	}
	return bullets("Based on my knowledge base, here are the required documents:\n\n", docs)
}

func extractProcess(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "process:") && !strings.Contains(line, "प्रक्रिया") {
			continue
		}
		info := strings.TrimSpace(line)
		if _, after, ok := strings.Cut(line, ":"); ok {
			info = strings.TrimSpace(after)
		}
		return "Based on my knowledge base, here's the process: " + info
	}
	return "I couldn't find specific process information in my knowledge base."
}

func extractTime(lines []string) string {
	for _, line := range lines {
		if containsAny(strings.ToLower(line), []string{"time", "day", "समय", "दिन"}) {
			return "Based on my knowledge base: " + strings.TrimSpace(line)
		}
	}
	return "I couldn't find specific timing information in my knowledge base."
}

func extractService(lines []string) string {
	var services []string
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "service") && strings.Contains(line, ":") {
			services = append(services, strings.TrimSpace(line))
			if len(services) == 3 {
				break
			}
		}
	}
	if len(services) == 0 {
		return "I couldn't find specific service information in my knowledge base."
	}
	return bullets("Based on my knowledge base, here are the available services:\n\n", services)
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`located in ([^.]*)`),
	regexp.MustCompile(`situated in ([^.]*)`),
	regexp.MustCompile(`position[^.]*?([^.]*)`),
	regexp.MustCompile(`coordinates[^.]*?([^.]*)`),
	regexp.MustCompile(`latitude[^.]*?([^.]*)`),
	regexp.MustCompile(`longitude[^.]*?([^.]*)`),
	regexp.MustCompile(`between ([^.]*)`),
	regexp.MustCompile(`bordered by ([^.]*)`),
	regexp.MustCompile(`neighboring ([^.]*)`),
	regexp.MustCompile(`continent[^.]*?([^.]*)`),
	regexp.MustCompile(`region[^.]*?([^.]*)`),
}

var locationKeywords = []string{
	"asia", "himalayas", "himalayan", "south asia", "indian subcontinent",
	"china", "india", "tibet", "bhutan", "bangladesh",
}

// extractLocation gathers pattern captures from the lower-cased text, then
// the first sentence mentioning each geography keyword, and keeps the first
// three distinct items.
func extractLocation(lines []string) string {
	text := strings.Join(lines, "\n")
	lower := strings.ToLower(text)

	var items []string
	for _, re := range locationPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if c := strings.TrimSpace(m[1]); utf8.RuneCountInString(c) > 3 {
				items = append(items, c)
			}
		}
	}

	sentences := strings.Split(text, ".")
	for _, kw := range locationKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		for _, s := range sentences {
			if strings.Contains(strings.ToLower(s), kw) {
				items = append(items, strings.TrimSpace(s))
				break
			}
		}
	}

	items = firstDistinct(items, 3)
	if len(items) == 0 {
		return "I couldn't find specific location information in my knowledge base."
	}
	return bullets("Based on my knowledge base, here's the location information:\n\n", items)
}

func extractNepal(lines []string) string {
	var facts []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !containsAny(strings.ToLower(line), []string{"nepal", "kathmandu", "everest", "himalaya"}) {
			continue
		}
		if utf8.RuneCountInString(trimmed) > 20 && !strings.HasPrefix(trimmed, "#") {
			facts = append(facts, trimmed)
			if len(facts) == 2 {
				break
			}
		}
	}
	if len(facts) == 0 {
		return "I couldn't find specific information about Nepal in my knowledge base."
	}
	return bullets("Based on my knowledge base, here's what I know about Nepal:\n\n", facts)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func firstDistinct(items []string, n int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, n)
	for _, it := range items {
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
		if len(out) == n {
			break
		}
	}
	return out
}
