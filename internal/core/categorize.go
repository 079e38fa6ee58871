package core

import (
	"strings"
)

// Domain types for a piece of content. They pick the analysis prompt and the
// fallback category.
const (
	DomainTechnical    = "TECHNICAL"
	DomainNonTechnical = "NON_TECHNICAL"
	DomainMixed        = "MIXED"
)

var technicalKeywords = []string{
	"algorithm", "function", "variable", "database", "api", "code",
	"programming", "software", "debug", "compile", "python", "javascript",
	"typescript", "golang", "java", "sql", "server", "framework", "library",
	"class", "method", "array", "recursion", "runtime", "complexity",
	"frontend", "backend", "deployment", "docker", "kubernetes", "git",
	"leetcode", "binary", "pointer", "stack", "queue", "linked list",
}

var nonTechnicalKeywords = []string{
	"cooking", "recipe", "history", "philosophy", "art", "music",
	"fitness", "exercise", "travel", "psychology", "finance", "investing",
	"marketing", "business", "health", "nutrition", "language learning",
	"writing", "literature", "meditation", "gardening", "photography",
	"economics", "politics", "biology", "chemistry", "physics",
}

func countKeywordHits(content string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			hits++
		}
	}
	return hits
}

// DetectDomainByKeywords classifies content as technical, non-technical or
// mixed from keyword counts alone. The second return value reports whether
// the signal was strong enough to skip the model-based classifier.
func DetectDomainByKeywords(content string) (string, bool) {
	lower := strings.ToLower(content)
	tech := countKeywordHits(lower, technicalKeywords)
	nonTech := countKeywordHits(lower, nonTechnicalKeywords)

	switch {
	case tech >= 2 && nonTech >= 2:
		return DomainMixed, true
	case tech >= 3 && nonTech <= 1:
		return DomainTechnical, true
	case nonTech >= 2 && tech <= 1:
		return DomainNonTechnical, true
	}
	return DomainTechnical, false
}

// categoryKeywords maps content keywords to canonical category display names.
// Checked in order so more specific entries win.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"dynamic programming", "Algorithms"},
	{"data structure", "Data Structures"},
	{"linked list", "Data Structures"},
	{"hash table", "Data Structures"},
	{"algorithm", "Algorithms"},
	{"leetcode", "Algorithms"},
	{"machine learning", "Machine Learning"},
	{"neural network", "Machine Learning"},
	{"react", "Web Development"},
	{"javascript", "Web Development"},
	{"typescript", "Web Development"},
	{"css", "Web Development"},
	{"frontend", "Web Development"},
	{"backend", "Web Development"},
	{"database", "Databases"},
	{"sql", "Databases"},
	{"postgres", "Databases"},
	{"docker", "DevOps"},
	{"kubernetes", "DevOps"},
	{"deployment", "DevOps"},
	{"ci/cd", "DevOps"},
	{"system design", "System Design"},
	{"python", "Programming"},
	{"golang", "Programming"},
	{"java", "Programming"},
	{"cooking", "Cooking"},
	{"recipe", "Cooking"},
	{"nutrition", "Health & Fitness"},
	{"fitness", "Health & Fitness"},
	{"exercise", "Health & Fitness"},
	{"investing", "Finance"},
	{"finance", "Finance"},
	{"history", "History"},
	{"philosophy", "Philosophy"},
	{"psychology", "Psychology"},
	{"music", "Music"},
	{"language", "Languages"},
}

// NormalizeCategory maps a model-proposed category onto the user's existing
// tree. Resolution order: exact match, case-insensitive match, keyword table,
// learned corrections, domain fallback.
func NormalizeCategory(raw string, existing []string, learned map[string]string, domainType string) string {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, cat := range existing {
			if cat == raw {
				return cat
			}
		}
		for _, cat := range existing {
			if strings.EqualFold(cat, raw) {
				return cat
			}
		}

		lower := strings.ToLower(raw)
		for _, entry := range categoryKeywords {
			if strings.Contains(lower, entry.keyword) {
				return entry.category
			}
		}

		if mapped, ok := learned[lower]; ok && mapped != "" {
			return mapped
		}
	}

	switch domainType {
	case DomainTechnical:
		return "Programming"
	case DomainNonTechnical:
		return "General"
	}
	if raw != "" {
		return raw
	}
	return "General"
}

// SplitCategoryPath turns a display category ("A > B") into path segments.
func SplitCategoryPath(display string) []string {
	parts := strings.Split(display, ">")
	var path []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			path = append(path, p)
		}
	}
	if len(path) == 0 {
		return []string{"General"}
	}
	return path
}

// JoinCategoryPath is the inverse of SplitCategoryPath.
func JoinCategoryPath(path []string) string {
	return strings.Join(path, " > ")
}
