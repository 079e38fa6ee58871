package core

import (
	"regexp"
	"strings"
)

// cleanJSONPayload strips the markdown code fences models sometimes wrap
// around a JSON answer.
func cleanJSONPayload(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}
	return strings.TrimSpace(raw)
}

// standardize repairs the drift models show in the analysis response shape:
// missing summaries and titles get defaults, details may arrive under
// insights or implementation, and quick-recall fields may be nested.
func standardize(analysis *analysisResponse) {
	if analysis.ConversationSummary == "" {
		analysis.ConversationSummary = analysis.Summary
	}
	analysis.ConversationSummary = cleanSummary(analysis.ConversationSummary)
	if analysis.ConversationSummary == "" {
		analysis.ConversationSummary = "Analysis of pasted content."
	}
	if analysis.ConversationTitle == "" {
		analysis.ConversationTitle = "Untitled Conversation"
	}

	kept := analysis.Concepts[:0]
	for i := range analysis.Concepts {
		c := &analysis.Concepts[i]
		if strings.TrimSpace(c.Title) == "" {
			continue
		}

		if c.Details == "" {
			if c.Insights != "" {
				c.Details = c.Insights
			} else if c.Implementation != "" {
				c.Details = c.Implementation
			}
		}

		if c.QuickRecall != nil {
			if c.KeyTakeaway == "" {
				c.KeyTakeaway = c.QuickRecall.KeyTakeaway
			}
			if c.Analogy == "" {
				c.Analogy = c.QuickRecall.Analogy
			}
			if len(c.PracticalTips) == 0 {
				c.PracticalTips = c.QuickRecall.PracticalTips
			}
		}
		if c.KeyTakeaway == "" {
			c.KeyTakeaway = firstSentence(c.Summary)
		}
		kept = append(kept, *c)
	}
	analysis.Concepts = kept
}

var (
	bracketedTagRe  = regexp.MustCompile(`\[\w+(_\w+)*\]\s*`)
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	colonSpacingRe  = regexp.MustCompile(`\s+:`)
)

// cleanSummary strips the [PROBLEM_SOLVING]-style tags and parenthetical
// asides models sometimes leave in a conversation summary.
func cleanSummary(summary string) string {
	summary = bracketedTagRe.ReplaceAllString(summary, "")
	summary = parentheticalRe.ReplaceAllString(summary, "")
	summary = colonSpacingRe.ReplaceAllString(summary, ":")
	return strings.TrimSpace(summary)
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".!?"); idx > 0 {
		return text[:idx+1]
	}
	return text
}

// dedupeConcepts collapses concepts with the same title, keeping the one with
// the highest confidence. Ties go to the one carrying more code snippets.
func dedupeConcepts(concepts []rawConcept) []rawConcept {
	byTitle := make(map[string]int)
	var out []rawConcept
	for _, c := range concepts {
		key := strings.ToLower(strings.TrimSpace(c.Title))
		if key == "" {
			continue
		}
		idx, seen := byTitle[key]
		if !seen {
			byTitle[key] = len(out)
			out = append(out, c)
			continue
		}
		kept := out[idx]
		if c.ConfidenceScore > kept.ConfidenceScore ||
			(c.ConfidenceScore == kept.ConfidenceScore && len(c.CodeSnippets) > len(kept.CodeSnippets)) {
			out[idx] = c
		}
	}
	return out
}

var problemSolvingMarkers = []string{
	"leetcode", "coding problem", "coding challenge", "interview question",
	"time complexity", "o(n)", "test case", "edge case", "brute force",
}

func looksLikeProblemSolving(content string) bool {
	lower := strings.ToLower(content)
	for _, marker := range problemSolvingMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// techniquePatterns maps a technique mini-concept to the phrases that signal
// it in problem-solving content.
var techniquePatterns = []struct {
	title    string
	summary  string
	patterns []string
}{
	{
		title:    "Hash Table",
		summary:  "Using a hash table for constant-time lookups, often to trade memory for speed.",
		patterns: []string{"hash table", "hashmap", "hash map", "dictionary lookup"},
	},
	{
		title:    "Frequency Counting",
		summary:  "Counting occurrences of elements to answer questions about duplicates, anagrams or majorities.",
		patterns: []string{"frequency", "count occurrences", "counter"},
	},
	{
		title:    "Two Pointer",
		summary:  "Walking a sequence with two indices to avoid nested loops.",
		patterns: []string{"two pointer", "two-pointer", "left and right pointer"},
	},
	{
		title:    "Sliding Window",
		summary:  "Maintaining a moving window over a sequence to compute subarray properties incrementally.",
		patterns: []string{"sliding window"},
	},
}

// genericTitles never become technique mini-concepts on their own.
var genericTitles = map[string]bool{
	"array": true, "list": true, "string": true,
	"integer": true, "iteration": true, "loop": true,
}

// techniqueFromPhrase maps a key point or related-concept mention to one of
// the known techniques, using looser cues than the content patterns.
func techniqueFromPhrase(phrase string) (string, bool) {
	p := strings.ToLower(phrase)
	switch {
	case strings.Contains(p, "hash") || strings.Contains(p, "dictionary") || strings.Contains(p, "map"):
		return "Hash Table", true
	case strings.Contains(p, "frequency") || strings.Contains(p, "count"):
		return "Frequency Counting", true
	case strings.Contains(p, "pointer"):
		return "Two Pointer", true
	case strings.Contains(p, "window"):
		return "Sliding Window", true
	}
	return "", false
}

func techniqueSummary(title string) string {
	for _, tech := range techniquePatterns {
		if tech.title == title {
			return tech.summary
		}
	}
	return ""
}

// appendTechniqueConcepts adds mini-concepts for recognized problem-solving
// techniques signalled either in the content itself or in the extracted
// concepts' key points and related concepts.
func appendTechniqueConcepts(concepts []rawConcept, content string) []rawConcept {
	lower := strings.ToLower(content)

	have := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		have[strings.ToLower(strings.TrimSpace(c.Title))] = true
	}

	var titles []string
	add := func(title string) {
		key := strings.ToLower(title)
		if have[key] || genericTitles[key] {
			return
		}
		have[key] = true
		titles = append(titles, title)
	}

	for _, tech := range techniquePatterns {
		for _, pattern := range tech.patterns {
			if strings.Contains(lower, pattern) {
				add(tech.title)
				break
			}
		}
	}
	for _, c := range concepts {
		for _, point := range c.KeyPoints {
			if title, ok := techniqueFromPhrase(point); ok {
				add(title)
			}
		}
		for _, rel := range c.RelatedConcepts {
			if title, ok := techniqueFromPhrase(rel); ok {
				add(title)
			}
		}
	}

	if len(titles) > maxTechniques {
		titles = titles[:maxTechniques]
	}
	for _, title := range titles {
		summary := techniqueSummary(title)
		concepts = append(concepts, rawConcept{
			Title:           title,
			Category:        "Programming > Algorithms",
			Summary:         summary,
			KeyTakeaway:     summary,
			ConfidenceScore: techniqueConfidence,
			IsTechnique:     true,
		})
	}
	return concepts
}
