package core

import (
	"fmt"
	"strings"
)

func analysisSystemPrompt(domainType string) string {
	var focus string
	switch domainType {
	case DomainNonTechnical:
		focus = "The content is non-technical. Extract the ideas, frameworks and facts the user was learning. Do not invent technical concepts."
	case DomainMixed:
		focus = "The content mixes technical and non-technical topics. Extract both kinds of concepts and categorize each appropriately."
	default:
		focus = "The content is technical. Extract the programming concepts, techniques and patterns discussed, including code where present."
	}

	return `You are a learning assistant that extracts the concepts a person was learning from a conversation or transcript. ` + focus + `

Respond with JSON only, in this shape:
{
  "conversation_title": "short descriptive title",
  "conversation_summary": "2-3 sentence summary",
  "concepts": [
    {
      "title": "concept name",
      "category": "best-fitting category",
      "summary": "2-3 sentence explanation",
      "details": "deeper explanation of how and why it works",
      "key_points": ["..."],
      "examples": [{"title": "...", "description": "..."}],
      "related_concepts": ["..."],
      "key_takeaway": "one sentence to remember",
      "analogy": "an everyday analogy, or empty string",
      "practical_tips": ["..."],
      "confidence_score": 0.9,
      "code_snippets": [{"language": "...", "description": "...", "code": "..."}]
    }
  ]
}

Extract every distinct concept actually discussed. Set confidence_score between 0 and 1 for how central the concept was. Omit code_snippets when there is no code.`
}

func analysisUserPrompt(content string, categories []string, suggestedCategory, contextNote string) string {
	var sb strings.Builder
	if contextNote != "" {
		fmt.Fprintf(&sb, "Context from the user: %s\n\n", contextNote)
	}
	if len(categories) > 0 {
		sb.WriteString("The user organizes concepts into these categories, prefer them when one fits:\n")
		sb.WriteString(strings.Join(categories, ", "))
		sb.WriteString("\n\n")
	}
	if suggestedCategory != "" {
		fmt.Fprintf(&sb, "Based on the user's past corrections, similar content belongs in %q.\n\n", suggestedCategory)
	}
	sb.WriteString("Analyze this content:\n\n")
	sb.WriteString(content)
	return sb.String()
}
