package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/recallhq/recall/internal/llm"
	"github.com/recallhq/recall/internal/metrics"
	"github.com/recallhq/recall/internal/store"
)

const journeyTemperature = 0.6

// ConceptRelationship is a directed edge between two concepts.
type ConceptRelationship struct {
	SourceConcept string `json:"source_concept"`
	TargetConcept string `json:"target_concept"`
	Type          string `json:"type"`
	Explanation   string `json:"explanation"`
}

// JourneyAnalysis is the model's read of where the user is in their learning.
type JourneyAnalysis struct {
	IdentifiedConcepts      []string              `json:"identified_concepts"`
	SuggestedPrerequisites  []string              `json:"suggested_prerequisites"`
	NextLearningSteps       []string              `json:"next_learning_steps"`
	IdentifiedRelationships []ConceptRelationship `json:"identified_relationships"`
	LearningGapsSummary     string                `json:"learning_gaps_summary"`
}

type JourneyService struct {
	store *store.PostgresStore
	llm   LLMClient
}

func NewJourneyService(s *store.PostgresStore, client LLMClient) *JourneyService {
	return &JourneyService{store: s, llm: client}
}

// Analyze maps the user's concept collection, plus an optional new piece of
// conversation text, into prerequisites, next steps and gaps. Returns nil
// when there is nothing to analyze.
func (js *JourneyService) Analyze(ctx context.Context, userID int64, conversationText, customAPIKey string) (*JourneyAnalysis, error) {
	concepts, err := js.store.GetConceptsByUserID(userID, "", "", 200, 0)
	if err != nil {
		return nil, err
	}
	if len(concepts) == 0 && strings.TrimSpace(conversationText) == "" {
		return nil, nil
	}

	m := metrics.Get()
	start := time.Now()
	raw, err := js.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: journeySystemPrompt},
		{Role: "user", Content: journeyUserPrompt(concepts, conversationText)},
	}, llm.Options{Temperature: journeyTemperature, JSONMode: true, CustomAPIKey: customAPIKey})
	m.LLMCallDuration.WithLabelValues("journey").Observe(time.Since(start).Seconds())
	if err != nil {
		m.LLMCallsTotal.WithLabelValues("journey", "error").Inc()
		return nil, fmt.Errorf("journey analysis failed: %w", err)
	}
	m.LLMCallsTotal.WithLabelValues("journey", "success").Inc()

	var analysis JourneyAnalysis
	if err := json.Unmarshal([]byte(cleanJSONPayload(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("journey analysis response was not valid JSON: %w", err)
	}
	if err := analysis.validate(); err != nil {
		return nil, fmt.Errorf("journey analysis response incomplete: %w", err)
	}
	return &analysis, nil
}

func (a *JourneyAnalysis) validate() error {
	if len(a.IdentifiedConcepts) == 0 && len(a.NextLearningSteps) == 0 {
		return fmt.Errorf("missing identified_concepts and next_learning_steps")
	}
	if strings.TrimSpace(a.LearningGapsSummary) == "" {
		return fmt.Errorf("missing learning_gaps_summary")
	}
	return nil
}

const journeySystemPrompt = `You are a learning coach analyzing someone's collection of learned concepts.

Respond with JSON only:
{
  "identified_concepts": ["concepts the user clearly knows"],
  "suggested_prerequisites": ["foundational topics they seem to be missing"],
  "next_learning_steps": ["concrete topics to learn next, in order"],
  "identified_relationships": [{"source_concept": "...", "target_concept": "...", "type": "IS_PREREQUISITE_FOR | IS_APPLICATION_OF | IS_RELATED_TO", "explanation": "why this edge exists"}],
  "learning_gaps_summary": "2-3 sentences on the most important gaps"
}`

func journeyUserPrompt(concepts []store.Concept, conversationText string) string {
	var sb strings.Builder
	if len(concepts) > 0 {
		sb.WriteString("Here are the concepts I have learned, with how confident I am in each:\n\n")
		for _, c := range concepts {
			fmt.Fprintf(&sb, "- %s (category: %s, confidence: %.2f)\n", c.Title, c.Category, c.ConfidenceScore)
		}
	}
	if strings.TrimSpace(conversationText) != "" {
		sb.WriteString("\nHere is a new conversation I just had:\n\n")
		sb.WriteString(conversationText)
	}
	sb.WriteString("\n\nAnalyze my learning journey.")
	return sb.String()
}
