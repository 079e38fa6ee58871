package core

import (
	"fmt"
	"log"
	"strings"

	"github.com/recallhq/recall/internal/store"
	"github.com/recallhq/recall/internal/utils"
)

const (
	// similarityThreshold is the cosine similarity above which two concepts
	// are treated as the same topic.
	similarityThreshold = 0.85

	// Confidence of a merged concept weights the prior over the new signal.
	existingConfidenceWeight = 0.7
	incomingConfidenceWeight = 0.3

	// reviewConfidenceDelta is the nudge applied on a self-review.
	reviewConfidenceDelta = 0.1
)

// MatchConcept finds an existing concept that matches an incoming one, either
// by case-insensitive title or by embedding similarity. Returns nil when
// nothing matches.
func MatchConcept(existing []store.Concept, title string, embedding []float32) *store.Concept {
	for i := range existing {
		if strings.EqualFold(existing[i].Title, title) {
			return &existing[i]
		}
	}
	if len(embedding) == 0 {
		return nil
	}

	var best *store.Concept
	var bestScore float32
	for i := range existing {
		if len(existing[i].Embedding) == 0 {
			continue
		}
		score, err := utils.CosineSimilarity(embedding, existing[i].Embedding)
		if err != nil {
			log.Printf("Warning: could not compare embeddings for concept %q: %v", existing[i].Title, err)
			continue
		}
		if score >= similarityThreshold && score > bestScore {
			best = &existing[i]
			bestScore = score
		}
	}
	return best
}

// MergeConfidence blends a new confidence observation into an existing score.
func MergeConfidence(existing, incoming float64) float64 {
	return clampConfidence(existingConfidenceWeight*existing + incomingConfidenceWeight*incoming)
}

func clampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// MergeConcepts folds an incoming extraction of the same topic into an
// existing concept. Longer explanatory fields win; list fields are unioned.
func MergeConcepts(existing *store.Concept, incoming *store.Concept) {
	existing.ConfidenceScore = MergeConfidence(existing.ConfidenceScore, incoming.ConfidenceScore)

	if len(incoming.Summary) > len(existing.Summary) {
		existing.Summary = incoming.Summary
	}
	if len(incoming.Details) > len(existing.Details) {
		existing.Details = incoming.Details
	}
	if existing.KeyTakeaway == "" {
		existing.KeyTakeaway = incoming.KeyTakeaway
	}
	if existing.Analogy == "" {
		existing.Analogy = incoming.Analogy
	}
	existing.KeyPoints = unionStrings(existing.KeyPoints, incoming.KeyPoints)
	existing.RelatedConcepts = unionStrings(existing.RelatedConcepts, incoming.RelatedConcepts)
	existing.PracticalTips = unionStrings(existing.PracticalTips, incoming.PracticalTips)
	for _, ex := range incoming.Examples {
		if !containsExample(existing.Examples, ex) {
			existing.Examples = append(existing.Examples, ex)
		}
	}
	if len(incoming.Embedding) > 0 {
		existing.Embedding = incoming.Embedding
	}
	existing.OccurrenceCount++
}

func unionStrings(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range extra {
		if s == "" {
			continue
		}
		if !seen[strings.ToLower(s)] {
			base = append(base, s)
			seen[strings.ToLower(s)] = true
		}
	}
	return base
}

func containsExample(examples []store.Example, ex store.Example) bool {
	for _, e := range examples {
		if strings.EqualFold(e.Title, ex.Title) {
			return true
		}
	}
	return false
}

// ReviewOutcome adjusts a confidence score after a self-review.
func ReviewOutcome(confidence float64, remembered bool) float64 {
	if remembered {
		return clampConfidence(confidence + reviewConfidenceDelta)
	}
	return clampConfidence(confidence - reviewConfidenceDelta)
}

// ConceptService wraps concept reads and updates that involve more than a
// single store call.
type ConceptService struct {
	store   *store.PostgresStore
	learner *CategoryLearner
}

func NewConceptService(s *store.PostgresStore, learner *CategoryLearner) *ConceptService {
	return &ConceptService{store: s, learner: learner}
}

// Review applies a remembered / forgot outcome to a concept.
func (cs *ConceptService) Review(userID int64, conceptID string, remembered bool) (*store.Concept, error) {
	concept, err := cs.store.GetConceptByID(conceptID, userID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, nil
	}
	concept.ConfidenceScore = ReviewOutcome(concept.ConfidenceScore, remembered)
	if err := cs.store.UpdateConcept(concept); err != nil {
		return nil, fmt.Errorf("failed to save review outcome: %w", err)
	}
	return concept, nil
}

// UpdateCategory moves a concept to a new category, records the correction
// for learning, and makes sure the target category exists in the tree.
func (cs *ConceptService) UpdateCategory(userID int64, conceptID, newCategory string) (*store.Concept, error) {
	concept, err := cs.store.GetConceptByID(conceptID, userID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, nil
	}

	oldCategory := concept.Category
	path := SplitCategoryPath(newCategory)
	concept.Category = JoinCategoryPath(path)
	concept.CategoryPath = path
	if err := cs.store.UpdateConcept(concept); err != nil {
		return nil, fmt.Errorf("failed to update concept category: %w", err)
	}

	if err := cs.store.CreateCategory(&store.Category{UserID: userID, Path: path}); err != nil {
		log.Printf("Warning: could not ensure category %q exists: %v", concept.Category, err)
	}

	basis := concept.Title + " " + concept.Summary
	if err := cs.learner.RecordCorrection(userID, basis, oldCategory, concept.Category); err != nil {
		log.Printf("Warning: could not record category correction: %v", err)
	}
	return concept, nil
}
