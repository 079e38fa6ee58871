package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recallhq/recall/internal/store"
)

func TestMergeConfidence(t *testing.T) {
	assert.InDelta(t, 0.76, MergeConfidence(0.7, 0.9), 1e-9)
	assert.InDelta(t, 1.0, MergeConfidence(1.0, 1.0), 1e-9)
	assert.InDelta(t, 0.0, MergeConfidence(0, 0), 1e-9)
	// Out-of-range inputs clamp instead of escaping [0, 1].
	assert.Equal(t, 1.0, MergeConfidence(1.5, 1.5))
	assert.Equal(t, 0.0, MergeConfidence(-1, -1))
}

func TestReviewOutcome(t *testing.T) {
	assert.InDelta(t, 0.6, ReviewOutcome(0.5, true), 1e-9)
	assert.InDelta(t, 0.4, ReviewOutcome(0.5, false), 1e-9)
	assert.Equal(t, 1.0, ReviewOutcome(0.95, true))
	assert.Equal(t, 0.0, ReviewOutcome(0.05, false))
}

func TestMatchConcept(t *testing.T) {
	existing := []store.Concept{
		{Title: "Binary Search", Embedding: []float32{1, 0, 0}},
		{Title: "Hash Table", Embedding: []float32{0, 1, 0}},
	}

	t.Run("title match is case-insensitive", func(t *testing.T) {
		got := MatchConcept(existing, "binary search", nil)
		assert.NotNil(t, got)
		assert.Equal(t, "Binary Search", got.Title)
	})

	t.Run("embedding match above threshold", func(t *testing.T) {
		got := MatchConcept(existing, "Hashing", []float32{0.01, 0.99, 0})
		assert.NotNil(t, got)
		assert.Equal(t, "Hash Table", got.Title)
	})

	t.Run("below threshold is no match", func(t *testing.T) {
		got := MatchConcept(existing, "Graphs", []float32{0.7, 0.7, 0.1})
		assert.Nil(t, got)
	})

	t.Run("no embedding and no title match", func(t *testing.T) {
		got := MatchConcept(existing, "Graphs", nil)
		assert.Nil(t, got)
	})
}

func TestMergeConcepts(t *testing.T) {
	existing := &store.Concept{
		Title:           "Two Pointer",
		Summary:         "short",
		KeyPoints:       []string{"left and right indices"},
		ConfidenceScore: 0.5,
		OccurrenceCount: 1,
	}
	incoming := &store.Concept{
		Title:           "Two Pointer",
		Summary:         "a considerably longer explanation of the technique",
		KeyPoints:       []string{"left and right indices", "avoids nested loops"},
		KeyTakeaway:     "walk from both ends",
		ConfidenceScore: 0.9,
		Embedding:       []float32{1, 2, 3},
	}

	MergeConcepts(existing, incoming)

	assert.Equal(t, incoming.Summary, existing.Summary)
	assert.Equal(t, "walk from both ends", existing.KeyTakeaway)
	assert.Len(t, existing.KeyPoints, 2)
	assert.InDelta(t, 0.62, existing.ConfidenceScore, 1e-9)
	assert.Equal(t, 2, existing.OccurrenceCount)
	assert.Equal(t, []float32{1, 2, 3}, existing.Embedding)
}
