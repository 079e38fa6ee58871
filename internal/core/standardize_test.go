package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		analysis := &analysisResponse{
			Concepts: []rawConcept{{Title: "Recursion", Summary: "A function calling itself. More detail follows."}},
		}
		standardize(analysis)

		assert.Equal(t, "Untitled Conversation", analysis.ConversationTitle)
		assert.Equal(t, "Analysis of pasted content.", analysis.ConversationSummary)
		assert.Equal(t, "A function calling itself.", analysis.Concepts[0].KeyTakeaway)
	})

	t.Run("maps insights to details", func(t *testing.T) {
		analysis := &analysisResponse{
			Summary:  "top-level summary",
			Concepts: []rawConcept{{Title: "Indexes", Insights: "B-trees keep lookups logarithmic."}},
		}
		standardize(analysis)

		assert.Equal(t, "top-level summary", analysis.ConversationSummary)
		assert.Equal(t, "B-trees keep lookups logarithmic.", analysis.Concepts[0].Details)
	})

	t.Run("lifts nested quick recall", func(t *testing.T) {
		analysis := &analysisResponse{
			Concepts: []rawConcept{{
				Title: "Caching",
				QuickRecall: &quickRecall{
					KeyTakeaway:   "store what you already computed",
					Analogy:       "a kitchen pantry",
					PracticalTips: []string{"pick a TTL"},
				},
			}},
		}
		standardize(analysis)

		c := analysis.Concepts[0]
		assert.Equal(t, "store what you already computed", c.KeyTakeaway)
		assert.Equal(t, "a kitchen pantry", c.Analogy)
		assert.Equal(t, []string{"pick a TTL"}, c.PracticalTips)
	})

	t.Run("cleans summary formatting", func(t *testing.T) {
		analysis := &analysisResponse{
			ConversationSummary: "[PROBLEM_SOLVING] Two Sum (a classic warmup) using hash maps.",
			Concepts:            []rawConcept{{Title: "Two Sum", Summary: "Find a pair summing to a target."}},
		}
		standardize(analysis)
		assert.Equal(t, "Two Sum  using hash maps.", analysis.ConversationSummary)
	})

	t.Run("summary cleaned to nothing gets the default", func(t *testing.T) {
		analysis := &analysisResponse{ConversationSummary: "[TECHNIQUE]"}
		standardize(analysis)
		assert.Equal(t, "Analysis of pasted content.", analysis.ConversationSummary)
	})

	t.Run("drops untitled concepts", func(t *testing.T) {
		analysis := &analysisResponse{
			Concepts: []rawConcept{{Title: "  "}, {Title: "Kept"}},
		}
		standardize(analysis)
		assert.Len(t, analysis.Concepts, 1)
		assert.Equal(t, "Kept", analysis.Concepts[0].Title)
	})
}

func TestDedupeConcepts(t *testing.T) {
	concepts := []rawConcept{
		{Title: "Binary Search", ConfidenceScore: 0.6},
		{Title: "binary search", ConfidenceScore: 0.9},
		{Title: "Hash Table", ConfidenceScore: 0.8},
		{Title: "Hash Table", ConfidenceScore: 0.8, CodeSnippets: []rawSnippet{{Code: "m := map[string]int{}"}}},
	}

	out := dedupeConcepts(concepts)

	assert.Len(t, out, 2)
	assert.Equal(t, 0.9, out[0].ConfidenceScore)
	assert.Len(t, out[1].CodeSnippets, 1, "confidence tie resolved by snippet count")
}

func TestLooksLikeProblemSolving(t *testing.T) {
	assert.True(t, looksLikeProblemSolving("We solved this LeetCode problem in O(n) time"))
	assert.False(t, looksLikeProblemSolving("Notes about sourdough starters"))
}

func TestAppendTechniqueConcepts(t *testing.T) {
	content := "We used a hashmap for counting, then a sliding window over the array. Classic leetcode."

	out := appendTechniqueConcepts([]rawConcept{{Title: "Arrays"}}, content)

	titles := make([]string, 0, len(out))
	for _, c := range out {
		titles = append(titles, c.Title)
	}
	assert.Contains(t, titles, "Hash Table")
	assert.Contains(t, titles, "Sliding Window")

	for _, c := range out {
		if c.Title == "Hash Table" {
			assert.True(t, c.IsTechnique)
			assert.Equal(t, techniqueConfidence, c.ConfidenceScore)
		}
	}
}

func TestCleanSummary(t *testing.T) {
	assert.Equal(t, "Notes on recursion: base cases first.",
		cleanSummary("[MIXED_TOPIC] Notes on recursion : base cases first."))
	assert.Equal(t, "Plain summary.", cleanSummary("Plain summary."))
}

func TestAppendTechniqueConceptsFromKeyPointsAndRelations(t *testing.T) {
	concepts := []rawConcept{{
		Title:           "Two Sum",
		KeyPoints:       []string{"use a dictionary to remember seen values"},
		RelatedConcepts: []string{"Sliding Window"},
	}}

	out := appendTechniqueConcepts(concepts, "we solved a warmup problem")

	titles := make([]string, 0, len(out))
	for _, c := range out {
		titles = append(titles, c.Title)
	}
	assert.Contains(t, titles, "Hash Table", "derived from the key point")
	assert.Contains(t, titles, "Sliding Window", "derived from the related concept")
}

func TestAppendTechniqueConceptsSkipsExisting(t *testing.T) {
	out := appendTechniqueConcepts([]rawConcept{{Title: "Hash Table"}}, "we used a hashmap here")
	assert.Len(t, out, 1)
}

func TestAppendTechniqueConceptsCapsAtMax(t *testing.T) {
	content := "hashmap frequency counter, two pointer walk, sliding window, all on one leetcode problem"
	out := appendTechniqueConcepts(nil, content)
	assert.Len(t, out, maxTechniques)
}
