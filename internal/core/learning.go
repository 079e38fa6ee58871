package core

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/recallhq/recall/internal/store"
)

// CategoryLearner remembers manual category corrections and uses them to
// steer future extractions.
type CategoryLearner struct {
	store *store.PostgresStore
}

func NewCategoryLearner(s *store.PostgresStore) *CategoryLearner {
	return &CategoryLearner{store: s}
}

// contentKey hashes a content snippet into a stable lookup key.
func contentKey(content string) string {
	normalized := strings.ToLower(strings.TrimSpace(content))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// RecordCorrection stores a user's manual category change for a concept.
func (l *CategoryLearner) RecordCorrection(userID int64, content, oldCategory, newCategory string) error {
	if newCategory == "" || oldCategory == newCategory {
		return nil
	}
	preview := content
	if len(preview) > 200 {
		preview = preview[:200]
	}
	cl := &store.CategoryLearning{
		ContentKey:     contentKey(content),
		UserID:         userID,
		ContentPreview: preview,
		OldCategory:    oldCategory,
		NewCategory:    newCategory,
		Confidence:     1.0,
		UpdatedAt:      time.Now(),
	}
	if err := l.store.UpsertCategoryLearning(cl); err != nil {
		return fmt.Errorf("failed to record category correction: %w", err)
	}
	return nil
}

// LearnedMappings returns old-category to new-category mappings for use by
// NormalizeCategory, keyed by lowercased old category.
func (l *CategoryLearner) LearnedMappings(userID int64) (map[string]string, error) {
	learnings, err := l.store.GetCategoryLearnings(userID)
	if err != nil {
		return nil, err
	}
	mappings := make(map[string]string, len(learnings))
	for _, cl := range learnings {
		key := strings.ToLower(cl.OldCategory)
		if _, seen := mappings[key]; !seen {
			mappings[key] = cl.NewCategory
		}
	}
	return mappings, nil
}

// Suggest looks for a past correction whose content resembles the given
// content. An exact hash match wins; otherwise two or more shared significant
// words with a stored preview count as a match.
func (l *CategoryLearner) Suggest(userID int64, content string) (string, error) {
	learnings, err := l.store.GetCategoryLearnings(userID)
	if err != nil {
		return "", err
	}
	if len(learnings) == 0 {
		return "", nil
	}

	key := contentKey(content)
	for _, cl := range learnings {
		if cl.ContentKey == key {
			return cl.NewCategory, nil
		}
	}

	words := significantWords(content)
	for _, cl := range learnings {
		if wordOverlap(words, significantWords(cl.ContentPreview)) >= 2 {
			return cl.NewCategory, nil
		}
	}
	return "", nil
}

// LearningStats summarizes the stored corrections for a user.
type LearningStats struct {
	TotalCorrections int            `json:"total_corrections"`
	ByNewCategory    map[string]int `json:"by_new_category"`
	LastUpdated      *time.Time     `json:"last_updated,omitempty"`
}

func (l *CategoryLearner) Stats(userID int64) (*LearningStats, error) {
	learnings, err := l.store.GetCategoryLearnings(userID)
	if err != nil {
		return nil, err
	}
	stats := &LearningStats{ByNewCategory: make(map[string]int)}
	for _, cl := range learnings {
		stats.TotalCorrections++
		stats.ByNewCategory[cl.NewCategory]++
		if stats.LastUpdated == nil || cl.UpdatedAt.After(*stats.LastUpdated) {
			t := cl.UpdatedAt
			stats.LastUpdated = &t
		}
	}
	return stats, nil
}

func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) >= 4 {
			words[w] = true
		}
	}
	return words
}

func wordOverlap(a, b map[string]bool) int {
	count := 0
	for w := range a {
		if b[w] {
			count++
		}
	}
	return count
}
