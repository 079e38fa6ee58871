package store

import (
	"fmt"
	"time"
)

func (s *PostgresStore) UpsertCategoryLearning(cl *CategoryLearning) error {
	cl.UpdatedAt = time.Now()
	if cl.Confidence == 0 {
		cl.Confidence = 1.0 // manual updates are authoritative
	}

	_, err := s.db.Exec(rebind(`INSERT INTO category_learnings (content_key, user_id, content_preview, old_category, new_category, confidence, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_key, user_id) DO UPDATE SET
			content_preview = EXCLUDED.content_preview,
			old_category = EXCLUDED.old_category,
			new_category = EXCLUDED.new_category,
			confidence = EXCLUDED.confidence,
			updated_at = EXCLUDED.updated_at`),
		cl.ContentKey, cl.UserID, cl.ContentPreview, cl.OldCategory, cl.NewCategory, cl.Confidence, cl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert category learning: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCategoryLearnings(userID int64) ([]CategoryLearning, error) {
	rows, err := s.db.Query(rebind(`SELECT content_key, user_id, content_preview, old_category, new_category, confidence, updated_at
		FROM category_learnings WHERE user_id = ? ORDER BY updated_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category learnings: %w", err)
	}
	defer rows.Close()

	var items []CategoryLearning
	for rows.Next() {
		var cl CategoryLearning
		if err := rows.Scan(&cl.ContentKey, &cl.UserID, &cl.ContentPreview, &cl.OldCategory, &cl.NewCategory, &cl.Confidence, &cl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category learning row: %w", err)
		}
		items = append(items, cl)
	}
	return items, rows.Err()
}
