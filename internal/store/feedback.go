package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *PostgresStore) CreateFeedback(fb *Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	fb.CreatedAt = time.Now()

	_, err := s.db.Exec(rebind(`INSERT INTO feedback (id, user_id, concept_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		fb.ID, fb.UserID, fb.ConceptID, fb.Rating, fb.Comment, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFeedbackByUserID(userID int64) ([]Feedback, error) {
	rows, err := s.db.Query(rebind(`SELECT id, user_id, concept_id, rating, comment, created_at
		FROM feedback WHERE user_id = ? ORDER BY created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var items []Feedback
	for rows.Next() {
		var fb Feedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.ConceptID, &fb.Rating, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		items = append(items, fb)
	}
	return items, rows.Err()
}
