package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *PostgresStore) CreateConversation(conv *Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.Source == "" {
		conv.Source = "chat"
	}
	conv.CreatedAt = time.Now()

	_, err := s.db.Exec(rebind("INSERT INTO conversations (id, user_id, title, summary, source, content, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"),
		conv.ID, conv.UserID, conv.Title, conv.Summary, conv.Source, conv.Content, conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetConversationByID(conversationID string, userID int64) (*Conversation, error) {
	var conv Conversation
	err := s.db.QueryRow(rebind("SELECT id, user_id, title, summary, source, content, created_at FROM conversations WHERE id = ? AND user_id = ?"),
		conversationID, userID).
		Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.Summary, &conv.Source, &conv.Content, &conv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

// GetConversationsByUserID lists conversations newest first, without content.
func (s *PostgresStore) GetConversationsByUserID(userID int64) ([]Conversation, error) {
	rows, err := s.db.Query(rebind("SELECT id, user_id, title, summary, source, created_at FROM conversations WHERE user_id = ? ORDER BY created_at DESC"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var conv Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.Summary, &conv.Source, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (s *PostgresStore) UpdateConversationMeta(conversationID string, userID int64, title, summary string) error {
	res, err := s.db.Exec(rebind("UPDATE conversations SET title = ?, summary = ? WHERE id = ? AND user_id = ?"),
		title, summary, conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("conversation not found or not owned by user")
	}
	return nil
}

// DeleteConversation removes the conversation; occurrences cascade.
func (s *PostgresStore) DeleteConversation(conversationID string, userID int64) error {
	res, err := s.db.Exec(rebind("DELETE FROM conversations WHERE id = ? AND user_id = ?"), conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("conversation not found")
	}
	return nil
}
