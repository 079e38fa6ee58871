package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateOccurrence inserts the link row; a repeat (concept, conversation)
// pair is a no-op so re-analyzing the same conversation stays idempotent.
func (s *PostgresStore) CreateOccurrence(occ *Occurrence) error {
	if occ.ID == "" {
		occ.ID = uuid.NewString()
	}
	occ.CreatedAt = time.Now()

	_, err := s.db.Exec(rebind(`INSERT INTO occurrences (id, concept_id, conversation_id, snippet, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (concept_id, conversation_id) DO NOTHING`),
		occ.ID, occ.ConceptID, occ.ConversationID, occ.Snippet, occ.Confidence, occ.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert occurrence: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOccurrencesByConceptID(conceptID string) ([]Occurrence, error) {
	rows, err := s.db.Query(rebind(`SELECT id, concept_id, conversation_id, snippet, confidence, created_at
		FROM occurrences WHERE concept_id = ? ORDER BY created_at DESC`), conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	var occs []Occurrence
	for rows.Next() {
		var occ Occurrence
		if err := rows.Scan(&occ.ID, &occ.ConceptID, &occ.ConversationID, &occ.Snippet, &occ.Confidence, &occ.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence row: %w", err)
		}
		occs = append(occs, occ)
	}
	return occs, rows.Err()
}

func (s *PostgresStore) CreateCodeSnippet(snippet *CodeSnippet) error {
	if snippet.ID == "" {
		snippet.ID = uuid.NewString()
	}
	snippet.CreatedAt = time.Now()

	_, err := s.db.Exec(rebind(`INSERT INTO code_snippets (id, concept_id, language, description, code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		snippet.ID, snippet.ConceptID, snippet.Language, snippet.Description, snippet.Code, snippet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert code snippet: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCodeSnippetsByConceptID(conceptID string) ([]CodeSnippet, error) {
	rows, err := s.db.Query(rebind(`SELECT id, concept_id, language, description, code, created_at
		FROM code_snippets WHERE concept_id = ? ORDER BY created_at ASC`), conceptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query code snippets: %w", err)
	}
	defer rows.Close()

	var snippets []CodeSnippet
	for rows.Next() {
		var sn CodeSnippet
		if err := rows.Scan(&sn.ID, &sn.ConceptID, &sn.Language, &sn.Description, &sn.Code, &sn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan code snippet row: %w", err)
		}
		snippets = append(snippets, sn)
	}
	return snippets, rows.Err()
}
