package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const conceptColumns = `id, user_id, title, category, category_path, summary, details,
	key_points, examples, related_concepts, key_takeaway, analogy, practical_tips,
	confidence_score, is_technique, embedding, occurrence_count, created_at, updated_at`

func (s *PostgresStore) CreateConcept(c *Concept) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.OccurrenceCount == 0 {
		c.OccurrenceCount = 1
	}

	pathJSON, keyPointsJSON, examplesJSON, relatedJSON, tipsJSON, embeddingJSON, err := marshalConceptFields(c)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(rebind(`INSERT INTO concepts (id, user_id, title, category, category_path, summary, details,
		key_points, examples, related_concepts, key_takeaway, analogy, practical_tips,
		confidence_score, is_technique, embedding, occurrence_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.UserID, c.Title, c.Category, pathJSON, c.Summary, c.Details,
		keyPointsJSON, examplesJSON, relatedJSON, c.KeyTakeaway, c.Analogy, tipsJSON,
		c.ConfidenceScore, c.IsTechnique, embeddingJSON, c.OccurrenceCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert concept: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateConcept(c *Concept) error {
	c.UpdatedAt = time.Now()

	pathJSON, keyPointsJSON, examplesJSON, relatedJSON, tipsJSON, embeddingJSON, err := marshalConceptFields(c)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(rebind(`UPDATE concepts SET title = ?, category = ?, category_path = ?, summary = ?, details = ?,
		key_points = ?, examples = ?, related_concepts = ?, key_takeaway = ?, analogy = ?, practical_tips = ?,
		confidence_score = ?, is_technique = ?, embedding = ?, occurrence_count = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`),
		c.Title, c.Category, pathJSON, c.Summary, c.Details,
		keyPointsJSON, examplesJSON, relatedJSON, c.KeyTakeaway, c.Analogy, tipsJSON,
		c.ConfidenceScore, c.IsTechnique, embeddingJSON, c.OccurrenceCount, c.UpdatedAt,
		c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to update concept: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("concept not found or not owned by user")
	}
	return nil
}

func (s *PostgresStore) GetConceptByID(conceptID string, userID int64) (*Concept, error) {
	row := s.db.QueryRow(rebind("SELECT "+conceptColumns+" FROM concepts WHERE id = ? AND user_id = ?"), conceptID, userID)
	c, err := scanConcept(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get concept: %w", err)
	}
	return c, nil
}

// GetConceptByTitle does a case-insensitive exact title lookup.
func (s *PostgresStore) GetConceptByTitle(userID int64, title string) (*Concept, error) {
	row := s.db.QueryRow(rebind("SELECT "+conceptColumns+" FROM concepts WHERE user_id = ? AND LOWER(title) = LOWER(?)"), userID, title)
	c, err := scanConcept(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get concept by title: %w", err)
	}
	return c, nil
}

// GetConceptsByUserID lists concepts, optionally filtered by display category
// and a substring query over title and summary.
func (s *PostgresStore) GetConceptsByUserID(userID int64, category, query string, limit, offset int) ([]Concept, error) {
	q := "SELECT " + conceptColumns + " FROM concepts WHERE user_id = ?"
	args := []interface{}{userID}
	if category != "" {
		q += " AND category = ?"
		args = append(args, category)
	}
	if query != "" {
		q += " AND (title ILIKE ? OR summary ILIKE ?)"
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}
	q += " ORDER BY updated_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	defer rows.Close()
	return scanConcepts(rows)
}

// GetConceptsWithEmbeddings loads every concept for a user, embeddings
// included, for in-process similarity matching.
func (s *PostgresStore) GetConceptsWithEmbeddings(userID int64) ([]Concept, error) {
	rows, err := s.db.Query(rebind("SELECT "+conceptColumns+" FROM concepts WHERE user_id = ?"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query concepts: %w", err)
	}
	defer rows.Close()
	return scanConcepts(rows)
}

func (s *PostgresStore) GetConceptsByConversationID(conversationID string, userID int64) ([]Concept, error) {
	rows, err := s.db.Query(rebind(`SELECT `+prefixedConceptColumns("c")+`
		FROM concepts c JOIN occurrences o ON o.concept_id = c.id
		WHERE o.conversation_id = ? AND c.user_id = ?
		ORDER BY o.created_at ASC`), conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation concepts: %w", err)
	}
	defer rows.Close()
	return scanConcepts(rows)
}

func (s *PostgresStore) DeleteConcept(conceptID string, userID int64) error {
	res, err := s.db.Exec(rebind("DELETE FROM concepts WHERE id = ? AND user_id = ?"), conceptID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete concept: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("concept not found")
	}
	return nil
}

func prefixedConceptColumns(alias string) string {
	return alias + `.id, ` + alias + `.user_id, ` + alias + `.title, ` + alias + `.category, ` + alias + `.category_path, ` +
		alias + `.summary, ` + alias + `.details, ` + alias + `.key_points, ` + alias + `.examples, ` + alias + `.related_concepts, ` +
		alias + `.key_takeaway, ` + alias + `.analogy, ` + alias + `.practical_tips, ` + alias + `.confidence_score, ` +
		alias + `.is_technique, ` + alias + `.embedding, ` + alias + `.occurrence_count, ` + alias + `.created_at, ` + alias + `.updated_at`
}

func marshalConceptFields(c *Concept) (pathJSON, keyPointsJSON, examplesJSON, relatedJSON, tipsJSON string, embeddingJSON sql.NullString, err error) {
	if pathJSON, err = marshalJSON(c.CategoryPath); err != nil {
		return
	}
	if keyPointsJSON, err = marshalJSON(c.KeyPoints); err != nil {
		return
	}
	if examplesJSON, err = marshalJSON(c.Examples); err != nil {
		return
	}
	if relatedJSON, err = marshalJSON(c.RelatedConcepts); err != nil {
		return
	}
	if tipsJSON, err = marshalJSON(c.PracticalTips); err != nil {
		return
	}
	if len(c.Embedding) > 0 {
		var b []byte
		b, err = json.Marshal(c.Embedding)
		if err != nil {
			err = fmt.Errorf("failed to marshal embedding: %w", err)
			return
		}
		embeddingJSON = sql.NullString{String: string(b), Valid: true}
	}
	return
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConcept(row rowScanner) (*Concept, error) {
	var c Concept
	var pathJSON, keyPointsJSON, examplesJSON, relatedJSON, tipsJSON string
	var embeddingJSON sql.NullString

	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Category, &pathJSON, &c.Summary, &c.Details,
		&keyPointsJSON, &examplesJSON, &relatedJSON, &c.KeyTakeaway, &c.Analogy, &tipsJSON,
		&c.ConfidenceScore, &c.IsTechnique, &embeddingJSON, &c.OccurrenceCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.CategoryPath = unmarshalStrings(pathJSON)
	c.KeyPoints = unmarshalStrings(keyPointsJSON)
	c.RelatedConcepts = unmarshalStrings(relatedJSON)
	c.PracticalTips = unmarshalStrings(tipsJSON)
	if examplesJSON != "" {
		if err := json.Unmarshal([]byte(examplesJSON), &c.Examples); err != nil {
			log.Printf("Warning: failed to unmarshal examples for concept %s: %v", c.ID, err)
		}
	}
	if embeddingJSON.Valid && embeddingJSON.String != "" {
		if err := json.Unmarshal([]byte(embeddingJSON.String), &c.Embedding); err != nil {
			log.Printf("Warning: failed to unmarshal embedding for concept %s: %v. Embedding will be empty.", c.ID, err)
			c.Embedding = nil
		}
	}
	return &c, nil
}

func scanConcepts(rows *sql.Rows) ([]Concept, error) {
	var concepts []Concept
	for rows.Next() {
		c, err := scanConcept(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan concept row: %w", err)
		}
		concepts = append(concepts, *c)
	}
	return concepts, rows.Err()
}
