package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *PostgresStore) CreateAnalysisSession(session *AnalysisSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = SessionRunning
	}
	session.StartedAt = time.Now()

	_, err := s.db.Exec(rebind(`INSERT INTO analysis_sessions (id, user_id, conversation_id, status, concept_count, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		session.ID, session.UserID, session.ConversationID, session.Status, session.ConceptCount, session.Error, session.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert analysis session: %w", err)
	}
	return nil
}

// FinishAnalysisSession marks a session completed or failed.
func (s *PostgresStore) FinishAnalysisSession(sessionID, status string, conversationID *string, conceptCount int, errMsg string) error {
	now := time.Now()
	_, err := s.db.Exec(rebind(`UPDATE analysis_sessions SET status = ?, conversation_id = ?, concept_count = ?, error = ?, completed_at = ?
		WHERE id = ?`),
		status, conversationID, conceptCount, errMsg, now, sessionID)
	if err != nil {
		return fmt.Errorf("failed to finish analysis session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisSessionsByUserID(userID int64, limit int) ([]AnalysisSession, error) {
	rows, err := s.db.Query(rebind(`SELECT id, user_id, conversation_id, status, concept_count, error, started_at, completed_at
		FROM analysis_sessions WHERE user_id = ? ORDER BY started_at DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis sessions: %w", err)
	}
	defer rows.Close()

	var sessions []AnalysisSession
	for rows.Next() {
		var sess AnalysisSession
		var convID sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.UserID, &convID, &sess.Status, &sess.ConceptCount, &sess.Error, &sess.StartedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis session row: %w", err)
		}
		if convID.Valid {
			sess.ConversationID = &convID.String
		}
		if completedAt.Valid {
			sess.CompletedAt = &completedAt.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// InsertRequestLog records one API request for analytics. Failures are the
// caller's to ignore; analytics never block request handling.
func (s *PostgresStore) InsertRequestLog(entry *RequestLog) error {
	_, err := s.db.Exec(rebind(`INSERT INTO request_logs (timestamp, user_id, endpoint, method, status_code, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?)`),
		time.Now(), entry.UserID, entry.Endpoint, entry.Method, entry.StatusCode, entry.LatencyMs)
	if err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}
	return nil
}
