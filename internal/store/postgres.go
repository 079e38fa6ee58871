package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewPostgresStoreFromDB wraps an existing connection, used by tests.
func NewPostgresStoreFromDB(db *sql.DB) (*PostgresStore, error) {
	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $1, $2, ... for PostgreSQL.
func rebind(query string) string {
	n := 1
	out := strings.Builder{}
	for _, ch := range query {
		if ch == '?' {
			out.WriteString(fmt.Sprintf("$%d", n))
			n++
		} else {
			out.WriteRune(ch)
		}
	}
	return out.String()
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		external_user_id TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY, -- UUID
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'chat' CHECK (source IN ('chat', 'youtube', 'manual')),
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS concepts (
		id TEXT PRIMARY KEY, -- UUID
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'General',
		category_path TEXT NOT NULL DEFAULT '["General"]', -- JSON array of segments
		summary TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		key_points TEXT NOT NULL DEFAULT '[]',       -- JSON array
		examples TEXT NOT NULL DEFAULT '[]',         -- JSON array
		related_concepts TEXT NOT NULL DEFAULT '[]', -- JSON array
		key_takeaway TEXT NOT NULL DEFAULT '',
		analogy TEXT NOT NULL DEFAULT '',
		practical_tips TEXT NOT NULL DEFAULT '[]', -- JSON array
		confidence_score REAL NOT NULL DEFAULT 0.8,
		is_technique BOOLEAN NOT NULL DEFAULT FALSE,
		embedding TEXT, -- JSON array of float32
		occurrence_count INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, title)
	);
	CREATE INDEX IF NOT EXISTS idx_concepts_user_category ON concepts (user_id, category);

	CREATE TABLE IF NOT EXISTS occurrences (
		id TEXT PRIMARY KEY, -- UUID
		concept_id TEXT NOT NULL REFERENCES concepts (id) ON DELETE CASCADE,
		conversation_id TEXT NOT NULL REFERENCES conversations (id) ON DELETE CASCADE,
		snippet TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL DEFAULT 0.8,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (concept_id, conversation_id)
	);

	CREATE TABLE IF NOT EXISTS code_snippets (
		id TEXT PRIMARY KEY, -- UUID
		concept_id TEXT NOT NULL REFERENCES concepts (id) ON DELETE CASCADE,
		language TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		code TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY, -- UUID
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		path TEXT NOT NULL, -- JSON array of segments
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, path)
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY, -- UUID
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		concept_id TEXT REFERENCES concepts (id) ON DELETE SET NULL,
		rating INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analysis_sessions (
		id TEXT PRIMARY KEY, -- UUID
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		conversation_id TEXT REFERENCES conversations (id) ON DELETE SET NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'running', 'completed', 'failed')),
		concept_count INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS request_logs (
		id SERIAL PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		user_id INTEGER,
		endpoint TEXT NOT NULL,
		method TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS category_learnings (
		content_key TEXT NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		content_preview TEXT NOT NULL DEFAULT '',
		old_category TEXT NOT NULL,
		new_category TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 1.0,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (content_key, user_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// marshalJSON serializes a rich field into its text column form. Nil slices
// become empty JSON arrays so columns never hold SQL NULLs.
func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal field: %w", err)
	}
	if string(b) == "null" {
		return "[]", nil
	}
	return string(b), nil
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
