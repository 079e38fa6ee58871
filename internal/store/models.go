package store

import "time"

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation is the source text concepts were extracted from.
// Source is one of "chat", "youtube" or "manual".
type Conversation struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Example is a practical insight or worked example attached to a concept.
type Example struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Concept is a single extracted learning topic. The list and object fields
// are persisted as JSON strings inside text columns.
type Concept struct {
	ID              string    `json:"id"` // UUID
	UserID          int64     `json:"user_id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`      // display string, " > " joined
	CategoryPath    []string  `json:"category_path"` // hierarchical segments
	Summary         string    `json:"summary"`
	Details         string    `json:"details"`
	KeyPoints       []string  `json:"key_points"`
	Examples        []Example `json:"examples,omitempty"`
	RelatedConcepts []string  `json:"related_concepts"`
	KeyTakeaway     string    `json:"key_takeaway"`
	Analogy         string    `json:"analogy,omitempty"`
	PracticalTips   []string  `json:"practical_tips,omitempty"`
	ConfidenceScore float64   `json:"confidence_score"`
	IsTechnique     bool      `json:"is_technique"`
	Embedding       []float32 `json:"-"` // internal, compared in Go
	OccurrenceCount int       `json:"occurrence_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Occurrence links a concept to the conversation it appeared in.
type Occurrence struct {
	ID             string    `json:"id"` // UUID
	ConceptID      string    `json:"concept_id"`
	ConversationID string    `json:"conversation_id"`
	Snippet        string    `json:"snippet,omitempty"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

type CodeSnippet struct {
	ID          string    `json:"id"` // UUID
	ConceptID   string    `json:"concept_id"`
	Language    string    `json:"language"`
	Description string    `json:"description,omitempty"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"created_at"`
}

type Category struct {
	ID           string    `json:"id"` // UUID
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	Path         []string  `json:"path"`
	ConceptCount int       `json:"concept_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Feedback struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"user_id"`
	ConceptID *string   `json:"concept_id,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SessionPending   = "pending"
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionFailed    = "failed"
)

// AnalysisSession tracks one extraction run.
type AnalysisSession struct {
	ID             string     `json:"id"` // UUID
	UserID         int64      `json:"user_id"`
	ConversationID *string    `json:"conversation_id,omitempty"`
	Status         string     `json:"status"`
	ConceptCount   int        `json:"concept_count"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// RequestLog is a per-request analytics row.
type RequestLog struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     *int64    `json:"user_id,omitempty"`
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	LatencyMs  int64     `json:"latency_ms"`
}

// CategoryLearning records a manual category correction so future
// extractions can be steered toward the user's preference.
type CategoryLearning struct {
	ContentKey     string    `json:"content_key"` // hash of the content snippet
	UserID         int64     `json:"user_id"`
	ContentPreview string    `json:"content_preview"`
	OldCategory    string    `json:"old_category"`
	NewCategory    string    `json:"new_category"`
	Confidence     float64   `json:"confidence"`
	UpdatedAt      time.Time `json:"updated_at"`
}
