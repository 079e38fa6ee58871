package store

import (
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStoreOnce sync.Once
	testStore     *PostgresStore
	testStoreErr  error
)

// newTestStore connects to the database named by TEST_DATABASE_URL and
// truncates all tables. Skips the test when postgres is not available.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres tests")
	}

	testStoreOnce.Do(func() {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			testStoreErr = err
			return
		}
		if err := db.Ping(); err != nil {
			testStoreErr = err
			return
		}
		testStore, testStoreErr = NewPostgresStoreFromDB(db)
	})
	if testStoreErr != nil {
		t.Skipf("postgres not available: %v", testStoreErr)
	}

	_, err := testStore.db.Exec(`TRUNCATE users, conversations, concepts, occurrences, code_snippets,
		categories, feedback, analysis_sessions, request_logs, category_learnings CASCADE`)
	require.NoError(t, err)
	return testStore
}

func createTestUser(t *testing.T, s *PostgresStore, externalID string) *User {
	t.Helper()
	user, err := s.CreateUser(externalID, "hash")
	require.NoError(t, err)
	return user
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	missing, err := s.GetUserByExternalID("nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	user := createTestUser(t, s, "alice")
	assert.Equal(t, "alice", user.ExternalUserID)

	found, err := s.GetUserByExternalID("alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
}

func TestConceptRoundTrip(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "alice")

	concept := &Concept{
		UserID:          user.ID,
		Title:           "Binary Search",
		Category:        "Programming > Algorithms",
		CategoryPath:    []string{"Programming", "Algorithms"},
		Summary:         "Halve the search space each step.",
		KeyPoints:       []string{"requires sorted input"},
		Examples:        []Example{{Title: "Guessing game", Description: "Guess the midpoint"}},
		KeyTakeaway:     "log n comparisons",
		ConfidenceScore: 0.9,
		Embedding:       []float32{0.1, 0.2, 0.3},
	}
	require.NoError(t, s.CreateConcept(concept))
	require.NotEmpty(t, concept.ID)

	loaded, err := s.GetConceptByID(concept.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Binary Search", loaded.Title)
	assert.Equal(t, []string{"Programming", "Algorithms"}, loaded.CategoryPath)
	assert.Equal(t, []string{"requires sorted input"}, loaded.KeyPoints)
	require.Len(t, loaded.Examples, 1)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, loaded.Embedding)

	byTitle, err := s.GetConceptByTitle(user.ID, "binary SEARCH")
	require.NoError(t, err)
	require.NotNil(t, byTitle)
	assert.Equal(t, concept.ID, byTitle.ID)

	loaded.Summary = "Halve the search space until the target is found."
	require.NoError(t, s.UpdateConcept(loaded))

	results, err := s.GetConceptsByUserID(user.ID, "", "halve", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, s.DeleteConcept(concept.ID, user.ID))
	gone, err := s.GetConceptByID(concept.ID, user.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestOccurrenceIdempotence(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "alice")

	conv := &Conversation{UserID: user.ID, Title: "t", Content: "c"}
	require.NoError(t, s.CreateConversation(conv))

	concept := &Concept{UserID: user.ID, Title: "Recursion"}
	require.NoError(t, s.CreateConcept(concept))

	occ := &Occurrence{ConceptID: concept.ID, ConversationID: conv.ID, Confidence: 0.8}
	require.NoError(t, s.CreateOccurrence(occ))
	// Re-analyzing the same conversation must not duplicate the link.
	require.NoError(t, s.CreateOccurrence(&Occurrence{ConceptID: concept.ID, ConversationID: conv.ID, Confidence: 0.9}))

	occurrences, err := s.GetOccurrencesByConceptID(concept.ID)
	require.NoError(t, err)
	assert.Len(t, occurrences, 1)
}

func TestCategoryPathRewrite(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "alice")

	require.NoError(t, s.CreateCategory(&Category{UserID: user.ID, Path: []string{"Programming"}}))
	require.NoError(t, s.CreateCategory(&Category{UserID: user.ID, Path: []string{"Programming", "Web"}}))
	require.NoError(t, s.CreateCategory(&Category{UserID: user.ID, Path: []string{"Cooking"}}))

	concept := &Concept{
		UserID:       user.ID,
		Title:        "CSS Grid",
		Category:     "Programming > Web",
		CategoryPath: []string{"Programming", "Web"},
	}
	require.NoError(t, s.CreateConcept(concept))

	err := s.RewriteCategoryPaths(user.ID, func(path []string) ([]string, bool) {
		if len(path) >= 2 && path[0] == "Programming" && path[1] == "Web" {
			out := append([]string{"Programming", "Web Development"}, path[2:]...)
			return out, true
		}
		return path, false
	})
	require.NoError(t, err)

	cats, err := s.GetCategoriesByUserID(user.ID)
	require.NoError(t, err)
	var names []string
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Web Development")
	assert.NotContains(t, names, "Web")

	moved, err := s.GetConceptByID(concept.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Programming > Web Development", moved.Category)
	assert.Equal(t, []string{"Programming", "Web Development"}, moved.CategoryPath)
}

func TestCategoryLearningUpsert(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "alice")

	cl := &CategoryLearning{
		ContentKey:  "abc",
		UserID:      user.ID,
		OldCategory: "Random",
		NewCategory: "Finance",
	}
	require.NoError(t, s.UpsertCategoryLearning(cl))

	cl.NewCategory = "Investing"
	require.NoError(t, s.UpsertCategoryLearning(cl))

	learnings, err := s.GetCategoryLearnings(user.ID)
	require.NoError(t, err)
	require.Len(t, learnings, 1)
	assert.Equal(t, "Investing", learnings[0].NewCategory)
	assert.Equal(t, 1.0, learnings[0].Confidence)
}

func TestAnalysisSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "alice")

	session := &AnalysisSession{UserID: user.ID}
	require.NoError(t, s.CreateAnalysisSession(session))
	assert.Equal(t, SessionRunning, session.Status)

	conv := &Conversation{UserID: user.ID, Title: "t", Content: "c"}
	require.NoError(t, s.CreateConversation(conv))

	require.NoError(t, s.FinishAnalysisSession(session.ID, SessionCompleted, &conv.ID, 3, ""))

	sessions, err := s.GetAnalysisSessionsByUserID(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, SessionCompleted, sessions[0].Status)
	assert.Equal(t, 3, sessions[0].ConceptCount)
	require.NotNil(t, sessions[0].ConversationID)
	assert.Equal(t, conv.ID, *sessions[0].ConversationID)
	assert.NotNil(t, sessions[0].CompletedAt)
}
