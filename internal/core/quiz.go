package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/recallhq/recall/internal/config"
	"github.com/recallhq/recall/internal/llm"
	"github.com/recallhq/recall/internal/metrics"
	"github.com/recallhq/recall/internal/store"
)

const (
	quizTemperature     = 0.3
	quizMaxAttempts     = 3
	quizMinValid        = 3
	quizDefaultCount    = 5
	minExplanationWords = 10
)

// QuizQuestion is one multiple-choice question. AnswerIndex points into
// Options.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// Quiz is a generated set of questions for one concept. ValidationPassed
// is false when not enough questions survived validation and the set is
// partial.
type Quiz struct {
	ConceptID        string         `json:"concept_id"`
	ConceptTitle     string         `json:"concept_title"`
	Questions        []QuizQuestion `json:"questions"`
	ValidationPassed bool           `json:"validation_passed"`
	Warning          string         `json:"warning,omitempty"`
}

type QuizService struct {
	store *store.PostgresStore
	llm   LLMClient
}

func NewQuizService(s *store.PostgresStore, client LLMClient) *QuizService {
	return &QuizService{store: s, llm: client}
}

// Generate builds a quiz for a concept, retrying generation until enough
// questions pass validation. Returns nil when the concept does not exist.
func (qs *QuizService) Generate(ctx context.Context, userID int64, conceptID string, numQuestions int, customAPIKey string) (*Quiz, error) {
	concept, err := qs.store.GetConceptByID(conceptID, userID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, nil
	}
	if numQuestions <= 0 {
		numQuestions = quizDefaultCount
	}

	snippets, err := qs.store.GetCodeSnippetsByConceptID(conceptID)
	if err != nil {
		log.Printf("Warning: could not load code snippets for quiz: %v", err)
	}

	m := metrics.Get()
	var valid []QuizQuestion
	for attempt := 1; attempt <= quizMaxAttempts && len(valid) < quizMinValid; attempt++ {
		start := time.Now()
		raw, err := qs.llm.Complete(ctx, []llm.Message{
			{Role: "system", Content: quizSystemPrompt},
			{Role: "user", Content: quizUserPrompt(concept, snippets, numQuestions)},
		}, llm.Options{
			Model:        config.AppConfig.QuizModel,
			Temperature:  quizTemperature,
			JSONMode:     true,
			CustomAPIKey: customAPIKey,
		})
		m.LLMCallDuration.WithLabelValues("quiz").Observe(time.Since(start).Seconds())
		if err != nil {
			m.LLMCallsTotal.WithLabelValues("quiz", "error").Inc()
			log.Printf("Quiz generation attempt %d failed: %v", attempt, err)
			continue
		}
		m.LLMCallsTotal.WithLabelValues("quiz", "success").Inc()

		var parsed struct {
			Questions []QuizQuestion `json:"questions"`
		}
		if err := json.Unmarshal([]byte(cleanJSONPayload(raw)), &parsed); err != nil {
			log.Printf("Quiz generation attempt %d returned invalid JSON: %v", attempt, err)
			continue
		}

		valid = valid[:0]
		for _, q := range parsed.Questions {
			if err := ValidateQuizQuestion(q); err != nil {
				log.Printf("Dropping invalid quiz question (%v): %q", err, q.Question)
				continue
			}
			valid = append(valid, q)
			if len(valid) == numQuestions {
				break
			}
		}
	}

	if valid == nil {
		valid = []QuizQuestion{}
	}
	quiz := &Quiz{
		ConceptID:        concept.ID,
		ConceptTitle:     concept.Title,
		Questions:        valid,
		ValidationPassed: len(valid) >= quizMinValid,
	}
	if !quiz.ValidationPassed {
		// All attempts exhausted: hand back what validated rather than fail.
		log.Printf("Quiz for concept %s: only %d valid questions after %d attempts", conceptID, len(valid), quizMaxAttempts)
		quiz.Warning = "Some questions failed validation"
	}
	return quiz, nil
}

// ValidateQuizQuestion enforces the structural rules a usable question must
// meet.
func ValidateQuizQuestion(q QuizQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("empty question")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("expected 4 options, got %d", len(q.Options))
	}
	if q.AnswerIndex < 0 || q.AnswerIndex > 3 {
		return fmt.Errorf("answer index %d out of range", q.AnswerIndex)
	}
	seen := make(map[string]bool, 4)
	for _, opt := range q.Options {
		norm := strings.ToLower(strings.TrimSpace(opt))
		if norm == "" {
			return fmt.Errorf("empty option")
		}
		if seen[norm] {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[norm] = true
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fmt.Errorf("empty explanation")
	}
	if len(strings.Fields(q.Explanation)) < minExplanationWords {
		return fmt.Errorf("explanation too short")
	}
	if err := validateNegativeQuestion(q); err != nil {
		return err
	}
	return nil
}

// Known NLP tasks, which must never be the answer to a "not part of NLP"
// question, and non-NLP tasks, which legitimately can be.
var nlpTasks = []string{
	"speech recognition", "text analysis", "sentiment analysis",
	"machine translation", "named entity recognition", "text classification",
	"language modeling", "natural language understanding", "text generation",
	"parsing", "tokenization", "part-of-speech tagging",
}

var nonNLPTasks = []string{
	"image processing", "computer vision", "image recognition",
	"facial recognition", "object detection", "image classification",
	"photo editing", "graphics rendering", "3d modeling",
}

var nlpHintWords = []string{"text", "language", "speech", "translation", "sentiment"}

// validateNegativeQuestion catches "which of these is NOT ..." questions
// whose answer contradicts the question. NLP questions get a dedicated
// check against known task lists; other negative questions only require a
// negation cue in the explanation.
func validateNegativeQuestion(q QuizQuestion) error {
	question := strings.ToLower(q.Question)
	answer := strings.ToLower(q.Options[q.AnswerIndex])

	if strings.Contains(question, "nlp") || strings.Contains(question, "natural language processing") {
		if strings.Contains(question, "not") || strings.Contains(question, "which of the following") {
			for _, task := range nlpTasks {
				if strings.Contains(answer, task) {
					return fmt.Errorf("answer %q is an NLP task and contradicts the question", q.Options[q.AnswerIndex])
				}
			}
			for _, task := range nonNLPTasks {
				if strings.Contains(answer, task) {
					return nil
				}
			}
			for _, word := range nlpHintWords {
				if strings.Contains(answer, word) {
					return fmt.Errorf("answer %q looks NLP-related and contradicts the question", q.Options[q.AnswerIndex])
				}
			}
		}
		return nil
	}

	if isNegativeQuestion(question) && !hasNegationCue(q.Explanation) {
		return fmt.Errorf("negative question with affirmative explanation")
	}
	return nil
}

var negativeQuestionCues = []string{" not ", " except ", "incorrect", "false", " never "}

// isNegativeQuestion spots "which of these is NOT ..." style questions, where
// a generated explanation often contradicts the answer.
func isNegativeQuestion(question string) bool {
	lower := " " + strings.ToLower(question) + " "
	for _, cue := range negativeQuestionCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

var negationCues = []string{"not", "n't", "incorrect", "false", "never", "except", "rather than", "instead"}

func hasNegationCue(explanation string) bool {
	lower := strings.ToLower(explanation)
	for _, cue := range negationCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

const quizSystemPrompt = `You write multiple-choice quiz questions that test understanding, not memorization.

Respond with JSON only:
{"questions": [{"question": "...", "options": ["...", "...", "...", "..."], "answer_index": 0, "explanation": "..."}]}

Rules: exactly 4 distinct options per question, answer_index between 0 and 3, and an explanation of at least ten words saying why the answer is correct.`

func quizUserPrompt(concept *store.Concept, snippets []store.CodeSnippet, numQuestions int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d quiz questions about the concept %q.\n\n", numQuestions, concept.Title)
	fmt.Fprintf(&sb, "Summary: %s\n", concept.Summary)
	if concept.Details != "" {
		fmt.Fprintf(&sb, "Details: %s\n", concept.Details)
	}
	if len(concept.KeyPoints) > 0 {
		fmt.Fprintf(&sb, "Key points: %s\n", strings.Join(concept.KeyPoints, "; "))
	}
	for i, snip := range snippets {
		if i == 2 {
			break
		}
		fmt.Fprintf(&sb, "\nCode example (%s):\n%s\n", snip.Language, snip.Code)
	}
	return sb.String()
}
