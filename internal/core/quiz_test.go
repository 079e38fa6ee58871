package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validQuestion() QuizQuestion {
	return QuizQuestion{
		Question:    "What is the average lookup cost of a hash table?",
		Options:     []string{"O(1)", "O(log n)", "O(n)", "O(n log n)"},
		AnswerIndex: 0,
		Explanation: "Hash tables compute an index from the key, so lookups take constant time on average.",
	}
}

func TestValidateQuizQuestion(t *testing.T) {
	t.Run("valid question passes", func(t *testing.T) {
		assert.NoError(t, ValidateQuizQuestion(validQuestion()))
	})

	t.Run("empty question", func(t *testing.T) {
		q := validQuestion()
		q.Question = "  "
		assert.Error(t, ValidateQuizQuestion(q))
	})

	t.Run("wrong option count", func(t *testing.T) {
		q := validQuestion()
		q.Options = q.Options[:3]
		assert.Error(t, ValidateQuizQuestion(q))
	})

	t.Run("answer index out of range", func(t *testing.T) {
		q := validQuestion()
		q.AnswerIndex = 4
		assert.Error(t, ValidateQuizQuestion(q))

		q.AnswerIndex = -1
		assert.Error(t, ValidateQuizQuestion(q))
	})

	t.Run("duplicate options", func(t *testing.T) {
		q := validQuestion()
		q.Options[3] = "o(1)"
		assert.Error(t, ValidateQuizQuestion(q))
	})

	t.Run("explanation too short", func(t *testing.T) {
		q := validQuestion()
		q.Explanation = "Because it just is."
		assert.Error(t, ValidateQuizQuestion(q))
	})

	t.Run("negative question needs negation in explanation", func(t *testing.T) {
		q := validQuestion()
		q.Question = "Which of these is NOT a property of hash tables?"
		q.Explanation = "Hash tables always provide ordered iteration over keys in every standard implementation available."
		assert.Error(t, ValidateQuizQuestion(q))

		q.Explanation = "Ordered iteration is not a hash table property, the other three options all are properties."
		assert.NoError(t, ValidateQuizQuestion(q))
	})
}

func TestValidateNegativeNLPQuestion(t *testing.T) {
	base := QuizQuestion{
		Question:    "Which of the following is NOT a part of Natural Language Processing?",
		Options:     []string{"Sentiment analysis", "Image processing", "Machine translation", "Tokenization"},
		Explanation: "Image processing works on pixels rather than words, so it is not a natural language processing task.",
	}

	t.Run("NLP task as the answer is contradictory", func(t *testing.T) {
		q := base
		q.AnswerIndex = 0 // sentiment analysis is an NLP task
		assert.Error(t, ValidateQuizQuestion(q))
	})

	t.Run("non-NLP task as the answer passes", func(t *testing.T) {
		q := base
		q.AnswerIndex = 1
		assert.NoError(t, ValidateQuizQuestion(q))
	})

	t.Run("NLP-looking answer outside the lists is rejected", func(t *testing.T) {
		q := base
		q.Options = []string{"Sentiment analysis", "Image processing", "Machine translation", "Text summarization"}
		q.AnswerIndex = 3
		assert.Error(t, ValidateQuizQuestion(q))
	})
}

func TestIsNegativeQuestion(t *testing.T) {
	assert.True(t, isNegativeQuestion("Which is NOT true?"))
	assert.True(t, isNegativeQuestion("All of these are valid except which one?"))
	assert.False(t, isNegativeQuestion("Which option describes a hash table?"))
}
