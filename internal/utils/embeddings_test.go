package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		score, err := CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		score, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, score, 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		score, err := CosineSimilarity([]float32{1, 1}, []float32{-1, -1})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, score, 1e-6)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
		assert.Error(t, err)
	})

	t.Run("zero vector scores zero", func(t *testing.T) {
		score, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
		require.NoError(t, err)
		assert.Zero(t, score)
	})

	t.Run("empty vectors", func(t *testing.T) {
		_, err := CosineSimilarity(nil, []float32{1})
		assert.Error(t, err)
	})
}
