package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJourneyAnalysisValidate(t *testing.T) {
	full := JourneyAnalysis{
		IdentifiedConcepts:  []string{"Binary Search"},
		NextLearningSteps:   []string{"Binary Search Trees"},
		LearningGapsSummary: "Comfortable with searching, shaky on tree balancing.",
	}
	assert.NoError(t, full.validate())

	t.Run("missing gaps summary", func(t *testing.T) {
		a := full
		a.LearningGapsSummary = "  "
		assert.Error(t, a.validate())
	})

	t.Run("no concepts and no next steps", func(t *testing.T) {
		a := full
		a.IdentifiedConcepts = nil
		a.NextLearningSteps = nil
		assert.Error(t, a.validate())
	})

	t.Run("next steps alone are enough", func(t *testing.T) {
		a := full
		a.IdentifiedConcepts = nil
		assert.NoError(t, a.validate())
	})
}
