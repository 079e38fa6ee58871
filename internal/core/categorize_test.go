package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDomainByKeywords(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		want       string
		conclusive bool
	}{
		{
			name:       "clearly technical",
			content:    "We debugged the algorithm, refactored the function and added a database index via the api.",
			want:       DomainTechnical,
			conclusive: true,
		},
		{
			name:       "clearly non-technical",
			content:    "A conversation about cooking this recipe and its nutrition profile.",
			want:       DomainNonTechnical,
			conclusive: true,
		},
		{
			name:       "mixed content",
			content:    "Using python and sql to analyze finance and investing data for a business.",
			want:       DomainMixed,
			conclusive: true,
		},
		{
			name:       "inconclusive defaults to technical",
			content:    "Short note about nothing in particular.",
			want:       DomainTechnical,
			conclusive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conclusive := DetectDomainByKeywords(tt.content)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.conclusive, conclusive)
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	existing := []string{"Programming > Algorithms", "Cooking"}

	t.Run("exact match wins", func(t *testing.T) {
		got := NormalizeCategory("Cooking", existing, nil, DomainNonTechnical)
		assert.Equal(t, "Cooking", got)
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		got := NormalizeCategory("cooking", existing, nil, DomainNonTechnical)
		assert.Equal(t, "Cooking", got)
	})

	t.Run("keyword mapping", func(t *testing.T) {
		got := NormalizeCategory("React Hooks", nil, nil, DomainTechnical)
		assert.Equal(t, "Web Development", got)
	})

	t.Run("learned mapping", func(t *testing.T) {
		learned := map[string]string{"random stuff": "Finance"}
		got := NormalizeCategory("Random Stuff", nil, learned, DomainTechnical)
		assert.Equal(t, "Finance", got)
	})

	t.Run("technical fallback", func(t *testing.T) {
		got := NormalizeCategory("Zzzzz", nil, nil, DomainTechnical)
		assert.Equal(t, "Programming", got)
	})

	t.Run("non-technical fallback", func(t *testing.T) {
		got := NormalizeCategory("Zzzzz", nil, nil, DomainNonTechnical)
		assert.Equal(t, "General", got)
	})

	t.Run("mixed keeps raw category", func(t *testing.T) {
		got := NormalizeCategory("Zzzzz", nil, nil, DomainMixed)
		assert.Equal(t, "Zzzzz", got)
	})

	t.Run("empty everything", func(t *testing.T) {
		got := NormalizeCategory("", nil, nil, "")
		assert.Equal(t, "General", got)
	})
}

func TestSplitJoinCategoryPath(t *testing.T) {
	assert.Equal(t, []string{"Programming", "Algorithms"}, SplitCategoryPath("Programming > Algorithms"))
	assert.Equal(t, []string{"Solo"}, SplitCategoryPath("Solo"))
	assert.Equal(t, []string{"General"}, SplitCategoryPath("  "))
	assert.Equal(t, "Programming > Algorithms", JoinCategoryPath([]string{"Programming", "Algorithms"}))
}
