package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Binary Search Explained"`, "Binary Search Explained"},
		{"'Quoted Title'", "Quoted Title"},
		{"Trailing Period.", "Trailing Period"},
		{"  \nWhitespace Title\t ", "Whitespace Title"},
		{"Already Clean", "Already Clean"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTitle(tt.in))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefghij", 5))
}
