package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPathPrefix(t *testing.T) {
	assert.True(t, HasPathPrefix([]string{"A", "B", "C"}, []string{"A", "B"}))
	assert.True(t, HasPathPrefix([]string{"A"}, []string{"A"}))
	assert.False(t, HasPathPrefix([]string{"A", "B"}, []string{"A", "B", "C"}))
	assert.False(t, HasPathPrefix([]string{"AB"}, []string{"A"}))
	assert.True(t, HasPathPrefix([]string{"A"}, nil))
}

func TestRewritePath(t *testing.T) {
	t.Run("renames a segment across descendants", func(t *testing.T) {
		got, changed := RewritePath([]string{"Programming", "Web", "React"}, []string{"Programming", "Web"}, []string{"Programming", "Web Development"})
		assert.True(t, changed)
		assert.Equal(t, []string{"Programming", "Web Development", "React"}, got)
	})

	t.Run("moves a subtree to the top level", func(t *testing.T) {
		got, changed := RewritePath([]string{"Programming", "Databases"}, []string{"Programming", "Databases"}, []string{"Databases"})
		assert.True(t, changed)
		assert.Equal(t, []string{"Databases"}, got)
	})

	t.Run("segment match not string prefix", func(t *testing.T) {
		got, changed := RewritePath([]string{"WebAssembly"}, []string{"Web"}, []string{"Frontend"})
		assert.False(t, changed)
		assert.Equal(t, []string{"WebAssembly"}, got)
	})

	t.Run("unrelated path untouched", func(t *testing.T) {
		_, changed := RewritePath([]string{"Cooking"}, []string{"Programming"}, []string{"Engineering"})
		assert.False(t, changed)
	})
}
