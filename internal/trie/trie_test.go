package trie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertAndContains(t *testing.T) {
	t.Parallel()
	tr := New()
	tr.Insert([]string{"a", "b", "c"})
	tr.Insert([]string{"a", "b", "d"})
	tr.Insert([]string{"a", "b", "c"})

	assert.Equal(t, 2, tr.Len())
	assert.True(t, tr.Contains([]string{"a", "b", "c"}))
	assert.False(t, tr.Contains([]string{"a", "b"}))
	assert.False(t, tr.Contains([]string{"a", "b", "c", "e"}))
	assert.Equal(t, "a(b(c(*)d(*)))", tr.DebugString())
}

func TestHasPrefix(t *testing.T) {
	t.Parallel()
	tr := New()
	tr.Insert([]string{"vendor"})
	tr.Insert([]string{"web", "dist"})

	tests := []struct {
		sequence []string
		expected bool
	}{
		{[]string{"vendor"}, true},
		{[]string{"vendor", "lib", "a.js"}, true},
		{[]string{"web", "dist", "app.js"}, true},
		{[]string{"web"}, false},
		{[]string{"web", "src", "app.js"}, false},
		{[]string{"vendored"}, false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tr.HasPrefix(tt.sequence), "%v", tt.sequence)
	}
}

func TestEmptySequence(t *testing.T) {
	t.Parallel()
	tr := New()
	tr.Insert(nil)
	assert.Equal(t, 1, tr.Len())
	assert.True(t, tr.HasPrefix([]string{"anything"}))
	assert.Equal(t, "*", tr.DebugString())
}

func TestPathSet(t *testing.T) {
	t.Parallel()
	set := NewPathSet("node_modules", "./build/", "/tmp/out")

	tests := []struct {
		path     string
		expected bool
	}{
		{"node_modules", true},
		{"node_modules/react/index.js", true},
		{"build/gen.go", true},
		{"src/build/gen.go", false},
		{"/tmp/out/a.py", true},
		{"tmp/out/a.py", false},
		{"src/main.go", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, set.CoversPath(tt.path), tt.path)
	}

	var empty *Trie
	assert.False(t, empty.CoversPath("a"))
	assert.False(t, NewPathSet().CoversPath("a"))
}

func TestSplitPath(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SplitPath("."))
	assert.Equal(t, []string{"a", "b"}, SplitPath("a//b/"))
	assert.Equal(t, []string{"", "a"}, SplitPath("/a"))
}
