package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignExpando(t *testing.T) {
	t.Parallel()
	original := "print($A, $B)"
	processed := ExpandMetaVarChar(original, '$', 'µ')
	require.Equal(t, "print(µA, µB)", processed)

	m, ok := alignExpando(original, processed, '$', 'µ')
	require.True(t, ok)

	tests := []struct {
		processed int
		original  int
	}{
		{0, 0},
		{6, 6},   // µA
		{8, 7},   // A
		{9, 8},   // ,
		{11, 10}, // µB
		{13, 11}, // B
		{15, 13}, // end
	}
	for _, tt := range tests {
		assert.Equal(t, tt.original, m.toOriginal(tt.processed), "offset %d", tt.processed)
	}
}

func TestAlignExpandoSameWidth(t *testing.T) {
	t.Parallel()
	m, ok := alignExpando("a $B c", "a _B c", '$', '_')
	require.True(t, ok)
	assert.Empty(t, m.processed)
	assert.Equal(t, 4, m.toOriginal(4))
}

func TestAlignExpandoRejectsOtherChanges(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		original  string
		processed string
	}{
		{"different text", "print($A)", "print(µB)"},
		{"shorter processed", "print($A)", "print(µA"},
		{"longer processed", "$A", "µA)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok := alignExpando(tt.original, tt.processed, '$', 'µ')
			assert.False(t, ok)
		})
	}
}

func TestApplyEdits(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		source   string
		edits    []Edit
		expected string
	}{
		{
			name:     "sentinel only",
			source:   "let a = 1",
			edits:    []Edit{{Position: 9}},
			expected: "let a = 1",
		},
		{
			name:   "growing and shrinking edits",
			source: "f($A, $LONGER)",
			edits: []Edit{
				{Position: 2, DeletedLength: 2, InsertedText: "xyz"},
				{Position: 6, DeletedLength: 7, InsertedText: "y"},
				{Position: 14},
			},
			expected: "f(xyz, y)",
		},
		{
			name:   "adjacent edits",
			source: "$A$B",
			edits: []Edit{
				{Position: 0, DeletedLength: 2, InsertedText: "1"},
				{Position: 2, DeletedLength: 2, InsertedText: "2"},
				{Position: 4},
			},
			expected: "12",
		},
		{
			name:   "empty replacement",
			source: "{ $$$B }",
			edits: []Edit{
				{Position: 2, DeletedLength: 4},
				{Position: 8},
			},
			expected: "{  }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, applyEdits(tt.source, tt.edits, identityOffset))
		})
	}
}

func TestApplyEditsThroughOffsetMap(t *testing.T) {
	t.Parallel()
	original := "print($A, $B)"
	processed := ExpandMetaVarChar(original, '$', 'µ')
	m, ok := alignExpando(original, processed, '$', 'µ')
	require.True(t, ok)

	// only µA is bound; µB must come back as $B
	edits := []Edit{
		{Position: 6, DeletedLength: 3, InsertedText: "42"},
		{Position: len(processed)},
	}
	assert.Equal(t, "print(42, $B)", applyEdits(original, edits, m.toOriginal))
}

func TestEditString(t *testing.T) {
	t.Parallel()
	e := Edit{Position: 3, DeletedLength: 2, InsertedText: "x"}
	assert.Equal(t, 5, e.End())
	assert.Equal(t, `Edit(3+2 -> "x")`, e.String())
}
