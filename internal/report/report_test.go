package report

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/sg/core"
	"github.com/gnolang/sg/language"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestFormatIssues(t *testing.T) {
	t.Parallel()
	source := NewSourceCode([]byte("let = 1;\n"))
	issues := []Issue{{
		Rule:     "syntax-error",
		Filename: "a.js",
		Message:  `unexpected "="`,
		Start:    Position{Line: 1, Column: 5},
		End:      Position{Line: 1, Column: 6},
	}}

	expected := "error: syntax-error\n" +
		" --> a.js:1:5\n" +
		"  |\n" +
		"1 | let = 1;\n" +
		"  |     ^\n" +
		"  = unexpected \"=\"\n" +
		"\n"
	assert.Equal(t, expected, FormatIssues(issues, source))
}

func TestFormatIssuesWithNote(t *testing.T) {
	t.Parallel()
	source := NewSourceCode([]byte("a\n\tfoo(\n"))
	out := FormatIssues([]Issue{{
		Rule:     "syntax-error",
		Filename: "b.js",
		Message:  `missing ")"`,
		Note:     "parsed as javascript",
		Start:    Position{Line: 2, Column: 6},
		End:      Position{Line: 2, Column: 6},
	}}, source)

	assert.Contains(t, out, "2 |         foo(\n")
	assert.Contains(t, out, "note: parsed as javascript")
}

func TestFormatIssuesOutOfRange(t *testing.T) {
	t.Parallel()
	out := FormatIssues([]Issue{{
		Rule:     "syntax-error",
		Filename: "c.js",
		Message:  "broken",
		Start:    Position{Line: 10, Column: 1},
		End:      Position{Line: 10, Column: 2},
	}}, NewSourceCode([]byte("x")))
	assert.Contains(t, out, "   | broken\n")
}

func TestGroupByFile(t *testing.T) {
	t.Parallel()
	byFile, files := GroupByFile([]Issue{
		{Filename: "b.go"}, {Filename: "a.go"}, {Filename: "b.go"},
	})
	assert.Equal(t, []string{"a.go", "b.go"}, files)
	assert.Len(t, byFile["b.go"], 2)
}

func TestVisualColumn(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line     string
		column   int
		expected int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"\tx", 2, 8},
		{"a\tx", 3, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, visualColumn(tt.line, tt.column), "%q:%d", tt.line, tt.column)
	}
}

func TestFormatTree(t *testing.T) {
	t.Parallel()
	root, err := core.NewRoot("let a = 1;", language.JavaScript)
	require.NoError(t, err)

	named := FormatTree(root.Root(), false)
	assert.Contains(t, named, "program [1:1-1:11]\n")
	assert.Contains(t, named, "      identifier [1:5-1:6] \"a\"\n")
	assert.NotContains(t, named, "\"let\"")

	all := FormatTree(root.Root(), true)
	assert.Contains(t, all, "let [1:1-1:4] \"let\"")
}

func TestFormatEnv(t *testing.T) {
	t.Parallel()
	root, err := core.NewRoot("foo(1)", language.JavaScript)
	require.NoError(t, err)

	env := core.NewMetaVarEnv()
	env.Insert("A", root.Root())
	env.InsertMulti("B", nil)
	assert.Equal(t, "$A single \"foo(1)\"\n$B multi \"\"\n", FormatEnv(env))
}
