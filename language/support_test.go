package language

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/gnolang/sg/core"
)

func TestFromPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path     string
		expected SupportLang
		ok       bool
	}{
		{"main.go", Go, true},
		{"src/app.JS", JavaScript, true},
		{"lib/component.tsx", Tsx, true},
		{"types.d.ts", TypeScript, true},
		{"script.py", Python, true},
		{"style.scss", Css, true},
		{"index.html", Html, true},
		{"build/Dockerfile", Dockerfile, true},
		{"Containerfile", Dockerfile, true},
		{"release.dockerfile", Dockerfile, true},
		{".github/workflows/ci.yml", Yaml, true},
		{"crate/src/lib.rs", Rust, true},
		{"Makefile", 0, false},
		{"notes.txt", 0, false},
		{"noext", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := FromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFromExtension(t *testing.T) {
	t.Parallel()
	l, ok := FromExtension("js")
	assert.True(t, ok)
	assert.Equal(t, JavaScript, l)

	l, ok = FromExtension(".YML")
	assert.True(t, ok)
	assert.Equal(t, Yaml, l)

	_, ok = FromExtension("mojo")
	assert.False(t, ok)
	_, ok = FromExtension("")
	assert.False(t, ok)
}

func TestFromName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		expected SupportLang
	}{
		{"go", Go},
		{"golang", Go},
		{"JavaScript", JavaScript},
		{"js", JavaScript},
		{"ts", TypeScript},
		{"c++", Cpp},
		{"c#", CSharp},
		{" py ", Python},
		{"yml", Yaml},
		{"docker", Dockerfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FromName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := FromName("cobol")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestAllSortedAndValid(t *testing.T) {
	t.Parallel()
	all := All()
	require.Len(t, all, len(specs))
	for i, l := range all {
		assert.True(t, l.IsValid())
		assert.NotNil(t, l.TSLanguage(), l.Name())
		assert.NotEmpty(t, l.Extensions(), l.Name())
		if i > 0 {
			assert.Less(t, all[i-1].Name(), l.Name())
		}
	}
	assert.False(t, SupportLang(0).IsValid())
	assert.Nil(t, SupportLang(0).TSLanguage())
	assert.Equal(t, "SupportLang(0)", SupportLang(0).String())
}

func TestExpandoChar(t *testing.T) {
	t.Parallel()
	micro := []SupportLang{Bash, C, Cpp, CSharp, Dockerfile, Go, Kotlin, Python, Ruby, Rust}
	for _, l := range micro {
		assert.Equal(t, 'µ', l.ExpandoChar(), l.Name())
	}
	assert.Equal(t, '_', Css.ExpandoChar())
	assert.Equal(t, 'z', Html.ExpandoChar())
	assert.Equal(t, 'z', Lua.ExpandoChar())
	for _, l := range []SupportLang{Java, JavaScript, Tsx, TypeScript, Yaml} {
		assert.Equal(t, '$', l.ExpandoChar(), l.Name())
	}
	for _, l := range All() {
		assert.Equal(t, '$', l.MetaVarChar(), l.Name())
	}
}

func TestPreProcessPattern(t *testing.T) {
	t.Parallel()
	tests := []struct {
		lang     SupportLang
		pattern  string
		expected string
	}{
		{JavaScript, "let $A = $$$B", "let $A = $$$B"},
		{Python, "def $F($$$ARGS): pass", "def µF(µµµARGS): pass"},
		{Go, "fmt.Println($_)", "fmt.Println(µ_)"},
		{Css, ".a { color: $C; }", ".a { color: _C; }"},
		{Html, "<div class=$CLS></div>", "<div class=zCLS></div>"},
		{Dockerfile, "FROM $IMAGE:1.0", "FROM µIMAGE:1.0"},
		{Rust, "let price = $5;", "let price = $5;"},
		{Lua, "print($A)", "print(zA)"},
		{Bash, "echo $A", "echo µA"},
	}

	for _, tt := range tests {
		t.Run(tt.lang.Name(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.lang.PreProcessPattern(tt.pattern))
		})
	}
}

func TestPlaceholderRendersInEveryLanguage(t *testing.T) {
	t.Parallel()
	templates := map[SupportLang]string{
		Bash:       "echo $A",
		C:          "int a = $A;",
		Cpp:        "int a = $A;",
		CSharp:     "class C { int a = $A; }",
		Css:        ".a { color: $A; }",
		Dockerfile: "FROM $A:1.0\n",
		Go:         "a := $A\n",
		Html:       "<p>$A</p>",
		Java:       "int a = $A;",
		JavaScript: "let a = $A;",
		Kotlin:     "val a = $A",
		Lua:        "print($A)",
		Python:     "a = $A\n",
		Ruby:       "a = $A\n",
		Rust:       "let a = $A;",
		Tsx:        "let a = $A;",
		TypeScript: "let a = $A;",
		Yaml:       "a: $A\n",
	}
	require.Len(t, templates, len(All()))

	value, err := core.NewRoot("x", JavaScript)
	require.NoError(t, err)
	env := core.NewMetaVarEnv()
	require.True(t, env.Insert("A", value.Root()))

	for _, l := range All() {
		template, ok := templates[l]
		require.True(t, ok, "no template for %s", l)
		t.Run(l.Name(), func(t *testing.T) {
			t.Parallel()
			root, err := core.NewRoot(l.PreProcessPattern(template), l)
			require.NoError(t, err)
			assert.False(t, root.Root().HasError(), root.Root().ToSexp())

			got, err := core.GenerateReplacement(template, l, env)
			require.NoError(t, err)
			assert.Equal(t, strings.ReplaceAll(template, "$A", "x"), got)
		})
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()
	type config struct {
		Lang SupportLang `json:"lang" yaml:"lang"`
	}

	data, err := json.Marshal(config{Lang: Python})
	require.NoError(t, err)
	assert.JSONEq(t, `{"lang":"python"}`, string(data))

	var decoded config
	require.NoError(t, json.Unmarshal([]byte(`{"lang":"py"}`), &decoded))
	assert.Equal(t, Python, decoded.Lang)

	out, err := yamlv3.Marshal(config{Lang: TypeScript})
	require.NoError(t, err)
	assert.Equal(t, "lang: typescript\n", string(out))

	require.NoError(t, yamlv3.Unmarshal([]byte("lang: Go\n"), &decoded))
	assert.Equal(t, Go, decoded.Lang)

	err = yamlv3.Unmarshal([]byte("lang: cobol\n"), &decoded)
	assert.ErrorIs(t, err, ErrUnknownLanguage)

	_, err = json.Marshal(config{})
	assert.Error(t, err)
}
