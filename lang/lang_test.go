package lang

import (
	"encoding/json"
	"testing"
	"unsafe"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/sg/core"
	"github.com/gnolang/sg/dynamic"
	"github.com/gnolang/sg/language"
)

func testRegistry(t *testing.T, regs ...dynamic.Registration) *dynamic.Registry {
	t.Helper()
	loader := dynamic.LoaderFunc(func(string, string) (*sitter.Language, error) {
		return javascript.GetLanguage(), nil
	})
	reg := NewRegistry(dynamic.WithLoader(loader))
	require.NoError(t, reg.Register(regs...))
	return reg
}

func TestFromPath(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t,
		dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so", Extensions: []string{"mojo"}},
	)

	l, ok := FromPath(reg, "app.js")
	require.True(t, ok)
	b, isBuiltin := l.Builtin()
	assert.True(t, isBuiltin)
	assert.Equal(t, language.JavaScript, b)

	l, ok = FromPath(reg, "main.mojo")
	require.True(t, ok)
	c, isCustom := l.Custom()
	assert.True(t, isCustom)
	assert.Equal(t, "mojo", c.Name())

	_, ok = FromPath(reg, "README")
	assert.False(t, ok)

	l, ok = FromPath(nil, "main.go")
	require.True(t, ok)
	assert.Equal(t, "go", l.Name())
}

func TestFromName(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t, dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so"})

	l, err := FromName(reg, "py")
	require.NoError(t, err)
	assert.Equal(t, Builtin(language.Python), l)

	l, err = FromName(reg, "mojo")
	require.NoError(t, err)
	assert.Equal(t, "mojo", l.Name())

	_, err = FromName(reg, "cobol")
	assert.ErrorIs(t, err, ErrNoLanguage)
}

func TestRegistryRejectsBuiltinNames(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(dynamic.WithLoader(dynamic.LoaderFunc(func(string, string) (*sitter.Language, error) {
		return javascript.GetLanguage(), nil
	})))
	for _, name := range []string{"go", "golang", "Python"} {
		err := reg.Register(dynamic.Registration{Name: name, LibraryPath: "x.so"})
		assert.ErrorIs(t, err, dynamic.ErrDuplicateLanguage, name)
	}
	assert.Zero(t, reg.Len())
}

func TestRegistryRejectsBuiltinExtensions(t *testing.T) {
	t.Parallel()
	reg := NewRegistry(dynamic.WithLoader(dynamic.LoaderFunc(func(string, string) (*sitter.Language, error) {
		return javascript.GetLanguage(), nil
	})))
	for _, ext := range []string{"js", ".PY", "yml"} {
		err := reg.Register(dynamic.Registration{Name: "custom", LibraryPath: "x.so", Extensions: []string{"mojo", ext}})
		assert.ErrorIs(t, err, dynamic.ErrDuplicateLanguage, ext)
	}
	assert.Zero(t, reg.Len())

	require.NoError(t, reg.Register(dynamic.Registration{Name: "custom", LibraryPath: "x.so", Extensions: []string{"mojo"}}))
	l, ok := FromPath(reg, "main.mojo")
	require.True(t, ok)
	assert.Equal(t, "custom", l.Name())
}

func TestSerializationMatchesVariant(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t, dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so"})
	custom, ok := reg.Lookup("mojo")
	require.True(t, ok)

	tests := []struct {
		name    string
		lang    SgLang
		variant interface{}
	}{
		{"builtin", Builtin(language.Rust), language.Rust},
		{"custom", Custom(custom), custom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := json.Marshal(tt.lang)
			require.NoError(t, err)
			want, err := json.Marshal(tt.variant)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))

			got, err = yaml.Marshal(tt.lang)
			require.NoError(t, err)
			want, err = yaml.Marshal(tt.variant)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		})
	}

	_, err := json.Marshal(SgLang{})
	assert.Error(t, err)
}

func TestUnmarshalAndResolve(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t, dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so", Extensions: []string{"mojo"}})

	var cfg struct {
		Languages []SgLang `yaml:"languages"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("languages: [go, TS, mojo, nope]\n"), &cfg))
	require.Len(t, cfg.Languages, 4)

	assert.Equal(t, Builtin(language.Go), cfg.Languages[0])
	assert.Equal(t, Builtin(language.TypeScript), cfg.Languages[1])

	mojo := cfg.Languages[2]
	_, err := mojo.Parse("x")
	assert.ErrorIs(t, err, ErrUnboundLanguage)
	assert.Nil(t, mojo.TSLanguage())

	resolved, err := mojo.Resolve(reg)
	require.NoError(t, err)
	c, ok := resolved.Custom()
	require.True(t, ok)
	assert.True(t, c.IsBound())
	assert.Equal(t, []string{"mojo"}, resolved.Extensions())

	_, err = cfg.Languages[3].Resolve(reg)
	assert.ErrorIs(t, err, ErrNoLanguage)

	same, err := cfg.Languages[0].Resolve(reg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Languages[0], same)

	var fromJSON SgLang
	require.NoError(t, json.Unmarshal([]byte(`"kotlin"`), &fromJSON))
	assert.Equal(t, Builtin(language.Kotlin), fromJSON)
}

func TestDefaultCharsMatchAcrossVariants(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t, dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so"})
	custom, _ := reg.Lookup("mojo")

	builtin := Builtin(language.JavaScript)
	dyn := Custom(custom)

	assert.Equal(t, builtin.MetaVarChar(), dyn.MetaVarChar())
	assert.Equal(t, builtin.ExpandoChar(), dyn.ExpandoChar())
	for _, pattern := range []string{"let $A = $$$B", "f($_)", "$$$"} {
		assert.Equal(t, builtin.PreProcessPattern(pattern), dyn.PreProcessPattern(pattern))
	}
}

func TestDispatch(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t, dynamic.Registration{
		Name: "mojo", LibraryPath: "mojo.so", Extensions: []string{"mojo"}, ExpandoChar: "µ",
	})
	custom, _ := reg.Lookup("mojo")

	tests := []struct {
		lang    SgLang
		name    string
		expando rune
	}{
		{Builtin(language.Python), "python", 'µ'},
		{Builtin(language.Css), "css", '_'},
		{Custom(custom), "mojo", 'µ'},
		{SgLang{}, "", '$'},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.lang.Name())
		assert.Equal(t, tt.expando, tt.lang.ExpandoChar())
		assert.Equal(t, '$', tt.lang.MetaVarChar())
	}
	assert.Equal(t, "<none>", SgLang{}.String())
	assert.Nil(t, SgLang{}.TSLanguage())
	assert.Equal(t, "let $A", SgLang{}.PreProcessPattern("let $A"))
	assert.False(t, SgLang{}.IsValid())

	_, err := SgLang{}.Parse("x")
	assert.ErrorIs(t, err, ErrNoLanguage)
}

func TestHandleIsSmallAndComparable(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t, dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so"})
	custom, _ := reg.Lookup("mojo")

	a, b := Builtin(language.Go), Custom(custom)
	// a custom handle plus one tag word, whichever variant is held
	word := unsafe.Sizeof(uintptr(0))
	assert.Equal(t, unsafe.Sizeof(dynamic.DynamicLang{})+word, unsafe.Sizeof(SgLang{}))

	set := map[SgLang]bool{a: true, b: true}
	assert.True(t, set[Builtin(language.Go)])
	again, _ := reg.Lookup("mojo")
	assert.True(t, set[Custom(again)])
}

func TestParseAndReplaceThroughHandle(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t, dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so", Extensions: []string{"mojo"}})
	custom, _ := FromPath(reg, "x.mojo")

	for _, l := range []SgLang{Builtin(language.JavaScript), custom} {
		root, err := l.Parse("foo(1)")
		require.NoError(t, err)

		env := core.NewMetaVarEnv()
		env.Insert("A", root.Root())
		out, err := l.Template("let a = $A;").GenerateReplacement(env)
		require.NoError(t, err)
		assert.Equal(t, "let a = foo(1);", out, l.Name())
	}
}

func TestAll(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t,
		dynamic.Registration{Name: "zig", LibraryPath: "zig.so"},
		dynamic.Registration{Name: "mojo", LibraryPath: "mojo.so"},
	)
	all := All(reg)
	require.Len(t, all, len(language.All())+2)
	assert.Equal(t, "mojo", all[len(all)-2].Name())
	assert.Equal(t, "zig", all[len(all)-1].Name())
	assert.Len(t, All(nil), len(language.All()))
}
