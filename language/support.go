package language

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/dockerfile"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/gnolang/sg/core"
)

// ErrUnknownLanguage is returned when a name matches no builtin language.
var ErrUnknownLanguage = errors.New("unknown builtin language")

// SupportLang enumerates the grammars compiled into the binary.
// The zero value is not a language.
type SupportLang uint8

const (
	Bash SupportLang = iota + 1
	C
	Cpp
	CSharp
	Css
	Dockerfile
	Go
	Html
	Java
	JavaScript
	Kotlin
	Lua
	Python
	Ruby
	Rust
	Tsx
	TypeScript
	Yaml
)

var _ core.Language = Go

// expando characters for grammars whose identifiers cannot contain '$', or
// where '$' starts a construct of its own (shell expansions)
const (
	expandoMicro  = 'µ'
	expandoCss    = '_'
	expandoLetter = 'z'
)

type langSpec struct {
	name       string
	aliases    []string
	extensions []string
	fileNames  []string
	expando    rune
	grammar    func() *sitter.Language
}

var specs = map[SupportLang]langSpec{
	Bash: {
		name:       "bash",
		aliases:    []string{"sh"},
		extensions: []string{"sh", "bash", "bats", "zsh"},
		expando:    expandoMicro,
		grammar:    bash.GetLanguage,
	},
	C: {
		name:       "c",
		extensions: []string{"c", "h"},
		expando:    expandoMicro,
		grammar:    c.GetLanguage,
	},
	Cpp: {
		name:       "cpp",
		aliases:    []string{"c++"},
		extensions: []string{"cc", "cpp", "cxx", "hpp", "hxx", "hh"},
		expando:    expandoMicro,
		grammar:    cpp.GetLanguage,
	},
	CSharp: {
		name:       "csharp",
		aliases:    []string{"cs", "c#"},
		extensions: []string{"cs"},
		expando:    expandoMicro,
		grammar:    csharp.GetLanguage,
	},
	Css: {
		name:       "css",
		extensions: []string{"css", "scss"},
		expando:    expandoCss,
		grammar:    css.GetLanguage,
	},
	Dockerfile: {
		name:       "dockerfile",
		aliases:    []string{"docker", "containerfile"},
		extensions: []string{"dockerfile"},
		fileNames:  []string{"Dockerfile", "Containerfile"},
		expando:    expandoMicro,
		grammar:    dockerfile.GetLanguage,
	},
	Go: {
		name:       "go",
		aliases:    []string{"golang"},
		extensions: []string{"go"},
		expando:    expandoMicro,
		grammar:    golang.GetLanguage,
	},
	Html: {
		name:       "html",
		extensions: []string{"html", "htm", "xhtml"},
		expando:    expandoLetter,
		grammar:    html.GetLanguage,
	},
	Java: {
		name:       "java",
		extensions: []string{"java"},
		expando:    core.DefaultMetaVarChar,
		grammar:    java.GetLanguage,
	},
	JavaScript: {
		name:       "javascript",
		aliases:    []string{"js", "jsx"},
		extensions: []string{"js", "mjs", "cjs", "jsx"},
		expando:    core.DefaultMetaVarChar,
		grammar:    javascript.GetLanguage,
	},
	Kotlin: {
		name:       "kotlin",
		aliases:    []string{"kt"},
		extensions: []string{"kt", "ktm", "kts"},
		expando:    expandoMicro,
		grammar:    kotlin.GetLanguage,
	},
	Lua: {
		name:       "lua",
		extensions: []string{"lua"},
		expando:    expandoLetter,
		grammar:    lua.GetLanguage,
	},
	Python: {
		name:       "python",
		aliases:    []string{"py"},
		extensions: []string{"py", "py3", "pyi", "bzl"},
		expando:    expandoMicro,
		grammar:    python.GetLanguage,
	},
	Ruby: {
		name:       "ruby",
		aliases:    []string{"rb"},
		extensions: []string{"rb", "rbw", "gemspec"},
		expando:    expandoMicro,
		grammar:    ruby.GetLanguage,
	},
	Rust: {
		name:       "rust",
		aliases:    []string{"rs"},
		extensions: []string{"rs"},
		expando:    expandoMicro,
		grammar:    rust.GetLanguage,
	},
	Tsx: {
		name:       "tsx",
		extensions: []string{"tsx"},
		expando:    core.DefaultMetaVarChar,
		grammar:    tsx.GetLanguage,
	},
	TypeScript: {
		name:       "typescript",
		aliases:    []string{"ts"},
		extensions: []string{"ts", "cts", "mts"},
		expando:    core.DefaultMetaVarChar,
		grammar:    typescript.GetLanguage,
	},
	Yaml: {
		name:       "yaml",
		aliases:    []string{"yml"},
		extensions: []string{"yaml", "yml"},
		expando:    core.DefaultMetaVarChar,
		grammar:    yaml.GetLanguage,
	},
}

var (
	byName      = make(map[string]SupportLang)
	byExtension = make(map[string]SupportLang)
	byFileName  = make(map[string]SupportLang)
)

func init() {
	for lang, spec := range specs {
		byName[spec.name] = lang
		for _, alias := range spec.aliases {
			byName[alias] = lang
		}
		for _, ext := range spec.extensions {
			byExtension[ext] = lang
		}
		for _, name := range spec.fileNames {
			byFileName[name] = lang
		}
	}
}

// All returns every builtin language ordered by name.
func All() []SupportLang {
	langs := make([]SupportLang, 0, len(specs))
	for lang := range specs {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		return specs[langs[i]].name < specs[langs[j]].name
	})
	return langs
}

// FromName resolves a canonical name or alias, ignoring case.
func FromName(name string) (SupportLang, error) {
	if lang, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return lang, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
}

// FromPath resolves the language governing path by file name, then extension.
func FromPath(path string) (SupportLang, bool) {
	base := filepath.Base(path)
	if lang, ok := byFileName[base]; ok {
		return lang, true
	}
	ext := filepath.Ext(base)
	if ext == "" {
		return 0, false
	}
	return FromExtension(ext)
}

// FromExtension resolves a file extension without its leading dot.
func FromExtension(ext string) (SupportLang, bool) {
	lang, ok := byExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return lang, ok
}

// IsValid reports whether l names a compiled-in grammar.
func (l SupportLang) IsValid() bool {
	_, ok := specs[l]
	return ok
}

func (l SupportLang) Name() string { return specs[l].name }

func (l SupportLang) String() string {
	if !l.IsValid() {
		return fmt.Sprintf("SupportLang(%d)", uint8(l))
	}
	return l.Name()
}

// Extensions returns the file extensions claimed by l, without dots.
func (l SupportLang) Extensions() []string {
	return append([]string(nil), specs[l].extensions...)
}

func (l SupportLang) TSLanguage() *sitter.Language {
	spec, ok := specs[l]
	if !ok {
		return nil
	}
	return spec.grammar()
}

func (l SupportLang) MetaVarChar() rune { return core.DefaultMetaVarChar }

func (l SupportLang) ExpandoChar() rune {
	if spec, ok := specs[l]; ok {
		return spec.expando
	}
	return core.DefaultMetaVarChar
}

// PreProcessPattern swaps meta-variable markers for the expando character in
// grammars that do not accept '$' inside identifiers.
func (l SupportLang) PreProcessPattern(query string) string {
	return core.ExpandMetaVarChar(query, l.MetaVarChar(), l.ExpandoChar())
}

func (l SupportLang) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLanguage, uint8(l))
	}
	return []byte(l.Name()), nil
}

func (l *SupportLang) UnmarshalText(text []byte) error {
	lang, err := FromName(string(text))
	if err != nil {
		return err
	}
	*l = lang
	return nil
}

func (l SupportLang) MarshalYAML() (interface{}, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

func (l *SupportLang) UnmarshalYAML(value *yamlv3.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	return l.UnmarshalText([]byte(name))
}
