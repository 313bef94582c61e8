package dynamic

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/sg/core"
)

// DynamicLang is a handle to a grammar registered at runtime. A handle
// decoded from configuration only carries the name until a Registry binds it.
type DynamicLang struct {
	name string
	g    *grammar
}

var _ core.Language = DynamicLang{}

// Unbound returns a handle naming a custom language that is not bound yet.
func Unbound(name string) DynamicLang {
	return DynamicLang{name: name}
}

func (l DynamicLang) Name() string   { return l.name }
func (l DynamicLang) String() string { return l.name }

// IsBound reports whether the handle refers to a loaded grammar.
func (l DynamicLang) IsBound() bool { return l.g != nil }

// Extensions returns the file extensions claimed by the language.
func (l DynamicLang) Extensions() []string {
	if l.g == nil {
		return nil
	}
	return append([]string(nil), l.g.extensions...)
}

// LibraryPath returns where the grammar was loaded from.
func (l DynamicLang) LibraryPath() string {
	if l.g == nil {
		return ""
	}
	return l.g.path
}

// TSLanguage returns nil for an unbound handle.
func (l DynamicLang) TSLanguage() *sitter.Language {
	if l.g == nil {
		return nil
	}
	return l.g.ts
}

func (l DynamicLang) MetaVarChar() rune {
	if l.g == nil {
		return core.DefaultMetaVarChar
	}
	return l.g.metaVar
}

func (l DynamicLang) ExpandoChar() rune {
	if l.g == nil {
		return core.DefaultMetaVarChar
	}
	return l.g.expando
}

func (l DynamicLang) PreProcessPattern(query string) string {
	return core.ExpandMetaVarChar(query, l.MetaVarChar(), l.ExpandoChar())
}

var errEmptyName = errors.New("custom language name is empty")

// MarshalText writes the registered name.
func (l DynamicLang) MarshalText() ([]byte, error) {
	if l.name == "" {
		return nil, errEmptyName
	}
	return []byte(l.name), nil
}

// UnmarshalText yields an unbound handle; see Registry.Bind.
func (l *DynamicLang) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return errEmptyName
	}
	*l = Unbound(string(text))
	return nil
}

func (l DynamicLang) MarshalYAML() (interface{}, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

func (l *DynamicLang) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	return l.UnmarshalText([]byte(name))
}
