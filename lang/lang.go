// Package lang provides SgLang, the language handle the rest of the tool
// works with. An SgLang is either a grammar compiled into the binary or a
// grammar loaded at runtime, and behaves the same either way.
package lang

import (
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/sg/core"
	"github.com/gnolang/sg/dynamic"
	"github.com/gnolang/sg/language"
)

var (
	// ErrNoLanguage means no builtin or custom grammar claims a name or path.
	ErrNoLanguage = errors.New("no applicable language")

	// ErrUnboundLanguage means a custom language handle was used before
	// being resolved against a registry.
	ErrUnboundLanguage = errors.New("custom language is not resolved")
)

// SgLang holds exactly one of a builtin or a custom language. The zero value
// holds neither.
type SgLang struct {
	builtin language.SupportLang
	custom  dynamic.DynamicLang
}

var _ core.Language = SgLang{}

// Builtin wraps a compiled-in language.
func Builtin(l language.SupportLang) SgLang {
	return SgLang{builtin: l}
}

// Custom wraps a runtime-loaded language.
func Custom(l dynamic.DynamicLang) SgLang {
	return SgLang{custom: l}
}

// FromPath resolves the language for path: builtin grammars first, then the
// custom grammars of reg. reg may be nil.
func FromPath(reg *dynamic.Registry, path string) (SgLang, bool) {
	if l, ok := language.FromPath(path); ok {
		return Builtin(l), true
	}
	if l, ok := reg.FromPath(path); ok {
		return Custom(l), true
	}
	return SgLang{}, false
}

// FromName resolves a language name or builtin alias.
func FromName(reg *dynamic.Registry, name string) (SgLang, error) {
	if l, err := language.FromName(name); err == nil {
		return Builtin(l), nil
	}
	if l, ok := reg.Lookup(name); ok {
		return Custom(l), nil
	}
	return SgLang{}, fmt.Errorf("%w: %q", ErrNoLanguage, name)
}

// IsValid reports whether l holds a language.
func (l SgLang) IsValid() bool {
	return l.builtin.IsValid() || l.custom.Name() != ""
}

// Builtin returns the builtin variant.
func (l SgLang) Builtin() (language.SupportLang, bool) {
	return l.builtin, l.builtin.IsValid()
}

// Custom returns the custom variant.
func (l SgLang) Custom() (dynamic.DynamicLang, bool) {
	return l.custom, l.custom.Name() != ""
}

// Resolve binds a custom handle decoded from configuration to reg.
func (l SgLang) Resolve(reg *dynamic.Registry) (SgLang, error) {
	custom, ok := l.Custom()
	if !ok || custom.IsBound() {
		return l, nil
	}
	bound, err := reg.Bind(custom)
	if err != nil {
		return l, fmt.Errorf("%w: %q", ErrNoLanguage, custom.Name())
	}
	return Custom(bound), nil
}

func (l SgLang) Name() string {
	switch {
	case l.builtin.IsValid():
		return l.builtin.Name()
	default:
		return l.custom.Name()
	}
}

func (l SgLang) String() string {
	if !l.IsValid() {
		return "<none>"
	}
	return l.Name()
}

func (l SgLang) TSLanguage() *sitter.Language {
	switch {
	case l.builtin.IsValid():
		return l.builtin.TSLanguage()
	case l.custom.Name() != "":
		return l.custom.TSLanguage()
	default:
		return nil
	}
}

func (l SgLang) PreProcessPattern(query string) string {
	switch {
	case l.builtin.IsValid():
		return l.builtin.PreProcessPattern(query)
	case l.custom.Name() != "":
		return l.custom.PreProcessPattern(query)
	default:
		return query
	}
}

func (l SgLang) MetaVarChar() rune {
	switch {
	case l.builtin.IsValid():
		return l.builtin.MetaVarChar()
	case l.custom.Name() != "":
		return l.custom.MetaVarChar()
	default:
		return core.DefaultMetaVarChar
	}
}

func (l SgLang) ExpandoChar() rune {
	switch {
	case l.builtin.IsValid():
		return l.builtin.ExpandoChar()
	case l.custom.Name() != "":
		return l.custom.ExpandoChar()
	default:
		return core.DefaultMetaVarChar
	}
}

// Extensions returns the file extensions the active variant claims.
func (l SgLang) Extensions() []string {
	if b, ok := l.Builtin(); ok {
		return b.Extensions()
	}
	if c, ok := l.Custom(); ok {
		return c.Extensions()
	}
	return nil
}

// Parse parses src with the language.
func (l SgLang) Parse(src string) (*core.Root, error) {
	if err := l.usable(); err != nil {
		return nil, err
	}
	return core.NewRoot(src, l)
}

// Template binds replacement text to the language.
func (l SgLang) Template(text string) core.Template {
	return core.NewTemplate(text, l)
}

func (l SgLang) usable() error {
	if !l.IsValid() {
		return ErrNoLanguage
	}
	if c, ok := l.Custom(); ok && !c.IsBound() {
		return fmt.Errorf("%w: %q", ErrUnboundLanguage, c.Name())
	}
	return nil
}

// MarshalText writes what the active variant writes, so a configured
// language reads the same whether it is builtin or custom.
func (l SgLang) MarshalText() ([]byte, error) {
	switch {
	case l.builtin.IsValid():
		return l.builtin.MarshalText()
	case l.custom.Name() != "":
		return l.custom.MarshalText()
	default:
		return nil, ErrNoLanguage
	}
}

// UnmarshalText decodes builtin names directly. Any other name yields an
// unbound custom language; call Resolve to bind it.
func (l *SgLang) UnmarshalText(text []byte) error {
	var builtin language.SupportLang
	if err := builtin.UnmarshalText(text); err == nil {
		*l = Builtin(builtin)
		return nil
	}
	var custom dynamic.DynamicLang
	if err := custom.UnmarshalText(text); err != nil {
		return err
	}
	*l = Custom(custom)
	return nil
}

func (l SgLang) MarshalYAML() (interface{}, error) {
	switch {
	case l.builtin.IsValid():
		return l.builtin.MarshalYAML()
	case l.custom.Name() != "":
		return l.custom.MarshalYAML()
	default:
		return nil, ErrNoLanguage
	}
}

func (l *SgLang) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	return l.UnmarshalText([]byte(name))
}

// NewRegistry returns a custom language registry that refuses to shadow
// builtin language names.
func NewRegistry(opts ...dynamic.Option) *dynamic.Registry {
	opts = append([]dynamic.Option{
		dynamic.WithReservedNames(isBuiltinName),
		dynamic.WithReservedExtensions(isBuiltinExtension),
	}, opts...)
	return dynamic.NewRegistry(opts...)
}

func isBuiltinName(name string) bool {
	_, err := language.FromName(name)
	return err == nil
}

func isBuiltinExtension(ext string) bool {
	_, ok := language.FromExtension(ext)
	return ok
}

// All lists the builtin languages followed by the custom languages of reg.
func All(reg *dynamic.Registry) []SgLang {
	var langs []SgLang
	for _, l := range language.All() {
		langs = append(langs, Builtin(l))
	}
	for _, name := range reg.Names() {
		if l, ok := reg.Lookup(name); ok {
			langs = append(langs, Custom(l))
		}
	}
	return langs
}
