package dynamic

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/gnolang/sg/core"
)

// Registration describes a grammar to load at runtime.
type Registration struct {
	Name        string   `yaml:"name"`
	LibraryPath string   `yaml:"libraryPath"`
	Symbol      string   `yaml:"languageSymbol,omitempty"`
	Extensions  []string `yaml:"extensions"`
	MetaVarChar string   `yaml:"metaVarChar,omitempty"`
	ExpandoChar string   `yaml:"expandoChar,omitempty"`
}

// symbol returns the exported language function, tree_sitter_<name> unless
// configured otherwise.
func (r Registration) symbol() string {
	if r.Symbol != "" {
		return r.Symbol
	}
	return "tree_sitter_" + strings.ReplaceAll(r.Name, "-", "_")
}

type grammar struct {
	name       string
	path       string
	extensions []string
	metaVar    rune
	expando    rune
	ts         *sitter.Language
}

// Registry holds the custom languages of one run. Register everything before
// handing the registry to concurrent users; lookups are read-only afterwards.
type Registry struct {
	mu          sync.RWMutex
	byName      map[string]*grammar
	byExtension map[string]*grammar

	loader      Loader
	baseDir     string
	reserved    func(name string) bool
	reservedExt func(ext string) bool
	logger      *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoader replaces the shared library loader.
func WithLoader(l Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// WithBaseDir resolves relative library paths against dir.
func WithBaseDir(dir string) Option {
	return func(r *Registry) { r.baseDir = dir }
}

// WithReservedNames rejects registrations whose name satisfies reserved,
// typically the builtin language names.
func WithReservedNames(reserved func(name string) bool) Option {
	return func(r *Registry) { r.reserved = reserved }
}

// WithReservedExtensions rejects registrations claiming an extension that
// satisfies reserved. Extensions are passed normalized, without the dot.
func WithReservedExtensions(reserved func(ext string) bool) Option {
	return func(r *Registry) { r.reservedExt = reserved }
}

// WithLogger sets the logger used to report loaded grammars.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName:      make(map[string]*grammar),
		byExtension: make(map[string]*grammar),
		loader:      LibraryLoader{},
		reserved:    func(string) bool { return false },
		reservedExt: func(string) bool { return false },
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates and loads regs. Invalid descriptors reject the whole
// call before anything is loaded. Grammars that fail to load are reported
// as *LoadError values joined together; the others are registered.
func (r *Registry) Register(regs ...Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validate(regs); err != nil {
		return err
	}

	var errs []error
	for _, reg := range regs {
		g, err := r.load(reg)
		if err != nil {
			r.logger.Warn("custom language not loaded",
				zap.String("language", reg.Name),
				zap.String("path", g.path),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		r.byName[g.name] = g
		for _, ext := range g.extensions {
			r.byExtension[ext] = g
		}
		r.logger.Debug("custom language registered",
			zap.String("language", g.name),
			zap.String("path", g.path),
			zap.Strings("extensions", g.extensions))
	}
	return errors.Join(errs...)
}

func (r *Registry) validate(regs []Registration) error {
	names := make(map[string]bool, len(regs))
	exts := make(map[string]string)
	for _, reg := range regs {
		name := reg.Name
		switch {
		case name == "":
			return fmt.Errorf("%w: empty name", ErrInvalidRegistration)
		case reg.LibraryPath == "":
			return fmt.Errorf("%w: %q has no libraryPath", ErrInvalidRegistration, name)
		case r.reserved(name):
			return fmt.Errorf("%w: %q is a builtin language", ErrDuplicateLanguage, name)
		case names[name] || r.byName[name] != nil:
			return fmt.Errorf("%w: %q", ErrDuplicateLanguage, name)
		}
		names[name] = true

		for _, field := range []struct{ key, value string }{
			{"metaVarChar", reg.MetaVarChar},
			{"expandoChar", reg.ExpandoChar},
		} {
			if field.value != "" && utf8.RuneCountInString(field.value) != 1 {
				return fmt.Errorf("%w: %q %s must be a single character, got %q", ErrInvalidRegistration, name, field.key, field.value)
			}
		}

		for _, ext := range reg.Extensions {
			ext = normalizeExtension(ext)
			if ext == "" {
				return fmt.Errorf("%w: %q has an empty extension", ErrInvalidRegistration, name)
			}
			if r.reservedExt(ext) {
				return fmt.Errorf("%w: extension %q of %q belongs to a builtin language", ErrDuplicateLanguage, ext, name)
			}
			if owner, ok := exts[ext]; ok {
				return fmt.Errorf("%w: extension %q claimed by %q and %q", ErrDuplicateLanguage, ext, owner, name)
			}
			if owner := r.byExtension[ext]; owner != nil {
				return fmt.Errorf("%w: extension %q claimed by %q and %q", ErrDuplicateLanguage, ext, owner.name, name)
			}
			exts[ext] = name
		}
	}
	return nil
}

func (r *Registry) load(reg Registration) (*grammar, error) {
	path := reg.LibraryPath
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}

	g := &grammar{
		name:    reg.Name,
		path:    path,
		metaVar: core.DefaultMetaVarChar,
		expando: core.DefaultMetaVarChar,
	}
	if reg.MetaVarChar != "" {
		g.metaVar, _ = utf8.DecodeRuneInString(reg.MetaVarChar)
		g.expando = g.metaVar
	}
	if reg.ExpandoChar != "" {
		g.expando, _ = utf8.DecodeRuneInString(reg.ExpandoChar)
	}
	for _, ext := range reg.Extensions {
		g.extensions = append(g.extensions, normalizeExtension(ext))
	}

	ts, err := r.loader.Load(path, reg.symbol())
	if err != nil {
		return g, &LoadError{Name: reg.Name, Path: path, Symbol: reg.symbol(), Err: err}
	}
	if ts == nil {
		return g, &LoadError{Name: reg.Name, Path: path, Symbol: reg.symbol(), Err: ErrSymbolNotFound}
	}
	g.ts = ts
	return g, nil
}

// Lookup returns the custom language registered under name.
func (r *Registry) Lookup(name string) (DynamicLang, bool) {
	if r == nil {
		return DynamicLang{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byName[name]
	if !ok {
		return DynamicLang{}, false
	}
	return DynamicLang{name: g.name, g: g}, true
}

// FromPath returns the custom language claiming the extension of path.
func (r *Registry) FromPath(path string) (DynamicLang, bool) {
	if r == nil {
		return DynamicLang{}, false
	}
	ext := normalizeExtension(filepath.Ext(path))
	if ext == "" {
		return DynamicLang{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byExtension[ext]
	if !ok {
		return DynamicLang{}, false
	}
	return DynamicLang{name: g.name, g: g}, true
}

// Bind attaches an unbound handle, such as one decoded from configuration,
// to the grammar registered under its name.
func (r *Registry) Bind(l DynamicLang) (DynamicLang, error) {
	if l.IsBound() {
		return l, nil
	}
	bound, ok := r.Lookup(l.name)
	if !ok {
		return l, fmt.Errorf("%w: %q", ErrUnbound, l.name)
	}
	return bound, nil
}

// Names returns the registered language names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered languages.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
