package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/sg/core"
	"github.com/gnolang/sg/lang"
)

var (
	// ErrInvalidBinding means a NAME=SNIPPET argument is malformed.
	ErrInvalidBinding = errors.New("invalid binding")

	// ErrConflictingBinding means a name is bound twice to different text.
	ErrConflictingBinding = errors.New("conflicting binding")

	// ErrInvalidSnippet means a bound snippet does not parse in the language.
	ErrInvalidSnippet = errors.New("snippet does not parse")
)

// Bindings are meta-variable captures written as source snippets. Each
// snippet is parsed in the rewrite language so the environment holds real
// syntax nodes, the same shape a matcher hands to the replacement engine.
type Bindings struct {
	Single map[string]string   `yaml:"single"`
	Multi  map[string][]string `yaml:"multi"`
}

// LoadBindings reads a bindings file.
func LoadBindings(path string) (Bindings, error) {
	var b Bindings
	f, err := os.Open(path)
	if err != nil {
		return b, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return b, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

// ParseBindArgs adds NAME=SNIPPET arguments to b.
func (b *Bindings) ParseBindArgs(single, multi []string) error {
	for _, arg := range single {
		name, snippet, err := splitBindArg(arg)
		if err != nil {
			return err
		}
		if b.Single == nil {
			b.Single = make(map[string]string)
		}
		if prev, ok := b.Single[name]; ok && prev != snippet {
			return fmt.Errorf("%w: $%s", ErrConflictingBinding, name)
		}
		b.Single[name] = snippet
	}
	for _, arg := range multi {
		name, snippet, err := splitBindArg(arg)
		if err != nil {
			return err
		}
		if b.Multi == nil {
			b.Multi = make(map[string][]string)
		}
		b.Multi[name] = append(b.Multi[name], snippet)
	}
	return nil
}

func splitBindArg(arg string) (string, string, error) {
	name, snippet, ok := strings.Cut(arg, "=")
	name = strings.TrimPrefix(strings.TrimSpace(name), "$")
	if !ok || name == "" {
		return "", "", fmt.Errorf("%w: %q, want NAME=SNIPPET", ErrInvalidBinding, arg)
	}
	return name, snippet, nil
}

// Env parses every snippet with l and builds the capture environment.
// A single binding captures the snippet root. A multi binding captures the
// top-level children of each of its snippets, in order.
func (b Bindings) Env(l lang.SgLang) (*core.MetaVarEnv, error) {
	env := core.NewMetaVarEnv()

	for _, name := range sortedKeys(b.Single) {
		root, err := parseSnippet(l, name, b.Single[name])
		if err != nil {
			return nil, err
		}
		if !env.Insert(name, root.Root()) {
			return nil, fmt.Errorf("%w: $%s", ErrConflictingBinding, name)
		}
	}

	for _, name := range sortedKeys(b.Multi) {
		var nodes []core.Node
		for _, snippet := range b.Multi[name] {
			root, err := parseSnippet(l, name, snippet)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, root.Root().Children()...)
		}
		if !env.InsertMulti(name, nodes) {
			return nil, fmt.Errorf("%w: $%s is bound as single and multi", ErrConflictingBinding, name)
		}
	}
	return env, nil
}

func parseSnippet(l lang.SgLang, name, snippet string) (*core.Root, error) {
	root, err := l.Parse(snippet)
	if err != nil {
		return nil, err
	}
	if bad, ok := root.Root().FirstError(); ok {
		return nil, fmt.Errorf("%w: $%s as %s at offset %d: %q", ErrInvalidSnippet, name, l, bad.StartByte(), snippet)
	}
	return root, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
