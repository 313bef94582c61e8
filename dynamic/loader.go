package dynamic

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Loader turns a grammar library on disk into a tree-sitter language.
type Loader interface {
	Load(path, symbol string) (*sitter.Language, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path, symbol string) (*sitter.Language, error)

func (f LoaderFunc) Load(path, symbol string) (*sitter.Language, error) {
	return f(path, symbol)
}

// ABI versions this build of tree-sitter can read.
const (
	minCompatibleABI = 13
	maxCompatibleABI = 14
)

// LibraryLoader loads grammars compiled as shared libraries, the same
// artifacts tree-sitter's own CLI produces.
type LibraryLoader struct{}

var _ Loader = LibraryLoader{}
