package core

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Language is the capability surface every grammar exposes to the engine.
// Both compiled-in grammars and grammars loaded at runtime implement it, so
// the same parse and replacement pipeline runs over either.
type Language interface {
	// Name returns the canonical language name.
	Name() string
	// TSLanguage returns the tree-sitter grammar, or nil when the language
	// has no grammar bound to it.
	TSLanguage() *sitter.Language
	// PreProcessPattern rewrites a pattern or template so it parses under
	// the grammar.
	PreProcessPattern(query string) string
	// MetaVarChar is the user-facing meta-variable marker.
	MetaVarChar() rune
	// ExpandoChar replaces the marker before parsing.
	ExpandoChar() rune
}

// DefaultMetaVarChar is the marker used unless a grammar overrides it.
const DefaultMetaVarChar = '$'
