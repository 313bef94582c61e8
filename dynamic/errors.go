package dynamic

import (
	"errors"
	"fmt"
)

// Registration errors
var (
	// ErrInvalidRegistration indicates a malformed custom language descriptor.
	ErrInvalidRegistration = errors.New("invalid custom language registration")

	// ErrDuplicateLanguage indicates a name or extension claimed twice.
	ErrDuplicateLanguage = errors.New("duplicate custom language")
)

// Loading errors
var (
	// ErrLibraryNotFound indicates the shared library is missing.
	ErrLibraryNotFound = errors.New("grammar library not found")

	// ErrSymbolNotFound indicates the library does not export the language symbol.
	ErrSymbolNotFound = errors.New("language symbol not found")

	// ErrIncompatibleABI indicates the grammar was generated for another tree-sitter ABI.
	ErrIncompatibleABI = errors.New("incompatible tree-sitter ABI version")

	// ErrLoadUnsupported indicates dynamic loading is not available on this platform.
	ErrLoadUnsupported = errors.New("dynamic grammar loading is not supported on this platform")
)

// ErrUnbound is reported by a DynamicLang that names a language but was
// never bound to a registry entry.
var ErrUnbound = errors.New("custom language is not registered")

// LoadError reports a grammar that could not be loaded. Other grammars in
// the same registration stay usable.
type LoadError struct {
	Name   string // declared language name
	Path   string // resolved library location
	Symbol string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load custom language %q from %s (symbol %s): %v", e.Name, e.Path, e.Symbol, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
