//go:build darwin || freebsd || linux

package dynamic

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unsafe"

	"github.com/ebitengine/purego"
	sitter "github.com/smacker/go-tree-sitter"
)

// Load dlopens path and calls the exported language function. Libraries stay
// mapped for the life of the process; grammars are never unloaded.
func (LibraryLoader) Load(path, symbol string) (*sitter.Language, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrLibraryNotFound
		}
		return nil, err
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen: %w", err)
	}

	sym, err := purego.Dlsym(handle, symbol)
	if err != nil || sym == 0 {
		return nil, ErrSymbolNotFound
	}

	var language func() uintptr
	purego.RegisterFunc(&language, sym)

	ptr := language()
	if ptr == 0 {
		return nil, fmt.Errorf("%w: %s returned nil", ErrSymbolNotFound, symbol)
	}

	// TSLanguage starts with its uint32 ABI version.
	version := *(*uint32)(unsafe.Pointer(ptr))
	if version < minCompatibleABI || version > maxCompatibleABI {
		return nil, fmt.Errorf("%w: got %d, want %d..%d", ErrIncompatibleABI, version, minCompatibleABI, maxCompatibleABI)
	}

	return sitter.NewLanguage(unsafe.Pointer(ptr)), nil
}
