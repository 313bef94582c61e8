//go:build !(darwin || freebsd || linux)

package dynamic

import (
	sitter "github.com/smacker/go-tree-sitter"
)

func (LibraryLoader) Load(path, symbol string) (*sitter.Language, error) {
	return nil, ErrLoadUnsupported
}
