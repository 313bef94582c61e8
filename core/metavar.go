package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MetaVarKind defines the kind of placeholder a leaf encodes.
type MetaVarKind int

const (
	MetaCapture      MetaVarKind = iota + 1 // $NAME
	MetaMultiCapture                        // $$$NAME
	MetaDropped                             // $_
	MetaMultiple                            // $$$
)

func (k MetaVarKind) String() string {
	switch k {
	case MetaCapture:
		return "capture"
	case MetaMultiCapture:
		return "multi-capture"
	case MetaDropped:
		return "dropped"
	case MetaMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// MetaVariable is a placeholder recognized in a leaf token.
type MetaVariable struct {
	Kind MetaVarKind
	Name string // empty for anonymous placeholders
}

func (m MetaVariable) String() string {
	if m.Name == "" {
		return fmt.Sprintf("MetaVariable(%s)", m.Kind)
	}
	return fmt.Sprintf("MetaVariable(%q, %s)", m.Name, m.Kind)
}

// IsNamed reports whether the placeholder binds a name in the environment.
func (m MetaVariable) IsNamed() bool {
	return m.Kind == MetaCapture || m.Kind == MetaMultiCapture
}

// ExtractMetaVar reports whether src, the literal text of a leaf, encodes a
// placeholder introduced by marker, and returns it.
//
//	$A      capture "A"
//	$$$ARGS multi-capture "ARGS"
//	$_      dropped
//	$$$     multiple
func ExtractMetaVar(src string, marker rune) (MetaVariable, bool) {
	ellipsis := strings.Repeat(string(marker), 3)
	if src == ellipsis {
		return MetaVariable{Kind: MetaMultiple}, true
	}
	if trimmed, ok := strings.CutPrefix(src, ellipsis); ok {
		if !isMetaVarName(trimmed) {
			return MetaVariable{}, false
		}
		return MetaVariable{Kind: MetaMultiCapture, Name: trimmed}, true
	}

	trimmed, ok := strings.CutPrefix(src, string(marker))
	if !ok {
		return MetaVariable{}, false
	}
	if trimmed == "_" {
		return MetaVariable{Kind: MetaDropped}, true
	}
	if !isMetaVarName(trimmed) {
		return MetaVariable{}, false
	}
	return MetaVariable{Kind: MetaCapture, Name: trimmed}, true
}

// ExpandMetaVarChar rewrites every marker run that introduces a placeholder
// to use expando instead, so the text parses as an identifier under grammars
// that reject the marker. Runs of one or three markers followed by a name
// start, and bare runs of three, are rewritten; other text is left alone.
func ExpandMetaVarChar(query string, marker, expando rune) string {
	if marker == expando || !strings.ContainsRune(query, marker) {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + len(query)/4)

	i := 0
	for i < len(query) {
		r, size := utf8.DecodeRuneInString(query[i:])
		if r != marker {
			sb.WriteString(query[i : i+size])
			i += size
			continue
		}

		count := 0
		j := i
		for j < len(query) {
			r, size := utf8.DecodeRuneInString(query[j:])
			if r != marker {
				break
			}
			count++
			j += size
		}

		next, _ := utf8.DecodeRuneInString(query[j:])
		nameFollows := j < len(query) && isMetaVarStart(next)
		sigil := marker
		if (nameFollows && (count == 1 || count == 3)) || (!nameFollows && count == 3) {
			sigil = expando
		}
		for range count {
			sb.WriteRune(sigil)
		}
		i = j
	}
	return sb.String()
}

func isMetaVarName(s string) bool {
	if s == "" || !isMetaVarStart(rune(s[0])) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isMetaVarChar(s[i]) {
			return false
		}
	}
	return true
}

func isMetaVarStart(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isMetaVarChar(c byte) bool {
	return isMetaVarStart(rune(c)) || ('0' <= c && c <= '9')
}
