package core

import "unicode/utf8"

// offsetMap translates byte offsets in a preprocessed template back to the
// template text the caller wrote, and remembers which expando runes were
// markers there. It is only built when preprocessing did nothing but swap
// marker runes for expando runes.
type offsetMap struct {
	// pairs of (preprocessed offset, original offset) at every rune where
	// the two encodings diverge in width, in ascending order
	processed []int
	original  []int
	// preprocessed offsets of expando runes rewritten from a marker
	converted map[int]bool
}

// alignExpando walks original and processed side by side. It fails when the
// two differ by anything other than marker -> expando substitutions.
func alignExpando(original, processed string, marker, expando rune) (*offsetMap, bool) {
	m := &offsetMap{converted: make(map[int]bool)}
	i, j := 0, 0
	for i < len(original) && j < len(processed) {
		r1, s1 := utf8.DecodeRuneInString(original[i:])
		r2, s2 := utf8.DecodeRuneInString(processed[j:])
		switch {
		case r1 == r2:
		case r1 == marker && r2 == expando:
			m.converted[j] = true
			if s1 != s2 {
				m.processed = append(m.processed, j+s2)
				m.original = append(m.original, i+s1)
			}
		default:
			return nil, false
		}
		i += s1
		j += s2
	}
	if i != len(original) || j != len(processed) {
		return nil, false
	}
	return m, true
}

// toOriginal converts an offset in the preprocessed text. Offsets always sit
// on rune boundaries since edits come from node spans.
func (m *offsetMap) toOriginal(pos int) int {
	delta := 0
	for k, p := range m.processed {
		if p > pos {
			break
		}
		delta = m.original[k] - p
	}
	return pos + delta
}

// metaVarAt recognizes the placeholder in a leaf starting at pos. Expando
// text the caller wrote literally is not a placeholder. A nil map trusts the
// leaf text.
func (m *offsetMap) metaVarAt(pos int, leaf string, expando rune) (MetaVariable, bool) {
	if m != nil && !m.converted[pos] {
		return MetaVariable{}, false
	}
	return ExtractMetaVar(leaf, expando)
}
