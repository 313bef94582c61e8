package core

import (
	"errors"
	"fmt"
)

// ErrInvalidTemplate is wrapped by every TemplateError.
var ErrInvalidTemplate = errors.New("invalid replacement template")

// TemplateError reports a replacement template that does not parse under its
// grammar. A template with syntax errors cannot be split into edits safely.
type TemplateError struct {
	Lang     string
	Template string
	Offset   int // byte offset of the first syntax error in the template
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s replacement template %q: %v", e.Lang, e.Template, e.Err)
	}
	return fmt.Sprintf("invalid %s replacement template %q: syntax error at offset %d", e.Lang, e.Template, e.Offset)
}

func (e *TemplateError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidTemplate, e.Err}
	}
	return []error{ErrInvalidTemplate}
}

// Replacer renders replacement text from the captures of one match.
type Replacer interface {
	GenerateReplacement(env *MetaVarEnv) (string, error)
}

var (
	_ Replacer = Template{}
	_ Replacer = Node{}
)

// GenerateReplacement returns the fragment's own text. A fragment used as a
// replacement is not reparsed and ignores the environment.
func (n Node) GenerateReplacement(*MetaVarEnv) (string, error) {
	return n.Text(), nil
}

// Template is replacement text containing meta-variables, bound to the
// grammar it is parsed with.
type Template struct {
	text string
	lang Language
}

// NewTemplate creates a template for lang.
func NewTemplate(text string, lang Language) Template {
	return Template{text: text, lang: lang}
}

func (t Template) Text() string       { return t.text }
func (t Template) Language() Language { return t.lang }

// GenerateReplacement substitutes every placeholder bound in env and returns
// the resulting text. Placeholders missing from env keep their text.
func (t Template) GenerateReplacement(env *MetaVarEnv) (string, error) {
	p, err := t.parse()
	if err != nil {
		return "", err
	}
	edits := collectEdits(p.root, p.offsets, t.lang.ExpandoChar(), env)

	if p.offsets == nil {
		return applyEdits(p.root.Source(), edits, identityOffset), nil
	}
	return applyEdits(t.text, edits, p.offsets.toOriginal), nil
}

// Edits returns the edits GenerateReplacement applies, in application order,
// including the trailing sentinel. Positions are offsets into the template
// after preprocessing.
func (t Template) Edits(env *MetaVarEnv) ([]Edit, error) {
	p, err := t.parse()
	if err != nil {
		return nil, err
	}
	return collectEdits(p.root, p.offsets, t.lang.ExpandoChar(), env), nil
}

type parsedTemplate struct {
	root    *Root
	offsets *offsetMap // nil when marker and expando agree or alignment failed
}

func (t Template) parse() (parsedTemplate, error) {
	processed := t.lang.PreProcessPattern(t.text)
	root, err := NewRoot(processed, t.lang)
	if err != nil {
		return parsedTemplate{}, &TemplateError{Lang: t.lang.Name(), Template: t.text, Err: err}
	}
	if bad, ok := root.Root().FirstError(); ok {
		return parsedTemplate{}, &TemplateError{Lang: t.lang.Name(), Template: t.text, Offset: bad.StartByte()}
	}

	var offsets *offsetMap
	if t.lang.MetaVarChar() != t.lang.ExpandoChar() {
		if m, ok := alignExpando(t.text, processed, t.lang.MetaVarChar(), t.lang.ExpandoChar()); ok {
			offsets = m
		}
	}
	return parsedTemplate{root: root, offsets: offsets}, nil
}

// GenerateReplacement renders text as a template of lang.
func GenerateReplacement(text string, lang Language, env *MetaVarEnv) (string, error) {
	return NewTemplate(text, lang).GenerateReplacement(env)
}

// collectEdits walks the tree left to right and records one edit per bound
// placeholder leaf. A placeholder is never descended into, so the edits come
// out sorted and disjoint.
func collectEdits(root *Root, origin *offsetMap, expando rune, env *MetaVarEnv) []Edit {
	var edits []Edit
	stack := []Node{root.Root()}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if text, ok := metaVarReplacement(node, origin, expando, env); ok {
			edits = append(edits, Edit{
				Position:      node.StartByte(),
				DeletedLength: node.EndByte() - node.StartByte(),
				InsertedText:  text,
			})
			continue
		}
		children := node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	// flush the tail of the source
	edits = append(edits, Edit{Position: len(root.Source())})
	return edits
}

func metaVarReplacement(node Node, origin *offsetMap, expando rune, env *MetaVarEnv) (string, bool) {
	if !node.IsLeaf() {
		return "", false
	}
	mv, ok := origin.metaVarAt(node.StartByte(), node.Text(), expando)
	if !ok || !mv.IsNamed() {
		return "", false
	}
	res, ok := env.Get(mv.Name)
	if !ok {
		return "", false
	}
	return res.Text(), true
}
