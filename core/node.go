package core

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrNoGrammar is returned when a language has no tree-sitter grammar bound.
	ErrNoGrammar = errors.New("language has no grammar")
	// ErrParse is returned when tree-sitter gives up on the input.
	ErrParse = errors.New("failed to parse source")
)

// Root owns a parsed syntax tree together with the source it was built from.
// Every Node handed out by a Root refers back to it, so the tree lives at
// least as long as any fragment taken from it.
type Root struct {
	tree   *sitter.Tree
	source string
	lang   Language
}

// NewRoot parses src with the grammar of lang.
func NewRoot(src string, lang Language) (*Root, error) {
	tsLang := lang.TSLanguage()
	if tsLang == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, lang.Name())
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return nil, fmt.Errorf("%w as %s: %v", ErrParse, lang.Name(), err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w as %s", ErrParse, lang.Name())
	}

	return &Root{tree: tree, source: src, lang: lang}, nil
}

// Root returns the root node of the tree.
func (r *Root) Root() Node {
	return Node{root: r, inner: r.tree.RootNode()}
}

// Source returns the text the tree was parsed from.
func (r *Root) Source() string { return r.source }

// Lang returns the grammar the tree was parsed with.
func (r *Root) Lang() Language { return r.lang }

// Node is a fragment of a parsed tree: a contiguous byte span of the source
// and the subtree rooted there.
type Node struct {
	root  *Root
	inner *sitter.Node
}

// Range is a half-open byte span [Start, End).
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

func (n Node) StartByte() int { return int(n.inner.StartByte()) }
func (n Node) EndByte() int   { return int(n.inner.EndByte()) }

func (n Node) Range() Range {
	return Range{Start: n.StartByte(), End: n.EndByte()}
}

// Text returns the source text covered by the node, verbatim.
func (n Node) Text() string {
	return n.root.source[n.StartByte():n.EndByte()]
}

// Kind returns the grammar symbol of the node.
func (n Node) Kind() string { return n.inner.Type() }

func (n Node) IsNamed() bool { return n.inner.IsNamed() }

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.inner.ChildCount() == 0 }

// IsError reports whether the node is an ERROR node or a node the parser
// inserted to recover.
func (n Node) IsError() bool { return n.inner.Type() == "ERROR" || n.inner.IsMissing() }

// IsMissing reports whether the parser inserted the node to recover from an
// error. Missing nodes are zero width.
func (n Node) IsMissing() bool { return n.inner.IsMissing() }

// HasError reports whether the subtree contains any syntax error.
func (n Node) HasError() bool { return n.inner.HasError() }

// Children returns the direct children in document order.
func (n Node) Children() []Node {
	count := int(n.inner.ChildCount())
	children := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.inner.Child(i)
		if child == nil {
			continue
		}
		children = append(children, Node{root: n.root, inner: child})
	}
	return children
}

// Root returns the tree owner this fragment borrows from.
func (n Node) Root() *Root { return n.root }

// Position returns the zero-based row and column of the node start.
func (n Node) Position() (row, column int) {
	p := n.inner.StartPoint()
	return int(p.Row), int(p.Column)
}

// EndPosition returns the zero-based row and column just past the node.
func (n Node) EndPosition() (row, column int) {
	p := n.inner.EndPoint()
	return int(p.Row), int(p.Column)
}

// ToSexp renders the subtree as an s-expression of named nodes.
func (n Node) ToSexp() string { return n.inner.String() }

// FirstError returns the first ERROR or MISSING node in document order.
func (n Node) FirstError() (Node, bool) {
	errs := n.Errors()
	if len(errs) == 0 {
		return Node{}, false
	}
	return errs[0], true
}

// Errors returns every outermost ERROR or MISSING node in document order.
func (n Node) Errors() []Node {
	var errs []Node
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.IsError() {
			errs = append(errs, cur)
			continue
		}
		if !cur.HasError() {
			continue
		}
		children := cur.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return errs
}
