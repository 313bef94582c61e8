package core

import (
	"fmt"
	"sort"
	"strings"
)

// MatchResult is what a meta-variable is bound to: either a Single fragment
// or a Multi sequence of sibling fragments.
type MatchResult interface {
	// Text renders the binding as it appears in a replacement.
	Text() string
	matchResult()
}

// Single binds a meta-variable to exactly one fragment.
type Single struct {
	Node Node
}

// Multi binds an ellipsis meta-variable to zero or more fragments, in source order.
type Multi struct {
	Nodes []Node
}

func (Single) matchResult() {}
func (Multi) matchResult()  {}

// Text returns the fragment text verbatim.
func (s Single) Text() string { return s.Node.Text() }

// Text concatenates the fragment texts with nothing in between. Trivia that
// separated the fragments in the matched source, but was not part of any
// fragment, is not reproduced.
func (m Multi) Text() string {
	var sb strings.Builder
	for _, n := range m.Nodes {
		sb.WriteString(n.Text())
	}
	return sb.String()
}

// MetaVarEnv maps meta-variable names to their captures for one match.
// A matcher fills it while matching; the replacement engine only reads it.
type MetaVarEnv struct {
	single map[string]Node
	multi  map[string][]Node
}

// NewMetaVarEnv returns an empty environment.
func NewMetaVarEnv() *MetaVarEnv {
	return &MetaVarEnv{
		single: make(map[string]Node),
		multi:  make(map[string][]Node),
	}
}

// Insert binds name to a single fragment. Binding a name again to a
// fragment with different text is rejected and reported as false.
func (e *MetaVarEnv) Insert(name string, node Node) bool {
	if prev, ok := e.single[name]; ok {
		return prev.Text() == node.Text()
	}
	if _, ok := e.multi[name]; ok {
		return false
	}
	e.single[name] = node
	return true
}

// InsertMulti binds name to an ordered list of fragments.
func (e *MetaVarEnv) InsertMulti(name string, nodes []Node) bool {
	if prev, ok := e.multi[name]; ok {
		return Multi{Nodes: prev}.Text() == Multi{Nodes: nodes}.Text()
	}
	if _, ok := e.single[name]; ok {
		return false
	}
	e.multi[name] = append([]Node(nil), nodes...)
	return true
}

// Get returns the binding for name.
func (e *MetaVarEnv) Get(name string) (MatchResult, bool) {
	if e == nil {
		return nil, false
	}
	if n, ok := e.single[name]; ok {
		return Single{Node: n}, true
	}
	if ns, ok := e.multi[name]; ok {
		return Multi{Nodes: ns}, true
	}
	return nil, false
}

// Single returns the fragment bound to name by Insert.
func (e *MetaVarEnv) Single(name string) (Node, bool) {
	if e == nil {
		return Node{}, false
	}
	n, ok := e.single[name]
	return n, ok
}

// Multi returns the fragments bound to name by InsertMulti.
func (e *MetaVarEnv) Multi(name string) ([]Node, bool) {
	if e == nil {
		return nil, false
	}
	ns, ok := e.multi[name]
	return ns, ok
}

// Len returns the number of bound names.
func (e *MetaVarEnv) Len() int {
	if e == nil {
		return 0
	}
	return len(e.single) + len(e.multi)
}

// Names returns every bound name in sorted order.
func (e *MetaVarEnv) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, e.Len())
	for name := range e.single {
		names = append(names, name)
	}
	for name := range e.multi {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Texts flattens the environment to name -> replacement text.
func (e *MetaVarEnv) Texts() map[string]string {
	out := make(map[string]string, e.Len())
	for _, name := range e.Names() {
		res, _ := e.Get(name)
		out[name] = res.Text()
	}
	return out
}

func (e *MetaVarEnv) String() string {
	var sb strings.Builder
	sb.WriteString("MetaVarEnv{")
	for i, name := range e.Names() {
		if i > 0 {
			sb.WriteString(", ")
		}
		res, _ := e.Get(name)
		switch res.(type) {
		case Multi:
			fmt.Fprintf(&sb, "%s: Multi(%q)", name, res.Text())
		default:
			fmt.Fprintf(&sb, "%s: Single(%q)", name, res.Text())
		}
	}
	sb.WriteString("}")
	return sb.String()
}
