package nolint

import (
	"errors"
	"strings"

	"github.com/gnolang/sg/core"
)

const directive = "sg-ignore"

var (
	errNoDirective     = errors.New("not an ignore comment")
	errInvalidFormat   = errors.New("invalid ignore comment format")
	errEmptyRuleList   = errors.New("invalid ignore comment: no rules specified after colon")
	commentDelimiters  = []string{"//", "/*", "#", "--", ";", "<!--", "%"}
	commentTerminators = []string{"*/", "-->"}
)

// Manager records the line ranges where ignore comments apply.
type Manager struct {
	scopes []nolintScope
}

// nolintScope covers the lines start..end, both one-based and inclusive.
// An empty rule set covers every rule.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments collects the ignore comments of the tree under root.
//
// A comment at the top of the file, before any code, applies to the whole
// file. A comment trailing code applies to that line. Any other comment
// applies from its own line through the end of the statement that follows.
func ParseComments(root core.Node) *Manager {
	m := &Manager{}
	lastRow, _ := root.EndPosition()

	type frame struct {
		node   core.Node
		atRoot bool
	}
	stack := []frame{{node: root, atRoot: true}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := cur.node.Children()
		seenCode := false
		for i, child := range children {
			if !isComment(child) {
				if !blank(child) {
					seenCode = true
				}
				if !child.IsLeaf() {
					stack = append(stack, frame{node: child})
				}
				continue
			}

			rules, err := parseComment(child.Text())
			if err != nil {
				// malformed directives are ignored
				continue
			}
			row, _ := child.Position()
			ns := nolintScope{rules: rules, start: row + 1, end: row + 1}

			switch {
			case cur.atRoot && !seenCode:
				ns.start, ns.end = 1, lastRow+1
			case isInline(children, i, row):
			default:
				if next, ok := nextStatement(children, i); ok {
					endRow, _ := next.EndPosition()
					ns.end = endRow + 1
				}
			}
			m.scopes = append(m.scopes, ns)
		}
	}
	return m
}

// IsNolint reports whether rule is ignored on the one-based line.
func (m *Manager) IsNolint(line int, rule string) bool {
	if m == nil {
		return false
	}
	for _, scope := range m.scopes {
		if line < scope.start || line > scope.end {
			continue
		}
		if len(scope.rules) == 0 {
			return true
		}
		if _, ok := scope.rules[rule]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of ignore comments found.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.scopes)
}

// parseComment extracts the rule list of an ignore comment. The directive
// must be the first word after the comment delimiter.
func parseComment(text string) (map[string]struct{}, error) {
	text = strings.TrimSpace(text)
	for _, d := range commentDelimiters {
		if strings.HasPrefix(text, d) {
			text = strings.TrimLeft(text[len(d):], d[:1])
			break
		}
	}
	for _, t := range commentTerminators {
		text = strings.TrimSuffix(text, t)
	}
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, directive) {
		return nil, errNoDirective
	}
	rest := text[len(directive):]

	// no rule list means every rule
	if rest == "" {
		return map[string]struct{}{}, nil
	}
	if rest[0] != ':' {
		return nil, errInvalidFormat
	}
	rest = strings.TrimSpace(rest[1:])
	if rest == "" {
		return nil, errEmptyRuleList
	}
	return parseIgnoreRuleNames(rest), nil
}

func parseIgnoreRuleNames(text string) map[string]struct{} {
	rules := make(map[string]struct{})
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rules[rule] = struct{}{}
		}
	}
	return rules
}

func isComment(n core.Node) bool {
	return n.IsNamed() && strings.Contains(n.Kind(), "comment")
}

// blank reports whether n is a whitespace-only token, such as the newline
// terminators some grammars emit.
func blank(n core.Node) bool {
	return strings.TrimSpace(n.Text()) == ""
}

// isInline reports whether code ends on the same row before children[i].
func isInline(children []core.Node, i, row int) bool {
	for j := i - 1; j >= 0; j-- {
		prev := children[j]
		if isComment(prev) || blank(prev) {
			continue
		}
		endRow, _ := prev.EndPosition()
		return endRow == row
	}
	return false
}

func nextStatement(children []core.Node, i int) (core.Node, bool) {
	for _, next := range children[i+1:] {
		if next.IsNamed() && !isComment(next) {
			return next, true
		}
	}
	return core.Node{}, false
}
