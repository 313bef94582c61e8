package report

import (
	"fmt"
	"strings"

	"github.com/gnolang/sg/core"
)

// FormatTree renders the syntax tree under node, one node per line, indented
// by depth. Anonymous nodes are shown only when all is set.
func FormatTree(node core.Node, all bool) string {
	var sb strings.Builder
	type frame struct {
		node  core.Node
		depth int
	}
	stack := []frame{{node, 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := cur.node
		if !all && !n.IsNamed() && !n.IsError() {
			continue
		}
		sb.WriteString(strings.Repeat("  ", cur.depth))
		sb.WriteString(formatNode(n))
		sb.WriteByte('\n')

		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], cur.depth + 1})
		}
	}
	return sb.String()
}

func formatNode(n core.Node) string {
	row, col := n.Position()
	endRow, endCol := n.EndPosition()
	span := lineStyle.Sprintf("[%d:%d-%d:%d]", row+1, col+1, endRow+1, endCol+1)

	switch {
	case n.IsMissing():
		return errorStyle.Sprintf("MISSING %s", n.Kind()) + " " + span
	case n.IsError():
		return errorStyle.Sprint("ERROR") + " " + span + " " + textStyle.Sprintf("%q", n.Text())
	case n.IsLeaf():
		return kindStyle.Sprint(n.Kind()) + " " + span + " " + textStyle.Sprintf("%q", n.Text())
	default:
		return kindStyle.Sprint(n.Kind()) + " " + span
	}
}

// FormatEnv renders the bindings of env, one per line.
func FormatEnv(env *core.MetaVarEnv) string {
	var sb strings.Builder
	for _, name := range env.Names() {
		res, _ := env.Get(name)
		kind := "single"
		if _, ok := res.(core.Multi); ok {
			kind = "multi"
		}
		fmt.Fprintf(&sb, "%s %s %s\n", ruleStyle.Sprint("$"+name), lineStyle.Sprint(kind), textStyle.Sprintf("%q", res.Text()))
	}
	return sb.String()
}
