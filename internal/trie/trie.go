package trie

import (
	"path/filepath"
	"sort"
	"strings"
)

// The trie keeps its nodes in one arena slice and links children by index,
// so building a set of a few thousand paths costs a handful of allocations.

// NodeIndex is the position of a node in the arena.
type NodeIndex int

// Arena stores every trie node; index 0 is the root.
type Arena struct {
	nodes []arenaNode
}

type arenaNode struct {
	// children maps a path segment to the child node.
	children map[string]NodeIndex
	// isEnd marks the last segment of an inserted sequence.
	isEnd bool
}

func NewArena() *Arena {
	arena := &Arena{
		nodes: make([]arenaNode, 0, 64),
	}
	arena.nodes = append(arena.nodes, arenaNode{children: make(map[string]NodeIndex)})
	return arena
}

func (a *Arena) newNode() NodeIndex {
	idx := NodeIndex(len(a.nodes))
	a.nodes = append(a.nodes, arenaNode{children: make(map[string]NodeIndex)})
	return idx
}

// Insert adds a sequence of segments. It reports whether the sequence was new.
func (a *Arena) Insert(sequence []string) bool {
	current := NodeIndex(0)
	for _, part := range sequence {
		node := &a.nodes[current]
		childIdx, exists := node.children[part]
		if !exists {
			childIdx = a.newNode()
			// newNode may grow the slice; node is stale from here on
			a.nodes[current].children[part] = childIdx
		}
		current = childIdx
	}

	added := !a.nodes[current].isEnd
	a.nodes[current].isEnd = true
	return added
}

// walk follows sequence from the root. It stops at the first node marked as
// an end when prefix is set.
func (a *Arena) walk(sequence []string, prefix bool) bool {
	current := NodeIndex(0)
	for _, part := range sequence {
		if prefix && a.nodes[current].isEnd {
			return true
		}
		next, ok := a.nodes[current].children[part]
		if !ok {
			return false
		}
		current = next
	}
	return a.nodes[current].isEnd
}

// DebugString renders the trie with children in sorted order; '*' marks the
// end of a sequence.
func (a *Arena) DebugString() string {
	return a.debugStringNode(NodeIndex(0))
}

func (a *Arena) debugStringNode(idx NodeIndex) string {
	node := a.nodes[idx]
	var sb strings.Builder

	if node.isEnd {
		sb.WriteString("*")
	}

	keys := make([]string, 0, len(node.children))
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sb.WriteString(key)
		sb.WriteString("(")
		sb.WriteString(a.debugStringNode(node.children[key]))
		sb.WriteString(")")
	}
	return sb.String()
}

// Trie is a set of segment sequences with prefix lookup.
type Trie struct {
	arena *Arena
	size  int
}

func New() *Trie {
	return &Trie{arena: NewArena()}
}

// Insert adds sequence to the set.
func (t *Trie) Insert(sequence []string) {
	if t.arena.Insert(sequence) {
		t.size++
	}
}

// Contains reports whether sequence itself was inserted.
func (t *Trie) Contains(sequence []string) bool {
	return t.arena.walk(sequence, false)
}

// HasPrefix reports whether some inserted sequence is a prefix of sequence.
func (t *Trie) HasPrefix(sequence []string) bool {
	return t.arena.walk(sequence, true)
}

// Len returns the number of distinct sequences inserted.
func (t *Trie) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

func (t *Trie) DebugString() string {
	return t.arena.DebugString()
}

// SplitPath cleans path and splits it into segments. Absolute paths keep a
// leading empty segment so they never share a prefix with relative ones.
func SplitPath(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))
	if path == "." {
		return nil
	}
	return strings.Split(path, "/")
}

// NewPathSet builds a trie from file system paths.
func NewPathSet(paths ...string) *Trie {
	t := New()
	for _, p := range paths {
		t.Insert(SplitPath(p))
	}
	return t
}

// CoversPath reports whether path is one of the inserted paths or lies
// under one.
func (t *Trie) CoversPath(path string) bool {
	if t == nil || t.size == 0 {
		return false
	}
	return t.HasPrefix(SplitPath(path))
}
