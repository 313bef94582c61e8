package core

import (
	"fmt"
	"strings"
)

// Edit replaces DeletedLength bytes at Position with InsertedText.
type Edit struct {
	Position      int
	DeletedLength int
	InsertedText  string
}

func (e Edit) End() int { return e.Position + e.DeletedLength }

func (e Edit) String() string {
	return fmt.Sprintf("Edit(%d+%d -> %q)", e.Position, e.DeletedLength, e.InsertedText)
}

// applyEdits stitches source and edits into the output text. Edits must be
// sorted by Position and must not overlap; the walk that produces them
// guarantees both, so a single forward pass suffices. sourceAt maps an offset
// in edit coordinates to an offset in source.
func applyEdits(source string, edits []Edit, sourceAt func(int) int) string {
	var sb strings.Builder
	sb.Grow(len(source))

	start := 0
	for _, edit := range edits {
		sb.WriteString(source[sourceAt(start):sourceAt(edit.Position)])
		sb.WriteString(edit.InsertedText)
		start = edit.End()
	}
	return sb.String()
}

func identityOffset(pos int) int { return pos }
